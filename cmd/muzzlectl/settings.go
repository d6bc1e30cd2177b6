package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bytehow/HotkeyMuzzle/internal/hub"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
	"github.com/bytehow/HotkeyMuzzle/internal/shortcut"
)

var (
	errAlreadyWhitelisted = errors.New("shortcut is already in the whitelist")
	errNotWhitelisted     = errors.New("shortcut is not in the whitelist")
)

// Names accepted by "settings set".
const (
	optionDuration             = "duration"
	optionBlockedNotifications = "blocked-notifications"
	optionStateNotifications   = "state-notifications"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change blocking settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControl(cmd.Context(), nil, func(ctx context.Context, c *hub.Client) error {
			s, err := c.GetSettings(ctx)
			if err != nil {
				return err
			}
			fmt.Print(formatSettings(s))
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <option> <value>",
	Short: "Change one option",
	Long: `Change one option.

Options:
  duration               Toast duration in milliseconds (invalid values reset to 1500)
  blocked-notifications  on|off, toast when a shortcut is blocked
  state-notifications    on|off, toast when blocking is turned on or off`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, msg, err := parseOption(args[0], args[1])
		if err != nil {
			return err
		}
		return withControl(cmd.Context(), nil, func(ctx context.Context, c *hub.Client) error {
			if err := c.UpdateSettings(ctx, p); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Println(msg)
			return nil
		})
	},
}

var settingsAddCmd = &cobra.Command{
	Use:   "add <shortcut>",
	Short: "Whitelist a shortcut, e.g. cmd+shift+p",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editWhitelist(cmd.Context(), args[0], addShortcut)
	},
}

var settingsRemoveCmd = &cobra.Command{
	Use:   "remove <shortcut>",
	Short: "Remove a shortcut from the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editWhitelist(cmd.Context(), args[0], removeShortcut)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings, clearing the custom whitelist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControl(cmd.Context(), nil, func(ctx context.Context, c *hub.Client) error {
			if err := c.UpdateSettings(ctx, settings.Defaults().Partial()); err != nil {
				return fmt.Errorf("failed to reset settings: %w", err)
			}
			fmt.Println("🔄 Settings reset to defaults")
			return nil
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsAddCmd)
	settingsCmd.AddCommand(settingsRemoveCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

type whitelistEdit func(wl shortcut.Whitelist, input string) (string, error)

func editWhitelist(parent context.Context, input string, edit whitelistEdit) error {
	return withControl(parent, nil, func(ctx context.Context, c *hub.Client) error {
		s, err := c.GetSettings(ctx)
		if err != nil {
			return err
		}

		wl := s.Whitelist.Clone()
		msg, err := edit(wl, input)
		if err != nil {
			return err
		}

		if err := c.UpdateSettings(ctx, settings.Partial{Whitelist: &wl}); err != nil {
			return fmt.Errorf("failed to save whitelist: %w", err)
		}
		fmt.Println(msg)
		return nil
	})
}

func addShortcut(wl shortcut.Whitelist, input string) (string, error) {
	canonical, err := shortcut.Canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("%w (use a format like cmd+key or ctrl+shift+key)", err)
	}
	if !wl.Add(canonical) {
		return "", fmt.Errorf("%w: %s", errAlreadyWhitelisted, shortcut.Display(canonical))
	}
	return fmt.Sprintf("➕ Added %s to the whitelist", shortcut.Display(canonical)), nil
}

func removeShortcut(wl shortcut.Whitelist, input string) (string, error) {
	canonical, err := shortcut.Canonicalize(input)
	if err != nil {
		return "", err
	}
	if !wl.Remove(canonical) {
		return "", fmt.Errorf("%w: %s", errNotWhitelisted, shortcut.Display(canonical))
	}
	return fmt.Sprintf("➖ Removed %s from the whitelist", shortcut.Display(canonical)), nil
}

// parseOption turns a "settings set" pair into a partial update and the
// message to print once it is saved.
func parseOption(name, value string) (settings.Partial, string, error) {
	name = strings.ToLower(name)
	switch name {
	case optionDuration:
		ms := settings.ParseDuration(value)
		msg := fmt.Sprintf("✅ Toast duration set to %dms", ms)
		if strconv.Itoa(ms) != strings.TrimSpace(value) {
			msg = fmt.Sprintf("⚠️  Invalid duration %q, must be a positive number. Reset to default (%dms)", value, ms)
		}
		return settings.Partial{NotificationDuration: &ms}, msg, nil

	case optionBlockedNotifications, optionStateNotifications:
		on, err := parseSwitch(value)
		if err != nil {
			return settings.Partial{}, "", err
		}
		msg := fmt.Sprintf("✅ %s %s", name, onOff(on))
		if name == optionBlockedNotifications {
			return settings.Partial{ShowBlockedNotifications: &on}, msg, nil
		}
		return settings.Partial{ShowStateNotifications: &on}, msg, nil

	default:
		return settings.Partial{}, "", fmt.Errorf("unknown option %q (want %s, %s or %s)",
			name, optionDuration, optionBlockedNotifications, optionStateNotifications)
	}
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want on or off)", value)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func formatSettings(s settings.Settings) string {
	var b strings.Builder
	b.WriteString("⚙️  Settings:\n")
	fmt.Fprintf(&b, "   Blocked notifications: %s\n", onOff(s.ShowBlockedNotifications))
	fmt.Fprintf(&b, "   State notifications:   %s\n", onOff(s.ShowStateNotifications))
	fmt.Fprintf(&b, "   Toast duration:        %dms\n", s.NotificationDuration)
	b.WriteString("\n📋 Whitelist:\n")
	if s.Whitelist.Len() == 0 {
		b.WriteString("   No whitelisted shortcuts\n")
		return b.String()
	}
	for _, item := range s.Whitelist.Sorted() {
		fmt.Fprintf(&b, "   %-16s %s\n", shortcut.Display(item), item)
	}
	return b.String()
}
