package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bytehow/HotkeyMuzzle/internal/config"
	"github.com/bytehow/HotkeyMuzzle/internal/hub"
	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
	"github.com/bytehow/HotkeyMuzzle/internal/version"
)

const requestTimeout = 5 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "muzzlectl",
	Short: "HotkeyMuzzle control surface",
	Long: `muzzlectl talks to a running HotkeyMuzzle daemon.

Examples:
  muzzlectl state                      # Show whether shortcuts are blocked
  muzzlectl toggle                     # Turn blocking on or off
  muzzlectl watch                      # Follow state changes
  muzzlectl settings show              # Print the current settings
  muzzlectl settings add "cmd+shift+p" # Whitelist a shortcut
  muzzlectl listen                     # Act as a tab reading shortcuts from stdin`,
	Version:       version.VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagAddr == "" {
			flagAddr = cfg.ListenAddr
		}
		level := cfg.SlogLevel()
		if flagLogLevel != "" {
			if level, err = config.ParseLogLevel(flagLogLevel); err != nil {
				return err
			}
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show whether shortcuts are blocked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControl(cmd.Context(), nil, func(ctx context.Context, c *hub.Client) error {
			blocking, err := c.GetBlockingState(ctx)
			if err != nil {
				return err
			}
			fmt.Println(stateLine(blocking))
			return nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Turn shortcut blocking on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withControl(cmd.Context(), nil, func(ctx context.Context, c *hub.Client) error {
			blocking, err := c.Toggle(ctx)
			if err != nil {
				return fmt.Errorf("failed to toggle blocking: %w", err)
			}
			fmt.Println(stateLine(blocking))
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print blocking state changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		onPush := func(msg protocol.Message) {
			if msg.Type == protocol.TypeBlockingStateChanged && msg.Blocking != nil {
				fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), stateLine(*msg.Blocking))
			}
		}

		c, err := hub.Dial(ctx, flagAddr, hub.RoleControl, onPush)
		if err != nil {
			return daemonUnreachable(err)
		}
		defer c.Close()

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		blocking, err := c.GetBlockingState(reqCtx)
		cancel()
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), stateLine(blocking))
		fmt.Println("👀 Watching for changes, press Ctrl+C to stop")

		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return fmt.Errorf("daemon closed the connection")
		}
	},
}

var (
	flagAddr     string
	flagLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "Daemon address (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(listenCmd)
}

// withControl connects as a control surface and runs fn with a bounded
// request context.
func withControl(parent context.Context, onPush func(protocol.Message), fn func(context.Context, *hub.Client) error) error {
	ctx, cancel := context.WithTimeout(parent, requestTimeout)
	defer cancel()

	c, err := hub.Dial(ctx, flagAddr, hub.RoleControl, onPush)
	if err != nil {
		return daemonUnreachable(err)
	}
	defer c.Close()

	return fn(ctx, c)
}

func daemonUnreachable(err error) error {
	return fmt.Errorf("%w\n💡 Is the daemon running? Start it with 'muzzle'", err)
}

func stateLine(blocking bool) string {
	if blocking {
		return "🔴 Shortcuts Blocked"
	}
	return "🟢 Shortcuts Enabled"
}
