package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
	"github.com/bytehow/HotkeyMuzzle/internal/settings"
)

// ErrClientClosed is returned by requests on a closed Client.
var ErrClientClosed = errors.New("client closed")

// URLFor returns the websocket URL of the hub at addr for role.
func URLFor(addr string, role Role) string {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	q := u.Query()
	q.Set("role", string(role))
	u.RawQuery = q.Encode()
	return u.String()
}

// Client is a connection to a hub, used by tabs and control surfaces.
// Pushes from the coordinator are passed to the push callback in the order
// they arrive.
type Client struct {
	conn   *websocket.Conn
	onPush func(protocol.Message)

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan protocol.Response

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the hub at addr as role. onPush may be nil.
func Dial(ctx context.Context, addr string, role Role, onPush func(protocol.Message)) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, URLFor(addr, role), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		onPush:  onPush,
		pending: make(map[string]chan protocol.Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close ends the connection. Pending requests fail with ErrClientClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// Request sends msg and waits for its response. A response with
// Success false is returned without an error.
func (c *Client) Request(ctx context.Context, msg protocol.Message) (protocol.Response, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	ch := make(chan protocol.Response, 1)
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return protocol.Response{}, ErrClientClosed
	default:
	}
	c.pending[msg.ID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(msg)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	c.writeMu.Lock()
	err = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err == nil {
		err = c.conn.WriteMessage(websocket.TextMessage, data)
	}
	c.writeMu.Unlock()
	if err != nil {
		return protocol.Response{}, fmt.Errorf("send %s: %w", msg.Type, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-c.done:
		return protocol.Response{}, ErrClientClosed
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	}
}

// call is Request with a failed response turned into an error.
func (c *Client) call(ctx context.Context, msg protocol.Message) (protocol.Response, error) {
	resp, err := c.Request(ctx, msg)
	if err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%s: %s", msg.Type, resp.Error)
	}
	return resp, nil
}

// GetBlockingState asks for the current blocking flag.
func (c *Client) GetBlockingState(ctx context.Context) (bool, error) {
	resp, err := c.call(ctx, protocol.NewRequest(protocol.TypeGetBlockingState))
	if err != nil {
		return false, err
	}
	if resp.Blocking == nil {
		return false, fmt.Errorf("%s: response without blocking", protocol.TypeGetBlockingState)
	}
	return *resp.Blocking, nil
}

// GetSettings asks for the settings record, merged with defaults.
func (c *Client) GetSettings(ctx context.Context) (settings.Settings, error) {
	resp, err := c.call(ctx, protocol.NewRequest(protocol.TypeGetSettings))
	if err != nil {
		return settings.Defaults(), err
	}
	if resp.Settings == nil {
		return settings.Defaults(), nil
	}
	return settings.Merge(*resp.Settings, settings.Defaults()), nil
}

// ReportBlocked tells the coordinator that canonical was suppressed.
func (c *Client) ReportBlocked(ctx context.Context, canonical string) error {
	msg := protocol.NewRequest(protocol.TypeShortcutBlocked)
	msg.Shortcut = canonical
	_, err := c.call(ctx, msg)
	return err
}

// Toggle flips the blocking flag and returns the new value.
func (c *Client) Toggle(ctx context.Context) (bool, error) {
	resp, err := c.call(ctx, protocol.NewRequest(protocol.TypeToggleBlocking))
	if err != nil {
		return false, err
	}
	if resp.Blocking == nil {
		return false, fmt.Errorf("%s: response without blocking", protocol.TypeToggleBlocking)
	}
	return *resp.Blocking, nil
}

// UpdateSettings persists the present fields of p.
func (c *Client) UpdateSettings(ctx context.Context, p settings.Partial) error {
	msg := protocol.NewRequest(protocol.TypeUpdateSettings)
	msg.Settings = &p
	_, err := c.call(ctx, msg)
	return err
}

func (c *Client) readLoop() {
	defer c.shutdown()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("[HUB] client read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("[HUB] client got invalid frame", "error", err)
			continue
		}

		if frame.Type == protocol.TypeResponse {
			c.resolve(frame.Response())
			continue
		}
		c.push(frame.Message)
	}
}

func (c *Client) resolve(resp protocol.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if !ok {
		if resp.ID == "" && !resp.Success {
			slog.Warn("[HUB] hub rejected a frame", "error", resp.Error)
		}
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

func (c *Client) push(msg protocol.Message) {
	if c.onPush == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[HUB] push handler panic", "type", msg.Type, "panic", fmt.Sprint(rec))
		}
	}()
	c.onPush(msg)
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.done)
		c.mu.Unlock()
		c.conn.Close()
	})
}
