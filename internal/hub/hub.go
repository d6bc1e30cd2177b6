// Package hub is the websocket transport between the coordinator and the
// tabs and control surfaces connected to it.
//
// Every connection is a Peer with its own bounded outbound queue drained by
// a writer goroutine, so pushing to a peer never waits on the network.
// Requests from one peer are answered in order on that peer's read pump.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bytehow/HotkeyMuzzle/internal/coordinator"
	"github.com/bytehow/HotkeyMuzzle/internal/protocol"
)

const (
	// writeDeadline bounds a single websocket write. A peer that cannot take
	// a frame within it is considered dead.
	writeDeadline = 5 * time.Second
	// readDeadline allows about three missed pings.
	readDeadline = 90 * time.Second
	pingInterval = 30 * time.Second

	maxReadMessageSize = 32 * 1024
	sendQueueSize      = 64
)

// Path is the websocket endpoint.
const Path = "/ws"

var (
	// ErrPeerClosed is returned by Send once the peer has disconnected.
	ErrPeerClosed = errors.New("peer closed")
	// ErrQueueFull is returned by Send when the peer's outbound queue is full.
	ErrQueueFull = errors.New("peer send queue full")
)

// Role says what a peer is.
type Role string

const (
	RoleTab     Role = "tab"
	RoleControl Role = "control"
)

// ParseRole validates a role query value. Empty means tab.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleTab:
		return RoleTab, nil
	case RoleControl:
		return RoleControl, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

var upgrader = websocket.Upgrader{
	// The hub listens on loopback; tabs connect from arbitrary page origins.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Handler answers requests from peers. origin is the sending tab's id, or
// "" for control surfaces.
type Handler interface {
	Handle(ctx context.Context, origin string, msg protocol.Message) protocol.Response
}

// Options configures a Hub.
type Options struct {
	// Addr is the listen address. Use "127.0.0.1:0" for an OS-assigned port.
	Addr string
	// OnPeersChanged is called after a peer connects or disconnects.
	OnPeersChanged func(tabs, surfaces int)
}

// Hub accepts websocket connections and implements coordinator.Directory.
type Hub struct {
	opts    Options
	handler Handler

	mu    sync.RWMutex
	peers map[string]*Peer

	listener net.Listener
	server   *http.Server
	url      string

	closeOnce sync.Once
}

var _ coordinator.Directory = (*Hub)(nil)

// New returns a Hub that is not yet listening.
func New(opts Options) *Hub {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	return &Hub{
		opts:  opts,
		peers: make(map[string]*Peer),
	}
}

// Start listens on the configured address and serves connections, passing
// every request to handler. ctx becomes the base context of every request.
func (h *Hub) Start(ctx context.Context, handler Handler) error {
	if h.server != nil {
		return fmt.Errorf("hub: already started")
	}
	if handler == nil {
		return fmt.Errorf("hub: nil handler")
	}
	h.handler = handler

	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("hub: listen: %w", err)
	}
	h.listener = ln
	h.url = "ws://" + ln.Addr().String() + Path

	mux := http.NewServeMux()
	mux.HandleFunc(Path, h.handleWS)

	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if serveErr := h.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("[HUB] server error", "error", serveErr)
		}
	}()

	slog.Info("[HUB] listening", "url", h.url)
	return nil
}

// Stop closes every peer and shuts the server down. It is idempotent.
func (h *Hub) Stop() error {
	var stopErr error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		peers := make([]*Peer, 0, len(h.peers))
		for _, p := range h.peers {
			peers = append(peers, p)
		}
		h.mu.Unlock()

		for _, p := range peers {
			p.close("hub stopping")
		}

		if h.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("hub: shutdown: %w", err)
			}
		}
		slog.Info("[HUB] stopped")
	})
	return stopErr
}

// URL returns the websocket URL, or "" before Start.
func (h *Hub) URL() string {
	return h.url
}

// Addr returns the bound listen address, or "" before Start.
func (h *Hub) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Tabs returns the connected tabs ordered by id.
func (h *Hub) Tabs() []coordinator.Recipient {
	return h.byRole(RoleTab)
}

// Surfaces returns the connected control surfaces ordered by id.
func (h *Hub) Surfaces() []coordinator.Recipient {
	return h.byRole(RoleControl)
}

// Tab returns the connected tab with id.
func (h *Hub) Tab(id string) (coordinator.Recipient, bool) {
	h.mu.RLock()
	p, ok := h.peers[id]
	h.mu.RUnlock()
	if !ok || p.role != RoleTab {
		return nil, false
	}
	return p, true
}

// Counts returns how many tabs and control surfaces are connected.
func (h *Hub) Counts() (tabs, surfaces int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		if p.role == RoleTab {
			tabs++
		} else {
			surfaces++
		}
	}
	return tabs, surfaces
}

func (h *Hub) byRole(role Role) []coordinator.Recipient {
	h.mu.RLock()
	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		if p.role == role {
			peers = append(peers, p)
		}
	}
	h.mu.RUnlock()

	sort.Slice(peers, func(i, j int) bool { return peers[i].id < peers[j].id })
	out := make([]coordinator.Recipient, len(peers))
	for i, p := range peers {
		out[i] = p
	}
	return out
}

func (h *Hub) register(p *Peer) {
	h.mu.Lock()
	h.peers[p.id] = p
	h.mu.Unlock()
	h.peersChanged()
}

func (h *Hub) unregister(p *Peer) {
	h.mu.Lock()
	_, ok := h.peers[p.id]
	delete(h.peers, p.id)
	h.mu.Unlock()
	if ok {
		h.peersChanged()
	}
}

func (h *Hub) peersChanged() {
	if h.opts.OnPeersChanged == nil {
		return
	}
	tabs, surfaces := h.Counts()
	h.opts.OnPeersChanged(tabs, surfaces)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	role, err := ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("[HUB] upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(maxReadMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		slog.Warn("[HUB] SetReadDeadline failed on new connection", "error", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	p := newPeer(uuid.NewString(), role, conn)
	h.register(p)
	slog.Info("[HUB] peer connected", "peer", p.id, "role", role, "remoteAddr", conn.RemoteAddr())

	go p.writePump()

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[HUB] read pump recovered",
				"peer", p.id,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
		}
		h.unregister(p)
		p.close("read pump exit")
		slog.Info("[HUB] peer disconnected", "peer", p.id, "role", role)
	}()

	h.readPump(r.Context(), p)
}

func (h *Hub) readPump(ctx context.Context, p *Peer) {
	origin := ""
	if p.role == RoleTab {
		origin = p.id
	}

	for {
		msgType, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("[HUB] read error", "peer", p.id, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			slog.Debug("[HUB] invalid frame", "peer", p.id, "error", err)
			p.respond(protocol.Fail(err.Error()))
			continue
		}
		if frame.Type == protocol.TypeResponse {
			slog.Debug("[HUB] ignoring response from peer", "peer", p.id, "id", frame.ID)
			continue
		}

		p.respond(h.dispatch(ctx, origin, frame.Message))
	}
}

func (h *Hub) dispatch(ctx context.Context, origin string, msg protocol.Message) (resp protocol.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[HUB] handler panic",
				"type", msg.Type,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			resp = protocol.Failf("internal error handling %s", msg.Type)
			resp.ID = msg.ID
		}
	}()
	return h.handler.Handle(ctx, origin, msg)
}

// Peer is one connected tab or control surface.
type Peer struct {
	id   string
	role Role
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ coordinator.Recipient = (*Peer)(nil)

func newPeer(id string, role Role, conn *websocket.Conn) *Peer {
	return &Peer{
		id:   id,
		role: role,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// ID returns the peer id. For tabs this is the tab id.
func (p *Peer) ID() string { return p.id }

// Role returns the peer role.
func (p *Peer) Role() Role { return p.role }

// Send queues msg for the peer without waiting for the network.
func (p *Peer) Send(msg protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return p.enqueue(data)
}

func (p *Peer) respond(resp protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Warn("[HUB] failed to encode response", "peer", p.id, "error", err)
		return
	}
	if err := p.enqueue(data); err != nil {
		slog.Debug("[HUB] response dropped", "peer", p.id, "id", resp.ID, "error", err)
	}
}

func (p *Peer) enqueue(data []byte) error {
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	select {
	case p.send <- data:
		return nil
	case <-p.done:
		return ErrPeerClosed
	default:
		return ErrQueueFull
	}
}

func (p *Peer) close(reason string) {
	p.closeOnce.Do(func() {
		close(p.done)
		if p.conn == nil {
			return
		}
		if err := p.conn.Close(); err != nil {
			slog.Debug("[HUB] connection close", "peer", p.id, "reason", reason, "error", err)
		}
	})
}

func (p *Peer) writePump() {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[HUB] write pump recovered",
				"peer", p.id,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
		}
		p.close("write pump exit")
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			if err := p.write(websocket.TextMessage, data); err != nil {
				slog.Warn("[HUB] write failed, closing peer", "peer", p.id, "error", err)
				return
			}
		case <-ticker.C:
			if err := p.write(websocket.PingMessage, nil); err != nil {
				slog.Debug("[HUB] ping failed, peer likely dead", "peer", p.id, "error", err)
				return
			}
		}
	}
}

func (p *Peer) write(messageType int, data []byte) error {
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return p.conn.WriteMessage(messageType, data)
}
