// Package remote drives a browser's real location over a WebSocket.
//
// In a server-driven application the Go process owns the state while the
// browser owns the address bar. This package bridges the two: the thin
// client reports its current location in a hello message and forwards
// popstate/hashchange events; the server sends url messages telling the
// client to call pushState or replaceState. The resulting History plugs
// straight into a urlsync.Controller.
package remote

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/urlstate/pkg/history"
)

// Message types on the wire.
const (
	msgHello      = "hello"
	msgPopState   = "popstate"
	msgHashChange = "hashchange"
	msgURL        = "url"
)

// message is the JSON wire format, shared by both directions.
type message struct {
	Type      string `json:"type"`
	Op        string `json:"op,omitempty"` // push|replace, server -> client
	Path      string `json:"path,omitempty"`
	Query     string `json:"query,omitempty"`
	HashQuery string `json:"hashQuery,omitempty"`
	Routing   string `json:"routing,omitempty"`
	BasePath  string `json:"basePath,omitempty"`
}

// History is a history.History backed by a connected browser. It tracks the
// last location the client reported (or the server wrote) and forwards
// navigation events to subscribers.
type History struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu        sync.RWMutex
	path      string
	query     string
	hashQuery string

	nextSub  int
	popSubs  map[int]func()
	hashSubs map[int]func()

	closeOnce sync.Once
	done      chan struct{}

	logger      *slog.Logger
	readTimeout time.Duration
}

// IsInteractive always reports true: a connected client is a live location.
func (h *History) IsInteractive() bool { return true }

// ReadQuery returns the last known query for the routing mode.
func (h *History) ReadQuery(r history.Routing) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r == history.Hash {
		return h.hashQuery
	}
	return h.query
}

// Path returns the last known path.
func (h *History) Path() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.path
}

// WriteQuery sends a url message instructing the client to rewrite its
// location. The server's view of the location updates optimistically; a
// failed send only logs, matching the no-raise contract of the history
// surface.
func (h *History) WriteQuery(query string, mode history.Mode, r history.Routing, basePath string) {
	h.mu.Lock()
	if r == history.Hash {
		h.hashQuery = query
	} else {
		h.query = query
	}
	if basePath != "" {
		h.path = basePath
	}
	h.mu.Unlock()

	msg := message{
		Type:     msgURL,
		Op:       mode.String(),
		Query:    query,
		Routing:  r.String(),
		BasePath: basePath,
	}

	h.writeMu.Lock()
	err := h.conn.WriteJSON(msg)
	h.writeMu.Unlock()
	if err != nil {
		h.log("url write failed", "error", err)
	}
}

// SubscribePopState registers fn for client back/forward events.
func (h *History) SubscribePopState(fn func()) (unsubscribe func()) {
	return h.subscribe(fn, true)
}

// SubscribeHashChange registers fn for client fragment-change events.
func (h *History) SubscribeHashChange(fn func()) (unsubscribe func()) {
	return h.subscribe(fn, false)
}

func (h *History) subscribe(fn func(), pop bool) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	subs := h.hashSubs
	if pop {
		subs = h.popSubs
	}
	subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(subs, id)
	}
}

// Done is closed when the client disconnects.
func (h *History) Done() <-chan struct{} { return h.done }

// Close terminates the connection.
func (h *History) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.conn.Close()
	})
}

// readLoop consumes client events until the connection closes.
func (h *History) readLoop() {
	defer h.Close()

	for {
		if h.readTimeout > 0 {
			h.conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}

		var msg message
		if err := h.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.log("read error", "error", err)
			}
			return
		}

		switch msg.Type {
		case msgPopState:
			h.mu.Lock()
			h.query = msg.Query
			h.hashQuery = msg.HashQuery
			if msg.Path != "" {
				h.path = msg.Path
			}
			subs := copySubs(h.popSubs)
			h.mu.Unlock()
			for _, fn := range subs {
				fn()
			}

		case msgHashChange:
			h.mu.Lock()
			h.hashQuery = msg.HashQuery
			subs := copySubs(h.hashSubs)
			h.mu.Unlock()
			for _, fn := range subs {
				fn()
			}

		default:
			h.log("unknown message type", "type", msg.Type)
		}
	}
}

func copySubs(m map[int]func()) []func() {
	out := make([]func(), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

func (h *History) log(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}

// Handler upgrades HTTP requests to URL-sync WebSocket sessions. Mount it on
// any router:
//
//	r := chi.NewRouter()
//	r.Handle("/ws/urlstate", &remote.Handler{OnSession: startSession})
type Handler struct {
	// Upgrader configures the WebSocket upgrade. The zero value uses
	// default buffer sizes and same-origin checking.
	Upgrader websocket.Upgrader

	// OnSession runs in its own goroutine once the client's hello message
	// arrives. Build the controller here; return to leave teardown to the
	// connection's lifetime, or select on h.Done().
	OnSession func(h *History)

	// HelloTimeout bounds the wait for the client's hello message.
	// Default: 10 seconds.
	HelloTimeout time.Duration

	// ReadTimeout bounds each subsequent read. Zero disables the deadline.
	ReadTimeout time.Duration

	// Logger is the structured logger. If nil, the handler stays silent.
	Logger *slog.Logger
}

// ServeHTTP upgrades the connection, waits for the hello message, and runs
// the session's read loop until the socket closes.
func (hd *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := hd.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	hist, err := accept(conn, hd.helloTimeout(), hd.ReadTimeout, hd.Logger)
	if err != nil {
		if hd.Logger != nil {
			hd.Logger.Error("handshake failed", "error", err)
		}
		conn.Close()
		return
	}

	if hd.OnSession != nil {
		go hd.OnSession(hist)
	}
	hist.readLoop()
}

func (hd *Handler) helloTimeout() time.Duration {
	if hd.HelloTimeout > 0 {
		return hd.HelloTimeout
	}
	return 10 * time.Second
}

// accept reads the hello message and builds the session History.
func accept(conn *websocket.Conn, helloTimeout, readTimeout time.Duration, logger *slog.Logger) (*History, error) {
	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var hello message
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, err
	}
	if hello.Type != msgHello {
		return nil, errors.New("remote: first message must be hello")
	}
	conn.SetReadDeadline(time.Time{})

	return &History{
		conn:        conn,
		path:        hello.Path,
		query:       hello.Query,
		hashQuery:   hello.HashQuery,
		popSubs:     map[int]func(){},
		hashSubs:    map[int]func(){},
		done:        make(chan struct{}),
		logger:      logger,
		readTimeout: readTimeout,
	}, nil
}
