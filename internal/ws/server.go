package ws

import (
	"context"
	"net/http"
	"sync/atomic"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"

	"vhostmgr/internal/manager"
)

// Event names
const (
	EventConnected      = "connected"
	EventRequestDomains = "request:domains"
	EventDomainsList    = "domains:list"
	EventDomainsUpdate  = "domains:update"
	EventError          = "error"
)

// Lister provides the current domain listing
type Lister interface {
	ListDomains(ctx context.Context) ([]manager.DomainRecord, error)
}

// broadcaster is the part of *socketio.Server used for fan-out
type broadcaster interface {
	BroadcastToNamespace(namespace string, event string, args ...interface{}) bool
}

// Hub serves the Socket.IO endpoint and pushes domain changes to every
// connected dashboard.
type Hub struct {
	server  *socketio.Server
	out     broadcaster
	tokens  TokenParser
	lister  Lister
	logger  *logrus.Entry
	eventID atomic.Int64
}

// NewHub creates a Socket.IO hub. Origins lists the allowed browser
// origins; "*" or an empty list allows any.
func NewHub(tokens TokenParser, lister Lister, origins []string, log *logrus.Logger) *Hub {
	checkOrigin := originChecker(origins)
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: checkOrigin},
			&websocket.Transport{CheckOrigin: checkOrigin},
		},
	})

	h := &Hub{
		server: server,
		out:    server,
		tokens: tokens,
		lister: lister,
		logger: log.WithField("component", "ws"),
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		h.logger.WithField("conn", s.ID()).Debug("client connected")
		s.Emit(EventConnected, map[string]interface{}{"ok": true})
		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		h.logger.WithFields(logrus.Fields{"conn": s.ID(), "reason": reason}).Debug("client disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			h.logger.WithError(e).Warn("socket error")
			return
		}
		h.logger.WithField("conn", s.ID()).WithError(e).Warn("socket error")
	})

	server.OnEvent("/", EventRequestDomains, h.handleRequestDomains)

	return h
}

// Start runs the Socket.IO event loop in the background
func (h *Hub) Start() {
	go func() {
		if err := h.server.Serve(); err != nil {
			h.logger.WithError(err).Error("socket.io server stopped")
		}
	}()
	h.logger.Info("Socket.IO server started")
}

// Close disconnects every client
func (h *Hub) Close() error {
	return h.server.Close()
}

// Handler returns the authenticated HTTP handler for /socket.io/
func (h *Hub) Handler() http.Handler {
	return wrapWithAuth(h.server, h.tokens, h.logger)
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[origin]
	}
}
