// Package signal is the WebSocket transport adapter: it owns connections,
// their send queues, and the dispatch of inbound events into the relay core.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mkoval/meet-signaling/internal/app"
	"github.com/mkoval/meet-signaling/internal/config"
	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
	"github.com/mkoval/meet-signaling/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Life   *app.Lifecycle
	Router *app.SignalRouter
	Chat   *app.ChatRelay
	Cfg    *config.Config
}

func NewController(life *app.Lifecycle, router *app.SignalRouter, chat *app.ChatRelay, cfg *config.Config) *Controller {
	return &Controller{Life: life, Router: router, Chat: chat, Cfg: cfg}
}

// wsConn wraps one socket behind a bounded send queue so broadcasts to a
// slow peer drop instead of stalling the emitter.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until the
// transport closes. The session id is minted here, once per connection.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sid := domain.SessionID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	if err := ctl.Life.Connect(sid, conn); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register session")
		conn.Close()
		return
	}
	metrics.ActiveConnections.Inc()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
