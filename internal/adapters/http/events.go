package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub fans public events out to admin WebSocket subscribers.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[*wsEventConn]struct{}
	closed bool
	queue  int
	wg     conc.WaitGroup
}

func NewEventHub(queue int) *EventHub {
	if queue <= 0 {
		queue = 64
	}
	return &EventHub{
		subs:  make(map[*wsEventConn]struct{}),
		queue: queue,
	}
}

type wsEventConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsEventConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsEventConn) Close() {
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

// Publish implements orch.Publisher.
func (h *EventHub) Publish(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("publish marshal")
		return
	}
	h.mu.RLock()
	subs := make([]*wsEventConn, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.TrySend(b); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("event dropped")
		}
	}
}

func (h *EventHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// HandleEvents upgrades the request and streams events until the client
// goes away or ctx is done.
func (h *EventHub) HandleEvents(ctx context.Context, c *gin.Context) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	sub := &wsEventConn{conn: ws, send: make(chan []byte, h.queue)}

	// No writer starts once Close has marked the hub closed.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = ws.Close()
		return
	}
	h.subs[sub] = struct{}{}
	h.wg.Go(func() { h.writePump(sub) })
	h.mu.Unlock()

	stop := context.AfterFunc(ctx, sub.Close)
	defer stop()

	h.readPump(sub)
}

func (h *EventHub) writePump(c *wsEventConn) {
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("writePump set deadline")
			c.Close()
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("writePump write error")
			c.Close()
			return
		}
	}
}

// readPump discards client messages; it only detects the close.
func (h *EventHub) readPump(c *wsEventConn) {
	defer func() {
		h.mu.Lock()
		delete(h.subs, c)
		h.mu.Unlock()
		c.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every subscriber and waits for their writers.
// Later subscribers are refused.
func (h *EventHub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*wsEventConn, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
	h.wg.Wait()
}
