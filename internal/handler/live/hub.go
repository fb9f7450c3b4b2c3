package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/usecase"
	"RateScope/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface is equally open; the explorer carries no
	// credentials worth protecting from cross-origin pages.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans recompute snapshots out to every connected chart view and
// feeds view interactions back into the scheduler. It is the
// scheduler's Sink.
type Hub struct {
	scheduler *usecase.Scheduler
	metrics   repository.Metrics
	log       *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(scheduler *usecase.Scheduler, metrics repository.Metrics, log *logger.Logger) *Hub {
	return &Hub{
		scheduler: scheduler,
		metrics:   metrics,
		log:       log.With("live"),
		clients:   make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Broadcast queues the snapshot on every connected view. A view too
// slow to drain its buffer is dropped rather than allowed to stall the
// rest.
func (h *Hub) Broadcast(snap *models.Snapshot) {
	payload, err := json.Marshal(envelopeOf("snapshot", snap))
	if err != nil {
		h.log.Error("encode snapshot", logger.Error(err))
		return
	}

	h.mu.RLock()
	stale := make([]*client, 0)
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.log.Warn("dropping slow view")
		h.remove(c)
	}
}

// Serve upgrades the connection and runs the view until it leaves.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(cl)

	// New views immediately get the current state instead of waiting
	// for the next interaction.
	if snap := h.scheduler.Latest(); snap != nil {
		if payload, err := json.Marshal(envelopeOf("snapshot", snap)); err == nil {
			select {
			case cl.send <- payload:
			default:
			}
		}
	}

	go cl.writePump(h)
	cl.readPump(h)
	return nil
}

// Close disconnects every view.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
	h.metrics.SetConnectedViews(0)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetConnectedViews(n)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.shutdown()
		h.metrics.SetConnectedViews(n)
	}
}

// viewMessage is what a chart view sends back: a coefficient change, a
// window change or a reset.
type viewMessage struct {
	Type   string                 `json:"type"`
	Params *models.RuleParameters `json:"params,omitempty"`
	Window *models.DateWindow     `json:"window,omitempty"`
}

func (h *Hub) handleMessage(raw []byte) {
	var msg viewMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Warn("malformed view message", logger.Error(err))
		return
	}

	switch msg.Type {
	case "set_params":
		if msg.Params == nil || !paramsInRange(*msg.Params) {
			h.log.Warn("view sent out-of-range coefficients")
			return
		}
		h.scheduler.ApplyParams(*msg.Params)
	case "set_window":
		if msg.Window == nil || msg.Window.From == "" || msg.Window.To == "" {
			h.log.Warn("view sent incomplete window")
			return
		}
		h.scheduler.ApplyWindow(*msg.Window)
	case "reset":
		h.scheduler.Reset()
	default:
		h.log.Warn("unknown view message", logger.String("type", msg.Type))
	}
}

func paramsInRange(p models.RuleParameters) bool {
	return p.Rho >= 0 && p.Rho <= 0.99 &&
		p.RStar >= -2 && p.RStar <= 5 &&
		p.Alpha >= 0 && p.Alpha <= 3 &&
		p.Beta >= 0 && p.Beta <= 3
}

type wireEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func envelopeOf(kind string, data interface{}) wireEnvelope {
	return wireEnvelope{Type: kind, Data: data}
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *client) readPump(h *Hub) {
	defer h.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(raw)
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

var _ usecase.Sink = (*Hub)(nil)
