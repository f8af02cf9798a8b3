// Package ws is the websocket transport: it upgrades connections, feeds their
// frames to the dispatcher and delivers outbound frames.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/amoylab/huddle/internal/bus"
	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/common/config"
	"github.com/amoylab/huddle/internal/protocol"
	"github.com/amoylab/huddle/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnknownConnection is returned when addressing a connection that is gone
var ErrUnknownConnection = errors.New("unknown connection")

// Inbox receives connection events; the dispatcher implements it
type Inbox interface {
	Connect(ctx context.Context, id string) error
	Deliver(ctx context.Context, id string, in protocol.Inbound) error
}

// Hub tracks the connections of this process. Broadcasts go through the bus
// so that every process delivers them to its own connections.
type Hub struct {
	logger   *zap.Logger
	cfg      config.TransportConfig
	bus      bus.Bus
	upgrader websocket.Upgrader
	tracer   *trace.Builder

	// sends happen under the read lock, closes under the write lock
	mu      sync.RWMutex
	clients map[string]*client
	wg      sync.WaitGroup
}

func NewHub(logger *zap.Logger, cfg config.TransportConfig, b bus.Bus) *Hub {
	return &Hub{
		logger: logger.Named("transport.ws"),
		cfg:    cfg,
		bus:    b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tracer:  trace.Tracer(cnst.TraceTransport),
		clients: make(map[string]*client),
	}
}

// Start subscribes to the bus and fans its frames out to local connections
// until ctx ends. It returns once the subscription is live.
func (h *Hub) Start(ctx context.Context) error {
	frames, err := h.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to broadcast bus: %w", err)
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for frame := range frames {
			h.fanOut(frame)
		}
		h.logger.Info("broadcast subscription ended")
	}()
	return nil
}

// Wait blocks until the bus consumer started by Start has returned
func (h *Hub) Wait() {
	h.wg.Wait()
}

// HandleWebSocket upgrades the request and serves the connection until it ends
func (h *Hub) HandleWebSocket(inbox Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("failed to upgrade connection", zap.Error(err))
			return
		}

		cl := &client{
			id:   uuid.NewString(),
			hub:  h,
			conn: conn,
			send: make(chan []byte, h.cfg.SendBuffer),
		}
		ctx := c.Request.Context()

		scope := h.tracer.Start(ctx, cnst.SpanWSConnect).WithAttrs(
			attribute.String(cnst.AttrConnID, cl.id),
			attribute.String(cnst.AttrClientAddr, c.ClientIP()),
		)
		h.mu.Lock()
		h.clients[cl.id] = cl
		h.mu.Unlock()
		err = inbox.Connect(scope.Ctx, cl.id)
		scope.Fail(err).End()
		if err != nil {
			h.logger.Error("failed to attach connection", zap.String("conn_id", cl.id), zap.Error(err))
			h.drop(cl.id)
			_ = conn.Close()
			return
		}

		h.logger.Debug("connection opened",
			zap.String("conn_id", cl.id),
			zap.String("remote_addr", c.ClientIP()))

		go cl.writePump()
		cl.readPump(ctx, inbox)
	}
}

// Send queues ev for one connection
func (h *Hub) Send(_ context.Context, id string, ev protocol.Outbound) error {
	frame, err := protocol.Encode(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	cl, ok := h.clients[id]
	queued := ok && cl.enqueue(frame)
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	if !queued {
		h.drop(id)
		return fmt.Errorf("send queue full for %s", id)
	}
	return nil
}

// Broadcast publishes ev on the bus for every process to deliver
func (h *Hub) Broadcast(ctx context.Context, ev protocol.Outbound) error {
	frame, err := protocol.Encode(ev)
	if err != nil {
		return err
	}
	return h.bus.Publish(ctx, frame)
}

// Close stops accepting frames for the connection; what is already queued is
// written before the close frame
func (h *Hub) Close(_ context.Context, id string) error {
	if !h.drop(id) {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	return nil
}

// Shutdown closes every connection
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cl := range h.clients {
		delete(h.clients, id)
		close(cl.send)
	}
}

// Connections returns the number of open connections on this process
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) fanOut(frame []byte) {
	h.mu.RLock()
	slow := lo.FilterMap(lo.Values(h.clients), func(cl *client, _ int) (string, bool) {
		return cl.id, !cl.enqueue(frame)
	})
	h.mu.RUnlock()

	for _, id := range slow {
		h.logger.Warn("send queue full, dropping connection", zap.String("conn_id", id))
		h.drop(id)
	}
}

// drop removes the connection and closes its queue; it reports whether the
// connection was still registered
func (h *Hub) drop(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	cl, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(cl.send)
	return true
}
