package ws

import (
	"context"
	"errors"
	"time"

	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/protocol"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	// closed by the hub, under its write lock
	send chan []byte
}

// enqueue must be called with the hub's read lock held
func (c *client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) readPump(ctx context.Context, inbox Inbox) {
	logger := c.hub.logger.With(zap.String("conn_id", c.id))
	defer func() {
		c.hub.drop(c.id)
		_ = c.conn.Close()
		// the request context may already be gone; the disconnect must still arrive
		if err := inbox.Deliver(context.WithoutCancel(ctx), c.id, protocol.Disconnect{}); err != nil && !errors.Is(err, cnst.ErrNotRunning) {
			logger.Warn("failed to deliver disconnect", zap.Error(err))
		}
		logger.Debug("connection closed")
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("unexpected close", zap.Error(err))
			}
			return
		}

		in, err := protocol.Decode(raw)
		if err != nil {
			logger.Debug("dropping frame", zap.Error(err))
			continue
		}
		if err := inbox.Deliver(ctx, c.id, in); err != nil {
			logger.Warn("failed to deliver frame", zap.Error(err))
			return
		}
	}
}

func (c *client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				// the hub closed the queue
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
