package dispatcher

import (
	"context"

	"github.com/amoylab/huddle/internal/chat"
	"github.com/amoylab/huddle/internal/protocol"

	"go.uber.org/zap"
)

func (d *Dispatcher) Acknowledge(ctx context.Context, s *chat.Session, success bool) {
	d.send(ctx, s.ID(), protocol.RegistrationResult{Success: success})
}

func (d *Dispatcher) BroadcastPresence(ctx context.Context, names []string) {
	d.broadcast(ctx, protocol.PresenceUpdate{Names: names})
	if d.metrics != nil {
		d.metrics.SetOnline(len(names))
	}
}

func (d *Dispatcher) Broadcast(ctx context.Context, msg chat.Message) {
	d.broadcast(ctx, chatEvent(msg))
}

func (d *Dispatcher) NotifyIdle(ctx context.Context, s *chat.Session) {
	d.send(ctx, s.ID(), protocol.IdleDisconnectNotice{})
}

func (d *Dispatcher) Sever(ctx context.Context, s *chat.Session) {
	if err := d.transport.Close(ctx, s.ID()); err != nil {
		d.logger.Warn("failed to close connection", zap.String("conn_id", s.ID()), zap.Error(err))
	}
}

// IdleExpired runs on timer goroutines and only posts back into the loop
func (d *Dispatcher) IdleExpired(id string, generation uint64) {
	select {
	case d.inbox <- idleFired{id: id, gen: generation}:
	case <-d.done:
	}
}
