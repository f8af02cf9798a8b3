// Package dispatcher serializes every inbound event on one goroutine and turns
// session decisions into frames for the transport.
package dispatcher

import (
	"context"
	"time"

	"github.com/amoylab/huddle/internal/chat"
	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/presence"
	"github.com/amoylab/huddle/internal/protocol"
	"github.com/amoylab/huddle/pkg/metrics"
	"github.com/amoylab/huddle/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Transport delivers frames to connections
type Transport interface {
	// Send queues an event for one connection
	Send(ctx context.Context, id string, ev protocol.Outbound) error
	// Broadcast queues an event for every connection
	Broadcast(ctx context.Context, ev protocol.Outbound) error
	// Close flushes what is queued for the connection and closes it
	Close(ctx context.Context, id string) error
}

// Options wires the dispatcher's collaborators
type Options struct {
	Registry    presence.Registry
	Validator   *chat.Validator
	Announcer   *chat.Announcer
	Scheduler   chat.Scheduler
	IdleTimeout time.Duration
	Transport   Transport
	// Metrics is optional
	Metrics *metrics.Metrics
	// InboxSize bounds events waiting for the loop
	InboxSize int
}

const (
	defaultInboxSize = 1024
	shutdownTimeout  = 5 * time.Second
)

type Dispatcher struct {
	logger    *zap.Logger
	registry  presence.Registry
	validator *chat.Validator
	announcer *chat.Announcer
	lifecycle *chat.Lifecycle
	transport Transport
	metrics   *metrics.Metrics
	tracer    *trace.Builder

	inbox chan event
	done  chan struct{}

	// owned by the loop goroutine
	sessions map[string]*chat.Session
}

var _ chat.Emitter = (*Dispatcher)(nil)

type event interface{}

type connected struct{ id string }

type delivered struct {
	id string
	in protocol.Inbound
}

type idleFired struct {
	id  string
	gen uint64
}

func New(logger *zap.Logger, opts Options) *Dispatcher {
	size := opts.InboxSize
	if size <= 0 {
		size = defaultInboxSize
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = chat.SystemScheduler()
	}

	d := &Dispatcher{
		logger:    logger.Named("dispatcher"),
		registry:  opts.Registry,
		validator: opts.Validator,
		announcer: opts.Announcer,
		transport: opts.Transport,
		metrics:   opts.Metrics,
		tracer:    trace.Tracer(cnst.TraceDispatcher),
		inbox:     make(chan event, size),
		done:      make(chan struct{}),
		sessions:  make(map[string]*chat.Session),
	}
	d.lifecycle = chat.NewLifecycle(logger, opts.Registry, opts.Announcer, scheduler, opts.IdleTimeout, d)
	return d
}

// Run processes events until ctx is cancelled. Sessions still open at that
// point are terminated so their names are released.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	d.logger.Info("dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.shutdown(ctx)
			return ctx.Err()
		case ev := <-d.inbox:
			d.handle(ctx, ev)
		}
	}
}

// Connect attaches a new, unregistered session
func (d *Dispatcher) Connect(ctx context.Context, id string) error {
	return d.post(ctx, connected{id: id})
}

// Deliver hands an inbound event from connection id to the loop
func (d *Dispatcher) Deliver(ctx context.Context, id string, in protocol.Inbound) error {
	return d.post(ctx, delivered{id: id, in: in})
}

func (d *Dispatcher) post(ctx context.Context, ev event) error {
	select {
	case d.inbox <- ev:
		return nil
	case <-d.done:
		return cnst.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case connected:
		d.onConnect(e.id)
	case delivered:
		d.onDelivered(ctx, e)
	case idleFired:
		d.onIdle(ctx, e)
	}
}

func (d *Dispatcher) onConnect(id string) {
	if _, exists := d.sessions[id]; exists {
		d.logger.Warn("duplicate connection id", zap.String("conn_id", id))
		return
	}
	d.sessions[id] = chat.NewSession(id)
	if d.metrics != nil {
		d.metrics.SessionOpened()
	}
	d.logger.Debug("session opened", zap.String("conn_id", id))
}

func (d *Dispatcher) onDelivered(ctx context.Context, e delivered) {
	s, ok := d.sessions[e.id]
	if !ok {
		d.logger.Debug("event for unknown session dropped", zap.String("conn_id", e.id))
		return
	}

	_, isDisconnect := e.in.(protocol.Disconnect)
	if s.State() == chat.StateTerminated && !isDisconnect {
		d.logger.Debug("event for terminated session dropped", zap.String("conn_id", e.id))
		return
	}

	switch in := e.in.(type) {
	case protocol.Register:
		scope := d.startSpan(ctx, "register", s)
		ok := d.lifecycle.Register(scope.Ctx, s, in.Name)
		scope.WithAttrs(
			attribute.Bool("huddle.registered", ok),
			attribute.String(cnst.AttrUsername, s.Username()),
		).End()
		if d.metrics != nil {
			d.metrics.Registration(ok)
		}
	case protocol.NewMessage:
		d.onMessage(ctx, s, in)
	case protocol.Disconnect:
		scope := d.startSpan(ctx, "disconnect", s)
		if d.lifecycle.Terminate(scope.Ctx, s) && s.Username() != "" {
			d.countDeparture(s)
		}
		scope.End()
		delete(d.sessions, s.ID())
		if d.metrics != nil {
			d.metrics.SessionClosed()
		}
		d.logger.Debug("session closed", zap.String("conn_id", s.ID()))
	}
}

func (d *Dispatcher) onMessage(ctx context.Context, s *chat.Session, in protocol.NewMessage) {
	scope := d.startSpan(ctx, "message", s)
	defer scope.End()

	// any traffic counts as activity, whether or not the message is accepted
	d.lifecycle.Activity(s)

	msg, err := d.validator.Validate(scope.Ctx, chat.Candidate{Text: in.Text, Sender: in.Sender}, d.registry)
	if err != nil {
		reason, isReason := chat.AsReason(err)
		if !isReason {
			scope.Fail(err)
			d.logger.Error("failed to validate message", zap.String("conn_id", s.ID()), zap.Error(err))
			return
		}
		scope.WithAttrs(attribute.String(cnst.AttrRejectReason, string(reason)))
		d.logger.Debug("message rejected", zap.String("conn_id", s.ID()), zap.String("reason", string(reason)))
		if d.metrics != nil {
			d.metrics.Message(false)
		}
		d.send(scope.Ctx, s.ID(), chatEvent(d.announcer.Rejected(reason)))
		return
	}

	if d.metrics != nil {
		d.metrics.Message(true)
	}
	d.Broadcast(scope.Ctx, msg)
}

func (d *Dispatcher) onIdle(ctx context.Context, e idleFired) {
	s, ok := d.sessions[e.id]
	if !ok {
		return
	}
	scope := d.startSpan(ctx, "idle", s)
	defer scope.End()
	if d.lifecycle.ExpireIdle(scope.Ctx, s, e.gen) {
		d.countDeparture(s)
	}
}

func (d *Dispatcher) shutdown(ctx context.Context) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	for id, s := range d.sessions {
		d.lifecycle.Terminate(sctx, s)
		delete(d.sessions, id)
	}
	d.logger.Info("dispatcher stopped")
}

func (d *Dispatcher) countDeparture(s *chat.Session) {
	if d.metrics != nil {
		d.metrics.Departure(s.Reason().String())
	}
}

func (d *Dispatcher) startSpan(ctx context.Context, op string, s *chat.Session) *trace.SpanScope {
	return d.tracer.Start(ctx, cnst.SpanDispatchPrefix+op).WithAttrs(
		attribute.String(cnst.AttrConnID, s.ID()),
		attribute.String(cnst.AttrSessionState, s.State().String()),
	)
}

func (d *Dispatcher) send(ctx context.Context, id string, ev protocol.Outbound) {
	if err := d.transport.Send(ctx, id, ev); err != nil {
		d.logger.Warn("failed to send event",
			zap.String("conn_id", id),
			zap.String("event", ev.Event()),
			zap.Error(err))
	}
}

func (d *Dispatcher) broadcast(ctx context.Context, ev protocol.Outbound) {
	start := time.Now()
	if err := d.transport.Broadcast(ctx, ev); err != nil {
		d.logger.Error("failed to broadcast event", zap.String("event", ev.Event()), zap.Error(err))
		return
	}
	if d.metrics != nil {
		d.metrics.BroadcastDone(start)
	}
}

func chatEvent(msg chat.Message) protocol.ChatEvent {
	return protocol.ChatEvent{
		Message:  msg.Text,
		Username: msg.Sender,
		System:   msg.System,
		Error:    msg.Error,
	}
}
