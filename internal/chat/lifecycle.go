package chat

import (
	"context"
	"errors"
	"time"

	"github.com/amoylab/huddle/internal/presence"

	"go.uber.org/zap"
)

// Emitter carries out the side effects the lifecycle decides on. All methods
// except IdleExpired are called from the goroutine that drives the lifecycle.
type Emitter interface {
	// Acknowledge answers a registration request
	Acknowledge(ctx context.Context, s *Session, success bool)
	// BroadcastPresence sends the member list to every connection
	BroadcastPresence(ctx context.Context, names []string)
	// Broadcast sends a chat message to every connection
	Broadcast(ctx context.Context, msg Message)
	// NotifyIdle tells the session it is about to be dropped for inactivity
	NotifyIdle(ctx context.Context, s *Session)
	// Sever closes the session's connection
	Sever(ctx context.Context, s *Session)
	// IdleExpired is invoked from timer goroutines and must hand the firing
	// back to the driving goroutine
	IdleExpired(id string, generation uint64)
}

// Lifecycle drives sessions through Unregistered, Registered and Terminated.
// It is not safe for concurrent use; one goroutine must own every call.
type Lifecycle struct {
	logger      *zap.Logger
	registry    presence.Registry
	announcer   *Announcer
	scheduler   Scheduler
	idleTimeout time.Duration
	emitter     Emitter
}

func NewLifecycle(logger *zap.Logger, registry presence.Registry, announcer *Announcer,
	scheduler Scheduler, idleTimeout time.Duration, emitter Emitter) *Lifecycle {
	return &Lifecycle{
		logger:      logger.Named("chat.lifecycle"),
		registry:    registry,
		announcer:   announcer,
		scheduler:   scheduler,
		idleTimeout: idleTimeout,
		emitter:     emitter,
	}
}

// Register claims name for an unregistered session. It reports whether the
// session is now registered; every outcome is acknowledged to the requester.
func (l *Lifecycle) Register(ctx context.Context, s *Session, name string) bool {
	if s.state != StateUnregistered {
		l.logger.Debug("registration refused",
			zap.String("conn_id", s.id),
			zap.Stringer("state", s.state))
		l.emitter.Acknowledge(ctx, s, false)
		return false
	}

	ok, err := l.registry.TryClaim(ctx, name)
	if err != nil && !errors.Is(err, presence.ErrEmptyName) {
		l.logger.Error("failed to claim name",
			zap.String("conn_id", s.id),
			zap.String("username", name),
			zap.Error(err))
	}
	if !ok {
		l.logger.Debug("name not available",
			zap.String("conn_id", s.id),
			zap.String("username", name))
		l.emitter.Acknowledge(ctx, s, false)
		return false
	}

	s.username = name
	s.state = StateRegistered
	l.arm(s)

	l.emitter.Acknowledge(ctx, s, true)
	l.broadcastPresence(ctx)
	l.emitter.Broadcast(ctx, l.announcer.Joined(name))
	l.logger.Info("user joined chat",
		zap.String("conn_id", s.id),
		zap.String("username", name))
	return true
}

// Activity pushes the idle deadline of a registered session out by the full timeout
func (l *Lifecycle) Activity(s *Session) {
	if s.state != StateRegistered {
		return
	}
	l.arm(s)
}

// ExpireIdle terminates a registered session whose idle timer of the given
// generation fired. Firings from a timer that has since been rearmed or
// stopped are ignored.
func (l *Lifecycle) ExpireIdle(ctx context.Context, s *Session, generation uint64) bool {
	if s.state != StateRegistered || generation != s.generation {
		return false
	}

	s.disarm()
	s.state = StateTerminated
	s.reason = TerminationIdleTimeout

	l.emitter.NotifyIdle(ctx, s)
	l.emitter.Sever(ctx, s)
	l.depart(ctx, s)
	l.logger.Info("user disconnected after inactivity",
		zap.String("conn_id", s.id),
		zap.String("username", s.username),
		zap.Duration("idle_timeout", l.idleTimeout))
	return true
}

// Terminate ends the session after a transport disconnect. It is a no-op for
// sessions that already ended.
func (l *Lifecycle) Terminate(ctx context.Context, s *Session) bool {
	switch s.state {
	case StateTerminated:
		return false
	case StateUnregistered:
		s.state = StateTerminated
		s.reason = TerminationVoluntary
		return true
	}

	s.disarm()
	s.state = StateTerminated
	s.reason = TerminationVoluntary
	l.depart(ctx, s)
	l.logger.Info("user left chat",
		zap.String("conn_id", s.id),
		zap.String("username", s.username))
	return true
}

// arm replaces any pending idle timer with a fresh one
func (l *Lifecycle) arm(s *Session) {
	s.disarm()
	id, gen := s.id, s.generation
	s.timer = l.scheduler.AfterFunc(l.idleTimeout, func() {
		l.emitter.IdleExpired(id, gen)
	})
}

// depart releases the name and tells everyone the user is gone
func (l *Lifecycle) depart(ctx context.Context, s *Session) {
	if err := l.registry.Release(ctx, s.username); err != nil {
		l.logger.Error("failed to release name",
			zap.String("conn_id", s.id),
			zap.String("username", s.username),
			zap.Error(err))
	}
	l.broadcastPresence(ctx)
	l.emitter.Broadcast(ctx, l.announcer.Departed(s.username, s.reason))
}

func (l *Lifecycle) broadcastPresence(ctx context.Context) {
	names, err := l.registry.Snapshot(ctx)
	if err != nil {
		l.logger.Error("failed to snapshot presence", zap.Error(err))
		return
	}
	l.emitter.BroadcastPresence(ctx, names)
}
