package bus

import (
	"context"
	"sync"

	"github.com/amoylab/huddle/internal/common/cnst"

	"go.uber.org/zap"
)

// MemoryBus implements Bus within one process
type MemoryBus struct {
	logger *zap.Logger
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
	done   chan struct{}
	once   sync.Once
}

type subscriber struct {
	ch   chan []byte
	done <-chan struct{}
	once sync.Once
}

var _ Bus = (*MemoryBus)(nil)

func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		logger: logger.Named("bus.memory"),
		subs:   make(map[*subscriber]struct{}),
		done:   make(chan struct{}),
	}
}

// Publish hands the frame to every subscriber, waiting for slow ones
func (b *MemoryBus) Publish(ctx context.Context, frame []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return cnst.ErrBusClosed
	}
	for sub := range b.subs {
		select {
		case sub.ch <- frame:
		case <-sub.done:
		case <-b.done:
			return cnst.ErrBusClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, cnst.ErrBusClosed
	}
	sub := &subscriber{ch: make(chan []byte, 64), done: ctx.Done()}
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.remove(sub)
	}()
	return sub.ch, nil
}

func (b *MemoryBus) remove(sub *subscriber) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	sub.once.Do(func() { close(sub.ch) })
}

// Close ends every subscription; blocked publishers return ErrBusClosed
func (b *MemoryBus) Close() error {
	b.once.Do(func() { close(b.done) })
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}
