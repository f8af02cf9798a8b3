package presence

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MemoryRegistry implements Registry for a single process
type MemoryRegistry struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	members  []string
	index    map[string]string // folded -> stored name
	reserved string
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty registry that refuses the reserved name
func NewMemoryRegistry(logger *zap.Logger, reserved string) *MemoryRegistry {
	return &MemoryRegistry{
		logger:   logger.Named("presence.memory"),
		index:    make(map[string]string),
		reserved: fold(reserved),
	}
}

func (r *MemoryRegistry) TryClaim(_ context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}
	key := fold(name)
	if key == r.reserved {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.index[key]; taken {
		return false, nil
	}
	r.index[key] = name
	r.members = append(r.members, name)
	return true, nil
}

func (r *MemoryRegistry) Release(_ context.Context, name string) error {
	key := fold(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.index[key]; !ok || stored != name {
		return nil
	}
	delete(r.index, key)
	r.members = lo.Without(r.members, name)
	return nil
}

func (r *MemoryRegistry) Snapshot(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out, nil
}

func (r *MemoryRegistry) Contains(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.index[fold(name)]
	return ok && stored == name, nil
}

func (r *MemoryRegistry) Close() error {
	return nil
}
