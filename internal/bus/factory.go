package bus

import (
	"context"
	"fmt"

	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/common/config"

	"go.uber.org/zap"
)

// NewBus creates the bus backend named by cfg.Type
func NewBus(ctx context.Context, logger *zap.Logger, cfg *config.BusConfig) (Bus, error) {
	logger.Info("Initializing broadcast bus", zap.String("type", cfg.Type))
	switch cfg.Type {
	case cnst.BackendMemory:
		return NewMemoryBus(logger), nil
	case cnst.BackendRedis:
		b, err := NewRedisBus(ctx, logger, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: bus %q", cnst.ErrUnsupportedBackend, cfg.Type)
	}
}
