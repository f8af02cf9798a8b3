package presence

import (
	"context"
	"fmt"

	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/common/config"

	"go.uber.org/zap"
)

// NewRegistry creates the registry backend named by cfg.Type
func NewRegistry(ctx context.Context, logger *zap.Logger, reserved string, cfg *config.RegistryConfig) (Registry, error) {
	logger.Info("Initializing presence registry", zap.String("type", cfg.Type))
	switch cfg.Type {
	case cnst.BackendMemory:
		return NewMemoryRegistry(logger, reserved), nil
	case cnst.BackendRedis:
		r, err := NewRedisRegistry(ctx, logger, reserved, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: registry %q", cnst.ErrUnsupportedBackend, cfg.Type)
	}
}
