package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks structural constraints via go-playground/validator
// struct tags, then cross-field invariants that tags alone can't express,
// mirroring the teacher's config.NewValidator/ValidateAll two-pass shape.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if cfg.Database.Password == "" {
		return fmt.Errorf("%w: DB_PASSWORD is required", ErrValidationFailed)
	}
	if cfg.Queue.WorkerCount < 1 {
		return fmt.Errorf("%w: queue worker_count must be at least 1", ErrValidationFailed)
	}
	if cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns {
		return fmt.Errorf("%w: database max_idle_conns (%d) cannot exceed max_open_conns (%d)",
			ErrValidationFailed, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	}
	return nil
}
