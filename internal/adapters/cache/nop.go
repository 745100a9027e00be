package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/kitos/internal/domain"
)

// Nop is used when no REDIS_ADDR is configured; every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, uuid.UUID) ([]domain.Variant, int64, bool, error) {
	return nil, 0, false, nil
}
func (Nop) Set(context.Context, uuid.UUID, int64, []domain.Variant) error { return nil }
func (Nop) Invalidate(context.Context, uuid.UUID) error { return nil }
