package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/kitos/internal/domain"
)

type VariantRepo struct{ db *gorm.DB }

func NewVariantRepo(db *gorm.DB) *VariantRepo { return &VariantRepo{db: db} }

func (r *VariantRepo) Create(ctx context.Context, v *domain.Variant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.Normalize()
	return r.db.WithContext(ctx).Create(v).Error
}

// ListByDesign returns variants oldest first, each with Options filled in.
func (r *VariantRepo) ListByDesign(ctx context.Context, designID uuid.UUID) ([]domain.Variant, error) {
	list := []domain.Variant{}
	if err := r.db.WithContext(ctx).Where("design_id = ?", designID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, nil
}
