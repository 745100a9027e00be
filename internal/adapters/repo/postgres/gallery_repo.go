package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/kitos/internal/domain"
)

type GalleryRepo struct{ db *gorm.DB }

func NewGalleryRepo(db *gorm.DB) *GalleryRepo { return &GalleryRepo{db: db} }

// List orders by sort_order, newest first within the same position.
func (r *GalleryRepo) List(ctx context.Context) ([]domain.GalleryItem, error) {
	list := []domain.GalleryItem{}
	if err := r.db.WithContext(ctx).Order("sort_order asc").Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GalleryRepo) Create(ctx context.Context, it *domain.GalleryItem) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *GalleryRepo) Update(ctx context.Context, id uuid.UUID, p domain.GalleryPatch) (*domain.GalleryItem, error) {
	upd := map[string]any{}
	if p.Title != nil {
		upd["title"] = *p.Title
	}
	if p.Type != nil {
		upd["type"] = *p.Type
	}
	if p.ImageURL != nil {
		upd["image_url"] = *p.ImageURL
	}
	if p.SortOrder != nil {
		upd["sort_order"] = *p.SortOrder
	}
	if len(upd) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.GalleryItem{}).Where("id = ?", id).Updates(upd)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrNotFound
		}
	}
	var it domain.GalleryItem
	if err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *GalleryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.GalleryItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
