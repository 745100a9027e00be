package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/phenrril/kitos/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	list := []domain.Category{}
	if err := r.db.WithContext(ctx).Order("slug asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, err
}

// Upsert creates the row when missing, otherwise patches the supplied fields.
func (r *CategoryRepo) Upsert(ctx context.Context, slug string, p domain.CategoryPatch) (*domain.Category, error) {
	existing, err := r.FindBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		c := domain.Category{Slug: slug, Name: slug, UpdatedAt: time.Now()}
		if p.Name != nil && *p.Name != "" {
			c.Name = *p.Name
		}
		if p.Description != nil {
			c.Description = *p.Description
		}
		if p.HeroImageURL != nil {
			c.HeroImageURL = *p.HeroImageURL
		}
		if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
			return nil, err
		}
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	upd := map[string]any{"updated_at": time.Now()}
	if p.Name != nil {
		upd["name"] = *p.Name
	}
	if p.Description != nil {
		upd["description"] = *p.Description
	}
	if p.HeroImageURL != nil {
		upd["hero_image_url"] = *p.HeroImageURL
	}
	if err := r.db.WithContext(ctx).Model(existing).Updates(upd).Error; err != nil {
		return nil, err
	}
	return r.FindBySlug(ctx, slug)
}
