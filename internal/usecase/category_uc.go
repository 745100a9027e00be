package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phenrril/kitos/internal/domain"
)

type CategoryUC struct {
	Categories domain.CategoryRepo
}

// List falls back to the default rows while the store is empty.
func (uc *CategoryUC) List(ctx context.Context) ([]domain.Category, error) {
	list, err := uc.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return domain.DefaultCategories(), nil
	}
	return list, nil
}

// Get returns nil without error for unknown slugs.
func (uc *CategoryUC) Get(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := uc.Categories.FindBySlug(ctx, strings.TrimSpace(slug))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	n, err := uc.Categories.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		for _, d := range domain.DefaultCategories() {
			if d.Slug == slug {
				return &d, nil
			}
		}
	}
	return nil, nil
}

func (uc *CategoryUC) Upsert(ctx context.Context, slug string, p domain.CategoryPatch) (*domain.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", domain.ErrValidation)
	}
	if !domain.ValidCategory(slug) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, slug)
	}
	return uc.Categories.Upsert(ctx, slug, p)
}

// SeedDefaults writes the default rows when the table is empty.
func (uc *CategoryUC) SeedDefaults(ctx context.Context) error {
	n, err := uc.Categories.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	for _, c := range domain.DefaultCategories() {
		name := c.Name
		if _, err := uc.Categories.Upsert(ctx, c.Slug, domain.CategoryPatch{Name: &name}); err != nil {
			return err
		}
	}
	return nil
}
