package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/kitos/internal/domain"
)

type DesignUC struct {
	Designs domain.DesignRepo
}

// CreateDesignInput mirrors the POST /designs body.
type CreateDesignInput struct {
	Name             string
	Slug             string
	Category         string
	ShortDescription string
	HeroImageURL     string
	IsFeatured       bool
	OptionGroups     []domain.OptionGroup
}

// CatalogResult is the stored catalog after an admin edit.
type CatalogResult struct {
	OptionGroups []domain.OptionGroup `json:"option_groups"`
	Version      int                  `json:"option_groups_version"`
}

// DesignFilterFor turns the listing query into a store filter: all=1 lists every
// design, otherwise the category (default marble) is applied and only featured designs
// are returned unless featured=0.
func DesignFilterFor(all bool, category, featured string) domain.DesignFilter {
	var f domain.DesignFilter
	if !all {
		f.Category = strings.TrimSpace(category)
		if f.Category == "" {
			f.Category = domain.CategoryMarble
		}
	}
	if featured == "1" || (!all && featured != "0") {
		t := true
		f.Featured = &t
	}
	return f
}

func (uc *DesignUC) List(ctx context.Context, f domain.DesignFilter) ([]domain.Design, error) {
	return uc.Designs.List(ctx, f)
}

func (uc *DesignUC) GetBySlug(ctx context.Context, slug string) (*domain.Design, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", domain.ErrValidation)
	}
	return uc.Designs.FindBySlug(ctx, slug)
}

func (uc *DesignUC) Create(ctx context.Context, in CreateDesignInput) (*domain.Design, error) {
	d := &domain.Design{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(in.Name),
		Slug:             strings.TrimSpace(in.Slug),
		Category:         strings.TrimSpace(in.Category),
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		HeroImageURL:     strings.TrimSpace(in.HeroImageURL),
		IsFeatured:       in.IsFeatured,
		OptionGroups:     domain.NormalizeGroups(in.OptionGroups),
	}
	if d.Name == "" || d.Slug == "" || d.Category == "" {
		return nil, fmt.Errorf("%w: missing required fields: name, slug, category", domain.ErrValidation)
	}
	if !domain.ValidCategory(d.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, d.Category)
	}
	if _, err := uc.Designs.FindBySlug(ctx, d.Slug); err == nil {
		return nil, fmt.Errorf("%w: slug %q already exists", domain.ErrConflict, d.Slug)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := uc.Designs.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies the supplied fields. Option groups are normalized and, when
// expectedVersion is set, only written if the stored version still matches.
func (uc *DesignUC) Update(ctx context.Context, slug string, p domain.DesignPatch) (*domain.Design, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", domain.ErrValidation)
	}
	if p.Category != nil && !domain.ValidCategory(*p.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *p.Category)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if p.OptionGroups != nil {
		groups := domain.NormalizeGroups(*p.OptionGroups)
		p.OptionGroups = &groups
	}
	return uc.Designs.Update(ctx, slug, p)
}

func (uc *DesignUC) AddGroup(ctx context.Context, slug, name, key string) (*CatalogResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrValidation)
	}
	if domain.DeriveKey(key) == "" && domain.DeriveKey(name) == "" {
		return nil, fmt.Errorf("%w: group key is empty", domain.ErrValidation)
	}
	return uc.editCatalog(ctx, slug, func(gs []domain.OptionGroup) []domain.OptionGroup {
		return domain.AddGroup(gs, name, key)
	})
}

func (uc *DesignUC) RemoveGroup(ctx context.Context, slug, key string) (*CatalogResult, error) {
	return uc.editCatalog(ctx, slug, func(gs []domain.OptionGroup) []domain.OptionGroup {
		return domain.RemoveGroup(gs, key)
	})
}

func (uc *DesignUC) AddOption(ctx context.Context, slug, key, value string) (*CatalogResult, error) {
	return uc.editCatalog(ctx, slug, func(gs []domain.OptionGroup) []domain.OptionGroup {
		return domain.AddOption(gs, key, value)
	})
}

func (uc *DesignUC) RemoveOption(ctx context.Context, slug, key, value string) (*CatalogResult, error) {
	return uc.editCatalog(ctx, slug, func(gs []domain.OptionGroup) []domain.OptionGroup {
		return domain.RemoveOption(gs, key, value)
	})
}

// editCatalog loads the catalog, applies edit and persists it guarded by the version
// that was read. Unchanged catalogs are not written.
func (uc *DesignUC) editCatalog(ctx context.Context, slug string, edit func([]domain.OptionGroup) []domain.OptionGroup) (*CatalogResult, error) {
	d, err := uc.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	cur := d.Groups()
	next := edit(cur)
	if domain.EqualGroups(cur, next) {
		return &CatalogResult{OptionGroups: cur, Version: d.OptionGroupsVersion}, nil
	}
	expected := d.OptionGroupsVersion
	v, err := uc.Designs.SaveOptionGroups(ctx, d.ID, next, &expected)
	if err != nil {
		return nil, err
	}
	return &CatalogResult{OptionGroups: next, Version: v}, nil
}
