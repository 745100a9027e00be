package domain

import (
	"context"

	"github.com/google/uuid"
)

type DesignRepo interface {
	FindBySlug(ctx context.Context, slug string) (*Design, error)
	List(ctx context.Context, f DesignFilter) ([]Design, error)
	Create(ctx context.Context, d *Design) error
	Update(ctx context.Context, slug string, p DesignPatch) (*Design, error)
	// SaveOptionGroups replaces the whole list and returns the new version.
	// A non-nil expectedVersion that no longer matches yields ErrConflict.
	SaveOptionGroups(ctx context.Context, id uuid.UUID, groups []OptionGroup, expectedVersion *int) (int, error)
	SetHeroIfEmpty(ctx context.Context, id uuid.UUID, imageURL string) error
}

type VariantRepo interface {
	Create(ctx context.Context, v *Variant) error
	ListByDesign(ctx context.Context, designID uuid.UUID) ([]Variant, error)
}

type CategoryRepo interface {
	List(ctx context.Context) ([]Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	Upsert(ctx context.Context, slug string, p CategoryPatch) (*Category, error)
	Count(ctx context.Context) (int64, error)
}

type GalleryRepo interface {
	List(ctx context.Context) ([]GalleryItem, error)
	Create(ctx context.Context, it *GalleryItem) error
	Update(ctx context.Context, id uuid.UUID, p GalleryPatch) (*GalleryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlobStore holds uploaded images.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Name() string
}

// VariantCache keeps the variant list of a design between requests.
// Entries are stored per generation: Get reports the generation it looked at and
// Set writes under that generation only, so a list read before an Invalidate can
// never become visible after it.
type VariantCache interface {
	Get(ctx context.Context, designID uuid.UUID) (vs []Variant, gen int64, ok bool, err error)
	Set(ctx context.Context, designID uuid.UUID, gen int64, vs []Variant) error
	Invalidate(ctx context.Context, designID uuid.UUID) error
}
