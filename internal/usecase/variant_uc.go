package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/kitos/internal/domain"
)

type VariantUC struct {
	Designs  domain.DesignRepo
	Variants domain.VariantRepo
	Cache    domain.VariantCache
	Uploads  *UploadUC
}

type CreateVariantInput struct {
	DesignSlug string
	ImageURL   string
	Options    domain.OptionValues
}

// List returns the variants of a design, oldest first. Unknown designs have none.
func (uc *VariantUC) List(ctx context.Context, designSlug string) ([]domain.Variant, error) {
	designSlug = strings.TrimSpace(designSlug)
	if designSlug == "" {
		return nil, fmt.Errorf("%w: design_slug required", domain.ErrValidation)
	}
	d, err := uc.Designs.FindBySlug(ctx, designSlug)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Variant{}, nil
	}
	if err != nil {
		return nil, err
	}
	return uc.ForDesign(ctx, d)
}

// ForDesign reads through the cache. The store result is cached under the generation
// seen before the read; a create in between bumps the generation and strands it.
func (uc *VariantUC) ForDesign(ctx context.Context, d *domain.Design) ([]domain.Variant, error) {
	var gen int64
	cacheable := false
	if uc.Cache != nil {
		vs, g, ok, err := uc.Cache.Get(ctx, d.ID)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("design", d.Slug).Msg("variant cache get")
		case ok:
			return vs, nil
		default:
			gen, cacheable = g, true
		}
	}
	vs, err := uc.Variants.ListByDesign(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := uc.Cache.Set(ctx, d.ID, gen, vs); err != nil {
			log.Warn().Err(err).Str("design", d.Slug).Msg("variant cache set")
		}
	}
	return vs, nil
}

// Create records a variant. Unknown designs are created on the fly; option values
// missing from the catalog are added and persisted before the variant is written.
func (uc *VariantUC) Create(ctx context.Context, in CreateVariantInput) (*domain.Variant, error) {
	in.DesignSlug = strings.TrimSpace(in.DesignSlug)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.DesignSlug == "" || in.ImageURL == "" {
		return nil, fmt.Errorf("%w: missing required fields: design_slug, image_url", domain.ErrValidation)
	}
	d, opts, err := uc.prepare(ctx, in.DesignSlug, in.Options)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, d, opts, in.ImageURL)
}

// CreateWithUpload checks the design before storing the file, then records the variant.
// A metadata failure after a successful upload leaves the blob in place.
func (uc *VariantUC) CreateWithUpload(ctx context.Context, designSlug string, options domain.OptionValues, f UploadFile) (*domain.Variant, *UploadResult, error) {
	designSlug = strings.TrimSpace(designSlug)
	if designSlug == "" {
		return nil, nil, fmt.Errorf("%w: design_slug required", domain.ErrValidation)
	}
	if uc.Uploads == nil {
		return nil, nil, errors.New("uploads not configured")
	}
	d, opts, err := uc.prepare(ctx, designSlug, options)
	if err != nil {
		return nil, nil, err
	}
	up, err := uc.Uploads.Upload(ctx, designSlug, f)
	if err != nil {
		return nil, nil, err
	}
	v, err := uc.record(ctx, d, opts, up.URL)
	if err != nil {
		log.Warn().Err(err).Str("orphan_key", up.Key).Str("storage", up.Storage).Msg("variant metadata failed after upload")
		return nil, up, err
	}
	return v, up, nil
}

// prepare resolves (or creates) the design and validates options against its catalog.
// It performs no write for an existing design without option groups.
func (uc *VariantUC) prepare(ctx context.Context, slug string, options domain.OptionValues) (*domain.Design, domain.OptionValues, error) {
	opts := trimOptions(options)
	d, err := uc.Designs.FindBySlug(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		d, opts, err = uc.autoCreateDesign(ctx, slug, opts)
		if err != nil {
			return nil, opts, err
		}
	case err != nil:
		return nil, opts, err
	}
	groups := d.Groups()
	if len(groups) == 0 {
		return nil, opts, domain.ErrNoOptionGroups
	}
	for _, k := range opts.Keys() {
		if !domain.HasGroup(groups, k) {
			return nil, opts, fmt.Errorf("%w: unknown option group %q for design %q", domain.ErrValidation, k, d.Slug)
		}
	}
	return d, opts, nil
}

func (uc *VariantUC) autoCreateDesign(ctx context.Context, slug string, opts domain.OptionValues) (*domain.Design, domain.OptionValues, error) {
	var groups []domain.OptionGroup
	var keyed domain.OptionValues
	for _, k := range opts.Keys() {
		v, _ := opts.Get(k)
		before := len(groups)
		groups = domain.AddGroup(groups, k, "")
		if len(groups) > before {
			keyed.Set(groups[len(groups)-1].Key, v)
		}
	}
	if len(groups) == 0 {
		return nil, opts, domain.ErrNoOptionGroups
	}
	d := &domain.Design{
		ID:           uuid.New(),
		Slug:         slug,
		Name:         slug,
		Category:     domain.CategoryMarble,
		IsFeatured:   true,
		OptionGroups: groups,
	}
	if err := uc.Designs.Create(ctx, d); err != nil {
		return nil, opts, err
	}
	log.Info().Str("design", slug).Msg("design created from variant upload")
	return d, keyed, nil
}

// record grows the catalog, writes the variant, then sets the hero image if empty.
func (uc *VariantUC) record(ctx context.Context, d *domain.Design, opts domain.OptionValues, imageURL string) (*domain.Variant, error) {
	groups := d.Groups()
	grown := groups
	for _, k := range opts.Keys() {
		v, _ := opts.Get(k)
		grown = domain.AddOption(grown, k, v)
	}
	if !domain.EqualGroups(groups, grown) {
		expected := d.OptionGroupsVersion
		if _, err := uc.Designs.SaveOptionGroups(ctx, d.ID, grown, &expected); err != nil {
			return nil, fmt.Errorf("save option groups: %w", err)
		}
	}

	v := &domain.Variant{
		ID:         uuid.New(),
		DesignID:   d.ID,
		DesignSlug: d.Slug,
		Options:    opts,
		ImageURL:   imageURL,
	}
	if err := uc.Variants.Create(ctx, v); err != nil {
		return nil, err
	}
	if d.HeroImageURL == "" {
		if err := uc.Designs.SetHeroIfEmpty(ctx, d.ID, imageURL); err != nil {
			log.Warn().Err(err).Str("design", d.Slug).Msg("set hero image")
		}
	}
	if uc.Cache != nil {
		if err := uc.Cache.Invalidate(ctx, d.ID); err != nil {
			log.Warn().Err(err).Str("design", d.Slug).Msg("variant cache invalidate")
		}
	}
	return v, nil
}

func trimOptions(in domain.OptionValues) domain.OptionValues {
	var out domain.OptionValues
	for _, k := range in.Keys() {
		v, _ := in.Get(k)
		if k = strings.TrimSpace(k); k != "" {
			out.Set(k, strings.TrimSpace(v))
		}
	}
	return out
}
