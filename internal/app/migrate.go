package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/kitos/internal/domain"
)

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(&domain.Design{}, &domain.Variant{}, &domain.Category{}, &domain.GalleryItem{}); err != nil {
		return err
	}
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_variants_design_created ON variants (design_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_gallery_items_order ON gallery_items (sort_order, created_at)",
	}
	if a.DB.Dialector.Name() == "postgres" {
		stmts = append(stmts, "CREATE INDEX IF NOT EXISTS idx_variants_options_gin ON variants USING gin (options)")
	}
	// Index failures are logged, not returned.
	if failed := a.ensureIndexes(stmts); failed > 0 {
		log.Warn().Int("failed", failed).Msg("some indexes were not created")
	}
	return nil
}

func (a *App) ensureIndexes(stmts []string) int {
	failed := 0
	for _, q := range stmts {
		if err := a.DB.Exec(q).Error; err != nil {
			log.Warn().Err(err).Str("ddl", q).Msg("create index")
			failed++
		}
	}
	return failed
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.Migrate(); err != nil {
		return err
	}
	return a.Seed(ctx)
}

type seedVariant struct {
	material, cloth, wood, image string
}

type seedDesign struct {
	slug, name, hero, description string
	variants                      []seedVariant
}

const seedImageDir = "/detail/marble-table-1/marble-table-1_"

var marbleDesigns = []seedDesign{
	{
		slug:        "nero-signature",
		name:        "Nero Signature",
		hero:        "/homepage/marble/marble-1.png",
		description: "Deep black marble with modern base and charcoal cloth.",
		variants: []seedVariant{
			{"nero", "charcoal", "black", seedImageDir + "nero_charcoal_black.png"},
			{"nero", "blue", "black", seedImageDir + "nero_blue_black.png"},
			{"nero", "green", "black", seedImageDir + "nero_green_black.png"},
			{"nero", "charcoal", "walnut", seedImageDir + "nero_charcoal_walnut.png"},
			{"nero", "blue", "walnut", seedImageDir + "nero_blue_walnut.png"},
		},
	},
	{
		slug:        "calacatta-gallery",
		name:        "Calacatta Gallery",
		hero:        "/homepage/marble/marble-2.png",
		description: "Light Calacatta marble with warm wood details.",
		variants: []seedVariant{
			{"calacatta", "charcoal", "black", seedImageDir + "calacatta_charcoal_black.png"},
			{"calacatta", "blue", "walnut", seedImageDir + "calacatta_blue_walnut.png"},
		},
	},
}

// Seed writes the default categories and, on an empty catalog, the two launch marble designs.
func (a *App) Seed(ctx context.Context) error {
	if err := a.CategoryUC.SeedDefaults(ctx); err != nil {
		return err
	}
	existing, err := a.Designs.List(ctx, domain.DesignFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, sd := range marbleDesigns {
		d := &domain.Design{
			Slug:             sd.slug,
			Name:             sd.name,
			Category:         domain.CategoryMarble,
			ShortDescription: sd.description,
			HeroImageURL:     sd.hero,
			IsFeatured:       true,
			OptionGroups:     domain.LegacyGroups(),
		}
		if err := a.Designs.Create(ctx, d); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return err
		}
		for _, sv := range sd.variants {
			v := &domain.Variant{
				DesignID: d.ID,
				Options: domain.NewOptionValues(
					domain.LegacyMaterial, sv.material,
					domain.LegacyCloth, sv.cloth,
					domain.LegacyWoodAccent, sv.wood,
				),
				ImageURL: sv.image,
			}
			if err := a.Variants.Create(ctx, v); err != nil {
				return err
			}
		}
		log.Info().Str("design", d.Slug).Int("variants", len(sd.variants)).Msg("seeded design")
	}
	return nil
}
