package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	CategoryMarble = "marble"
	CategoryWood   = "wood"
	CategoryHybrid = "hybrid"
)

// PlaceholderImage is shown when a design has neither a matching variant nor a hero image.
const PlaceholderImage = "/gallery/pool-table-1.png"

type Design struct {
	ID                  uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Slug                string                           `gorm:"uniqueIndex;size:140;not null" json:"slug"`
	Name                string                           `gorm:"size:180" json:"name"`
	Category            string                           `gorm:"size:40;index" json:"category"`
	ShortDescription    string                           `gorm:"type:text" json:"short_description"`
	HeroImageURL        string                           `gorm:"size:512" json:"hero_image_url"`
	OptionGroups        datatypes.JSONSlice[OptionGroup] `json:"option_groups"`
	OptionGroupsVersion int                              `gorm:"not null;default:0" json:"option_groups_version"`
	IsFeatured          bool                             `gorm:"not null;index" json:"is_featured"`
	CreatedAt           time.Time                        `json:"created_at"`
	UpdatedAt           time.Time                        `json:"updated_at"`
}

// OptionGroup is one axis of customization. Options keep insertion order.
type OptionGroup struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

func (d *Design) Groups() []OptionGroup {
	if d == nil || len(d.OptionGroups) == 0 {
		return []OptionGroup{}
	}
	return []OptionGroup(d.OptionGroups)
}

// FallbackImage is the image shown when no variant matches the current selection.
func (d *Design) FallbackImage() string {
	if d != nil && d.HeroImageURL != "" {
		return d.HeroImageURL
	}
	return PlaceholderImage
}

type Variant struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	DesignID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"design_id"`
	DesignSlug string       `gorm:"-" json:"design_slug,omitempty"`
	Material   string       `gorm:"size:80" json:"material"`
	Cloth      string       `gorm:"size:80" json:"cloth"`
	WoodAccent string       `gorm:"size:80" json:"wood_accent"`
	Options    OptionValues `json:"options"`
	ImageURL   string       `gorm:"size:512;not null" json:"image_url"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Normalize fills Options from the legacy columns for rows written before options were stored,
// and mirrors the legacy keys back into their columns.
func (v *Variant) Normalize() {
	if v.Options.Len() == 0 {
		var opts OptionValues
		for _, kv := range [][2]string{{LegacyMaterial, v.Material}, {LegacyCloth, v.Cloth}, {LegacyWoodAccent, v.WoodAccent}} {
			if kv[1] != "" {
				opts.Set(kv[0], kv[1])
			}
		}
		v.Options = opts
		return
	}
	if s, ok := v.Options.Get(LegacyMaterial); ok {
		v.Material = s
	}
	if s, ok := v.Options.Get(LegacyCloth); ok {
		v.Cloth = s
	}
	if s, ok := v.Options.Get(LegacyWoodAccent); ok {
		v.WoodAccent = s
	}
}

type Category struct {
	Slug         string    `gorm:"primaryKey;size:40" json:"slug"`
	Name         string    `gorm:"size:120" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	HeroImageURL string    `gorm:"size:512" json:"hero_image_url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type GalleryItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:180;not null" json:"title"`
	Type      string    `gorm:"size:80;not null" json:"type"`
	ImageURL  string    `gorm:"size:512;not null" json:"image_url"`
	SortOrder int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type DesignFilter struct {
	Category string
	Featured *bool
}

// DesignPatch carries the fields supplied on an update; nil means keep the stored value.
type DesignPatch struct {
	Name             *string
	Category         *string
	ShortDescription *string
	HeroImageURL     *string
	IsFeatured       *bool
	OptionGroups     *[]OptionGroup
	// ExpectedVersion guards OptionGroups when set.
	ExpectedVersion *int
}

type CategoryPatch struct {
	Name         *string
	Description  *string
	HeroImageURL *string
}

type GalleryPatch struct {
	Title     *string
	Type      *string
	ImageURL  *string
	SortOrder *int
}

// DesignVariants groups a design with its variants for export.
type DesignVariants struct {
	Design   Design
	Variants []Variant
}
