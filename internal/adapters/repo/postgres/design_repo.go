package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/phenrril/kitos/internal/domain"
)

type DesignRepo struct{ db *gorm.DB }

func NewDesignRepo(db *gorm.DB) *DesignRepo { return &DesignRepo{db: db} }

func (r *DesignRepo) FindBySlug(ctx context.Context, slug string) (*domain.Design, error) {
	var d domain.Design
	if err := r.db.WithContext(ctx).First(&d, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DesignRepo) List(ctx context.Context, f domain.DesignFilter) ([]domain.Design, error) {
	list := []domain.Design{}
	q := r.db.WithContext(ctx).Model(&domain.Design{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if err := q.Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DesignRepo) Create(ctx context.Context, d *domain.Design) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.OptionGroups == nil {
		d.OptionGroups = datatypes.JSONSlice[domain.OptionGroup]{}
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// Update applies the supplied fields in one statement and returns the stored row.
func (r *DesignRepo) Update(ctx context.Context, slug string, p domain.DesignPatch) (*domain.Design, error) {
	cur, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	upd := map[string]any{"updated_at": time.Now()}
	if p.Name != nil {
		upd["name"] = *p.Name
	}
	if p.Category != nil {
		upd["category"] = *p.Category
	}
	if p.ShortDescription != nil {
		upd["short_description"] = *p.ShortDescription
	}
	if p.HeroImageURL != nil {
		upd["hero_image_url"] = *p.HeroImageURL
	}
	if p.IsFeatured != nil {
		upd["is_featured"] = *p.IsFeatured
	}
	q := r.db.WithContext(ctx).Model(&domain.Design{}).Where("id = ?", cur.ID)
	if p.OptionGroups != nil {
		upd["option_groups"] = datatypes.JSONSlice[domain.OptionGroup](*p.OptionGroups)
		upd["option_groups_version"] = gorm.Expr("option_groups_version + 1")
		if p.ExpectedVersion != nil {
			q = q.Where("option_groups_version = ?", *p.ExpectedVersion)
		}
	}
	res := q.Updates(upd)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrConflict
	}
	return r.FindBySlug(ctx, slug)
}

func (r *DesignRepo) SaveOptionGroups(ctx context.Context, id uuid.UUID, groups []domain.OptionGroup, expectedVersion *int) (int, error) {
	if groups == nil {
		groups = []domain.OptionGroup{}
	}
	q := r.db.WithContext(ctx).Model(&domain.Design{}).Where("id = ?", id)
	if expectedVersion != nil {
		q = q.Where("option_groups_version = ?", *expectedVersion)
	}
	res := q.Updates(map[string]any{
		"option_groups":         datatypes.JSONSlice[domain.OptionGroup](groups),
		"option_groups_version": gorm.Expr("option_groups_version + 1"),
		"updated_at":            time.Now(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if expectedVersion != nil {
			return 0, domain.ErrConflict
		}
		return 0, domain.ErrNotFound
	}
	var d domain.Design
	if err := r.db.WithContext(ctx).Select("option_groups_version").First(&d, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return d.OptionGroupsVersion, nil
}

func (r *DesignRepo) SetHeroIfEmpty(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).Model(&domain.Design{}).
		Where("id = ? AND (hero_image_url IS NULL OR hero_image_url = '')", id).
		Update("hero_image_url", imageURL).Error
}
