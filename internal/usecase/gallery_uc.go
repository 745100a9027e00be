package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/kitos/internal/domain"
)

type GalleryUC struct {
	Items domain.GalleryRepo
}

func (uc *GalleryUC) List(ctx context.Context) ([]domain.GalleryItem, error) {
	return uc.Items.List(ctx)
}

func (uc *GalleryUC) Create(ctx context.Context, it *domain.GalleryItem) error {
	it.Title = strings.TrimSpace(it.Title)
	it.Type = strings.TrimSpace(it.Type)
	it.ImageURL = strings.TrimSpace(it.ImageURL)
	if it.Title == "" || it.Type == "" || it.ImageURL == "" {
		return fmt.Errorf("%w: missing required fields: title, type, image_url", domain.ErrValidation)
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return uc.Items.Create(ctx, it)
}

func (uc *GalleryUC) Update(ctx context.Context, id string, p domain.GalleryPatch) (*domain.GalleryItem, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	for _, f := range []*string{p.Title, p.Type, p.ImageURL} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, fmt.Errorf("%w: title, type and image_url cannot be empty", domain.ErrValidation)
		}
	}
	return uc.Items.Update(ctx, uid, p)
}

func (uc *GalleryUC) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return uc.Items.Delete(ctx, uid)
}

func parseID(id string) (uuid.UUID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.Nil, fmt.Errorf("%w: id required", domain.ErrValidation)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, id)
	}
	return uid, nil
}
