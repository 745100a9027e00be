package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/kitos/internal/adapters/cache"
	"github.com/phenrril/kitos/internal/adapters/httpserver"
	"github.com/phenrril/kitos/internal/adapters/repo/postgres"
	"github.com/phenrril/kitos/internal/adapters/storage/gcs"
	"github.com/phenrril/kitos/internal/adapters/storage/localfs"
	"github.com/phenrril/kitos/internal/config"
	"github.com/phenrril/kitos/internal/domain"
	"github.com/phenrril/kitos/internal/usecase"
)

type App struct {
	DB     *gorm.DB
	Config *config.Config

	DesignUC       *usecase.DesignUC
	VariantUC      *usecase.VariantUC
	UploadUC       *usecase.UploadUC
	CategoryUC     *usecase.CategoryUC
	GalleryUC      *usecase.GalleryUC
	ConfiguratorUC *usecase.ConfiguratorUC
	ExportUC       *usecase.ExportUC

	Designs     domain.DesignRepo
	Variants    domain.VariantRepo
	Blobs       domain.BlobStore
	OAuthConfig *oauth2.Config

	uploadsDir string
	closers    []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	a := &App{DB: db, Config: cfg}

	designRepo := postgres.NewDesignRepo(db)
	variantRepo := postgres.NewVariantRepo(db)
	a.Designs = designRepo
	a.Variants = variantRepo

	blobs, err := a.openBlobStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Blobs = blobs

	var variantCache domain.VariantCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisVariantCache(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, variant cache disabled")
		} else {
			variantCache = rc
			a.closers = append(a.closers, rc)
		}
	}

	a.UploadUC = &usecase.UploadUC{Blobs: blobs}
	a.DesignUC = &usecase.DesignUC{Designs: designRepo}
	a.VariantUC = &usecase.VariantUC{Designs: designRepo, Variants: variantRepo, Cache: variantCache, Uploads: a.UploadUC}
	a.CategoryUC = &usecase.CategoryUC{Categories: postgres.NewCategoryRepo(db)}
	a.GalleryUC = &usecase.GalleryUC{Items: postgres.NewGalleryRepo(db)}
	a.ConfiguratorUC = &usecase.ConfiguratorUC{
		Designs:        designRepo,
		Variants:       a.VariantUC,
		PublicBaseURL:  cfg.PublicBaseURL,
		WhatsAppNumber: cfg.WhatsAppNumber,
	}
	a.ExportUC = &usecase.ExportUC{Designs: designRepo, Variants: variantRepo, Concurrency: cfg.ExportConcurrency}

	if cfg.GoogleClientID != "" && cfg.GoogleSecret != "" {
		a.OAuthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return a, nil
}

func (a *App) openBlobStore(ctx context.Context) (domain.BlobStore, error) {
	switch a.Config.StorageDriver {
	case "gcs":
		st, err := gcs.New(ctx, gcs.Config{
			Bucket:        a.Config.GCSBucket,
			PublicBaseURL: a.Config.GCSPublicBaseURL,
			EmulatorHost:  a.Config.GCSEmulatorHost,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st)
		return st, nil
	default:
		if err := os.MkdirAll(a.Config.StorageDir, 0o755); err != nil {
			return nil, err
		}
		a.uploadsDir = a.Config.StorageDir
		return localfs.New(a.Config.StorageDir, a.Config.UploadsBaseURL), nil
	}
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Designs:        a.DesignUC,
		Variants:       a.VariantUC,
		Uploads:        a.UploadUC,
		Categories:     a.CategoryUC,
		Gallery:        a.GalleryUC,
		Configurator:   a.ConfiguratorUC,
		Export:         a.ExportUC,
		OAuth:          a.OAuthConfig,
		AdminSecret:    a.Config.JWTSecret,
		AdminAPIKey:    a.Config.AdminAPIKey,
		AdminEmails:    a.Config.AdminEmails,
		AdminRedirect:  a.Config.PublicBaseURL + "/admin",
		CORSOrigins:    a.Config.CORSOrigins,
		MaxUploadBytes: a.Config.MaxUploadBytes,
		UploadsDir:     a.uploadsDir,
	})
}

// Close releases the cache and blob clients. The database handle is owned by the caller.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
