package httpserver

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"github.com/phenrril/kitos/internal/usecase"
)

type Server struct {
	designs      *usecase.DesignUC
	variants     *usecase.VariantUC
	uploads      *usecase.UploadUC
	categories   *usecase.CategoryUC
	gallery      *usecase.GalleryUC
	configurator *usecase.ConfiguratorUC
	export       *usecase.ExportUC
	oauthCfg     *oauth2.Config

	adminAllowed  map[string]struct{}
	adminSecret   []byte
	adminAPIKey   string
	adminRedirect string
	maxUpload     int64
}

type Deps struct {
	Designs      *usecase.DesignUC
	Variants     *usecase.VariantUC
	Uploads      *usecase.UploadUC
	Categories   *usecase.CategoryUC
	Gallery      *usecase.GalleryUC
	Configurator *usecase.ConfiguratorUC
	Export       *usecase.ExportUC
	OAuth        *oauth2.Config

	AdminSecret    string
	AdminAPIKey    string
	AdminEmails    []string
	AdminRedirect  string
	CORSOrigins    []string
	MaxUploadBytes int64
	// UploadsDir is served under /uploads when set.
	UploadsDir string
}

var registerTagNames sync.Once

func New(d Deps) http.Handler {
	s := &Server{
		designs:       d.Designs,
		variants:      d.Variants,
		uploads:       d.Uploads,
		categories:    d.Categories,
		gallery:       d.Gallery,
		configurator:  d.Configurator,
		export:        d.Export,
		oauthCfg:      d.OAuth,
		adminAllowed:  map[string]struct{}{},
		adminAPIKey:   d.AdminAPIKey,
		adminRedirect: d.AdminRedirect,
		maxUpload:     d.MaxUploadBytes,
	}
	for _, e := range d.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			s.adminAllowed[e] = struct{}{}
		}
	}
	sec := d.AdminSecret
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)
	if s.adminRedirect == "" {
		s.adminRedirect = "/admin"
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 25 << 20
	}

	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})

	r := gin.New()
	r.Use(RequestID(), Recovery(), Logging(), cors.New(corsConfig(d.CORSOrigins)))
	s.routes(r, d.UploadsDir)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) routes(r *gin.Engine, uploadsDir string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if uploadsDir != "" {
		r.Static("/uploads", uploadsDir)
	}

	r.GET("/designs", s.listDesigns)
	r.GET("/variants", s.listVariants)
	r.GET("/gallery", s.listGallery)
	r.GET("/categories", s.getCategories)
	r.GET("/configurator/:slug", s.configure)

	r.POST("/admin/login", s.handleAdminLogin)
	r.POST("/admin/logout", s.handleAdminLogout)
	r.GET("/auth/google/login", s.handleGoogleLogin)
	r.GET("/auth/google/callback", s.handleGoogleCallback)

	w := r.Group("/", s.RequireAdmin(), Sanitize())
	w.POST("/designs", s.createDesign)
	w.PUT("/designs", s.updateDesign)
	w.POST("/variants", s.createVariant)
	w.POST("/upload", s.upload)
	w.POST("/gallery", s.createGalleryItem)
	w.PUT("/gallery", s.updateGalleryItem)
	w.DELETE("/gallery", s.deleteGalleryItem)
	w.PUT("/categories", s.upsertCategory)

	// Catalog labels here share the raw form of POST /variants options.
	admin := r.Group("/admin", s.RequireAdmin())
	admin.POST("/designs/:slug/groups", s.addGroup)
	admin.DELETE("/designs/:slug/groups/:key", s.removeGroup)
	admin.POST("/designs/:slug/groups/:key/options", s.addOption)
	admin.DELETE("/designs/:slug/groups/:key/options/:value", s.removeOption)
	admin.POST("/variants/upload", s.uploadVariant)
	admin.GET("/export/variants.xlsx", s.exportVariants)
}
