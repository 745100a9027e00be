package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/kitos/internal/adapters/export/xlsx"
	"github.com/phenrril/kitos/internal/domain"
	"github.com/phenrril/kitos/internal/usecase"
)

// readUpload returns the multipart "file" field, bounded by maxUpload.
func (s *Server) readUpload(c *gin.Context) (usecase.UploadFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return usecase.UploadFile{}, errFileTooLarge
		}
		return usecase.UploadFile{}, fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}
	if fh.Size > s.maxUpload {
		return usecase.UploadFile{}, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.UploadFile{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		return usecase.UploadFile{}, err
	}
	if int64(len(data)) > s.maxUpload {
		return usecase.UploadFile{}, errFileTooLarge
	}
	return usecase.UploadFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

var errFileTooLarge = errors.New("file too large")

func (s *Server) writeUploadError(c *gin.Context, err error) {
	if errors.Is(err, errFileTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	writeError(c, err)
}

func (s *Server) upload(c *gin.Context) {
	f, err := s.readUpload(c)
	if err != nil {
		s.writeUploadError(c, err)
		return
	}
	slug := c.PostForm("designSlug")
	if slug == "" {
		slug = c.PostForm("design_slug")
	}
	res, err := s.uploads.Upload(c.Request.Context(), slug, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": res.URL, "filename": res.Filename, "storage": res.Storage})
}

// uploadVariant stores the image and records the variant in one request.
func (s *Server) uploadVariant(c *gin.Context) {
	f, err := s.readUpload(c)
	if err != nil {
		s.writeUploadError(c, err)
		return
	}
	var opts domain.OptionValues
	if raw := strings.TrimSpace(c.PostForm("options")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "options must be a JSON object of strings"})
			return
		}
	}
	if opts.Len() == 0 {
		opts = legacyOptions(c.PostForm("material"), c.PostForm("cloth"), c.PostForm("wood_accent"))
	}
	v, up, err := s.variants.CreateWithUpload(c.Request.Context(), c.PostForm("design_slug"), opts, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "variant": v, "upload": up})
}

func (s *Server) listGallery(c *gin.Context) {
	items, err := s.gallery.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.GalleryItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createGalleryReq struct {
	Title     string `json:"title" binding:"required,max=180"`
	Type      string `json:"type" binding:"required,max=80"`
	ImageURL  string `json:"image_url" binding:"required,max=512"`
	SortOrder int    `json:"sort_order"`
}

type updateGalleryReq struct {
	ID        string  `json:"id"`
	Title     *string `json:"title" binding:"omitempty,max=180"`
	Type      *string `json:"type" binding:"omitempty,max=80"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=512"`
	SortOrder *int    `json:"sort_order"`
}

func (s *Server) createGalleryItem(c *gin.Context) {
	var req createGalleryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	it := &domain.GalleryItem{Title: req.Title, Type: req.Type, ImageURL: req.ImageURL, SortOrder: req.SortOrder}
	if err := s.gallery.Create(c.Request.Context(), it); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "item": it})
}

func (s *Server) updateGalleryItem(c *gin.Context) {
	var req updateGalleryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	it, err := s.gallery.Update(c.Request.Context(), req.ID, domain.GalleryPatch{
		Title:     req.Title,
		Type:      req.Type,
		ImageURL:  req.ImageURL,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": it})
}

func (s *Server) deleteGalleryItem(c *gin.Context) {
	if err := s.gallery.Delete(c.Request.Context(), c.Query("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getCategories(c *gin.Context) {
	if slug, ok := c.GetQuery("slug"); ok {
		cat, err := s.categories.Get(c.Request.Context(), slug)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": cat})
		return
	}
	list, err := s.categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

type upsertCategoryReq struct {
	Slug         string  `json:"slug"`
	Name         *string `json:"name" binding:"omitempty,max=120"`
	Description  *string `json:"description"`
	HeroImageURL *string `json:"hero_image_url" binding:"omitempty,max=512"`
}

func (s *Server) upsertCategory(c *gin.Context) {
	var req upsertCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cat, err := s.categories.Upsert(c.Request.Context(), req.Slug, domain.CategoryPatch{
		Name:         req.Name,
		Description:  req.Description,
		HeroImageURL: req.HeroImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": cat})
}

func (s *Server) exportVariants(c *gin.Context) {
	data, err := s.export.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	name := fmt.Sprintf("kitos-variants-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", xlsx.ContentType)
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Status(http.StatusOK)
	if err := xlsx.Write(c.Writer, data); err != nil {
		log.Error().Err(err).Msg("write xlsx export")
	}
}
