package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phenrril/kitos/internal/domain"
	"github.com/phenrril/kitos/internal/usecase"
)

type createDesignReq struct {
	Name             string               `json:"name" binding:"max=180"`
	Slug             string               `json:"slug" binding:"max=140"`
	Category         string               `json:"category"`
	ShortDescription string               `json:"short_description"`
	HeroImageURL     string               `json:"hero_image_url" binding:"max=512"`
	IsFeatured       bool                 `json:"is_featured"`
	OptionGroups     []domain.OptionGroup `json:"option_groups"`
}

type updateDesignReq struct {
	Slug                string                `json:"slug"`
	Name                *string               `json:"name" binding:"omitempty,max=180"`
	Category            *string               `json:"category"`
	ShortDescription    *string               `json:"short_description"`
	HeroImageURL        *string               `json:"hero_image_url" binding:"omitempty,max=512"`
	IsFeatured          *bool                 `json:"is_featured"`
	OptionGroups        *[]domain.OptionGroup `json:"option_groups"`
	OptionGroupsVersion *int                  `json:"option_groups_version" binding:"omitempty,gte=0"`
}

type createVariantReq struct {
	DesignSlug string              `json:"design_slug"`
	ImageURL   string              `json:"image_url" binding:"max=512"`
	Options    domain.OptionValues `json:"options"`
	// legacy shape
	Material   string `json:"material"`
	Cloth      string `json:"cloth"`
	WoodAccent string `json:"wood_accent"`
}

func (s *Server) listDesigns(c *gin.Context) {
	all := c.Query("all") == "1" || c.Query("all") == "true"
	f := usecase.DesignFilterFor(all, c.Query("category"), c.Query("featured"))
	list, err := s.designs.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []domain.Design{}
	}
	for i := range list {
		list[i].OptionGroups = list[i].Groups()
	}
	c.JSON(http.StatusOK, gin.H{"designs": list})
}

func (s *Server) createDesign(c *gin.Context) {
	var req createDesignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	d, err := s.designs.Create(c.Request.Context(), usecase.CreateDesignInput{
		Name:             req.Name,
		Slug:             req.Slug,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		HeroImageURL:     req.HeroImageURL,
		IsFeatured:       req.IsFeatured,
		OptionGroups:     req.OptionGroups,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "design": d})
}

func (s *Server) updateDesign(c *gin.Context) {
	var req updateDesignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p := domain.DesignPatch{
		Name:             req.Name,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		HeroImageURL:     req.HeroImageURL,
		IsFeatured:       req.IsFeatured,
		OptionGroups:     req.OptionGroups,
	}
	if req.OptionGroups != nil {
		p.ExpectedVersion = req.OptionGroupsVersion
	}
	d, err := s.designs.Update(c.Request.Context(), req.Slug, p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "design": d})
}

func (s *Server) listVariants(c *gin.Context) {
	vs, err := s.variants.List(c.Request.Context(), c.Query("design_slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	if vs == nil {
		vs = []domain.Variant{}
	}
	c.JSON(http.StatusOK, gin.H{"variants": vs})
}

func (s *Server) createVariant(c *gin.Context) {
	var req createVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	opts := req.Options
	if opts.Len() == 0 {
		opts = legacyOptions(req.Material, req.Cloth, req.WoodAccent)
	}
	v, err := s.variants.Create(c.Request.Context(), usecase.CreateVariantInput{
		DesignSlug: req.DesignSlug,
		ImageURL:   req.ImageURL,
		Options:    opts,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "variant": v})
}

func legacyOptions(material, cloth, wood string) domain.OptionValues {
	var o domain.OptionValues
	for _, kv := range [][2]string{{domain.LegacyMaterial, material}, {domain.LegacyCloth, cloth}, {domain.LegacyWoodAccent, wood}} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			o.Set(kv[0], v)
		}
	}
	return o
}

func (s *Server) configure(c *gin.Context) {
	view, err := s.configurator.Configure(c.Request.Context(), c.Param("slug"), c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addGroupReq struct {
	Name string `json:"name" binding:"required,max=120"`
	Key  string `json:"key" binding:"max=120"`
}

type addOptionReq struct {
	Value string `json:"value" binding:"required,max=120"`
}

func (s *Server) writeCatalog(c *gin.Context, res *usecase.CatalogResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "option_groups": res.OptionGroups, "option_groups_version": res.Version})
}

func (s *Server) addGroup(c *gin.Context) {
	var req addGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := s.designs.AddGroup(c.Request.Context(), c.Param("slug"), req.Name, req.Key)
	s.writeCatalog(c, res, err)
}

func (s *Server) removeGroup(c *gin.Context) {
	res, err := s.designs.RemoveGroup(c.Request.Context(), c.Param("slug"), c.Param("key"))
	s.writeCatalog(c, res, err)
}

func (s *Server) addOption(c *gin.Context) {
	var req addOptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := s.designs.AddOption(c.Request.Context(), c.Param("slug"), c.Param("key"), req.Value)
	s.writeCatalog(c, res, err)
}

func (s *Server) removeOption(c *gin.Context) {
	res, err := s.designs.RemoveOption(c.Request.Context(), c.Param("slug"), c.Param("key"), c.Param("value"))
	s.writeCatalog(c, res, err)
}
