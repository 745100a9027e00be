package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/phenrril/kitos/internal/domain"
)

// DetailPath is the public page that renders the configurator.
const DetailPath = "/detail/marble-table-1"

type ConfiguratorUC struct {
	Designs        domain.DesignRepo
	Variants       *VariantUC
	PublicBaseURL  string
	WhatsAppNumber string
}

type ConfiguratorView struct {
	Design       *domain.Design       `json:"design"`
	OptionGroups []domain.OptionGroup `json:"option_groups"`
	Selections   map[string]string    `json:"selections"`
	ImageURL     string               `json:"image_url"`
	HasPhoto     bool                 `json:"has_photo"`
	ShareURL     string               `json:"share_url"`
	InquiryURL   string               `json:"inquiry_url"`
	Prefetch     []string             `json:"prefetch"`
}

// Configure resolves the image for the selection carried by query.
func (uc *ConfiguratorUC) Configure(ctx context.Context, slug string, query url.Values) (*ConfiguratorView, error) {
	d, err := uc.Designs.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	vs, err := uc.Variants.ForDesign(ctx, d)
	if err != nil {
		return nil, err
	}

	groups := d.Groups()
	if len(groups) == 0 {
		groups = domain.LegacyGroups()
	}
	keys := domain.GroupKeys(groups)
	sel := domain.DefaultSelections(groups, query)
	index := domain.BuildIndex(keys, vs)
	img, ok := domain.Resolve(index, keys, sel, d.FallbackImage())

	share := uc.ShareURL(d.Slug, keys, sel)
	return &ConfiguratorView{
		Design:       d,
		OptionGroups: groups,
		Selections:   sel,
		ImageURL:     img,
		HasPhoto:     ok,
		ShareURL:     share,
		InquiryURL:   uc.InquiryURL(d.Name, keys, sel, share),
		Prefetch:     domain.Prefetch(index, img),
	}, nil
}

// ShareURL keeps group order in the query string, followed by the short legacy aliases.
func (uc *ConfiguratorUC) ShareURL(slug string, keys []string, sel map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(uc.PublicBaseURL, "/"))
	b.WriteString(DetailPath)
	b.WriteString("?design=")
	b.WriteString(url.QueryEscape(slug))
	add := func(k, v string) {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	for _, k := range keys {
		if v := sel[k]; v != "" {
			add(k, v)
		}
	}
	for _, k := range []string{domain.LegacyMaterial, domain.LegacyCloth, domain.LegacyWoodAccent} {
		alias, _ := domain.LegacyAlias(k)
		if v := sel[k]; v != "" {
			add(alias, v)
		}
	}
	return b.String()
}

// InquiryURL builds the WhatsApp link with the prefilled inquiry text.
func (uc *ConfiguratorUC) InquiryURL(title string, keys []string, sel map[string]string, share string) string {
	if uc.WhatsAppNumber == "" {
		return ""
	}
	lines := make([]string, 0, len(keys)+2)
	lines = append(lines, "KITOS Inquiry: "+title)
	for _, k := range keys {
		lines = append(lines, k+": "+sel[k])
	}
	lines = append(lines, "Link: "+share)
	text := strings.ReplaceAll(url.QueryEscape(strings.Join(lines, "\n")), "+", "%20")
	return "https://wa.me/" + uc.WhatsAppNumber + "?text=" + text
}
