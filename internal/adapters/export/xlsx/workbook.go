// Package xlsx renders the design catalog as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/kitos/internal/domain"
)

const (
	DesignsSheet  = "designs"
	VariantsSheet = "variants"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	designHeader  = []any{"slug", "name", "category", "featured", "hero_image_url", "option_groups", "option_groups_version", "created_at"}
	variantHeader = []any{"design_slug", "variant_id", "options", "material", "cloth", "wood_accent", "image_url", "created_at"}
)

// Write streams a workbook with one row per design and one row per variant.
func Write(w io.Writer, data []domain.DesignVariants) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DesignsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(VariantsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(DesignsSheet, "A1", &designHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(VariantsSheet, "A1", &variantHeader); err != nil {
		return err
	}

	drow, vrow := 2, 2
	for _, dv := range data {
		d := dv.Design
		row := []any{
			d.Slug, d.Name, d.Category, d.IsFeatured, d.HeroImageURL,
			describeGroups(d.Groups()), d.OptionGroupsVersion, d.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(DesignsSheet, cell(drow), &row); err != nil {
			return err
		}
		drow++
		for _, v := range dv.Variants {
			row := []any{
				d.Slug, v.ID.String(), describeOptions(v.Options), v.Material, v.Cloth, v.WoodAccent,
				v.ImageURL, v.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(VariantsSheet, cell(vrow), &row); err != nil {
				return err
			}
			vrow++
		}
	}
	return f.Write(w)
}

func cell(row int) string { return fmt.Sprintf("A%d", row) }

// describeGroups renders "material: nero, calacatta; cloth: blue".
func describeGroups(groups []domain.OptionGroup) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.Key+": "+strings.Join(g.Options, ", "))
	}
	return strings.Join(parts, "; ")
}

func describeOptions(o domain.OptionValues) string {
	parts := make([]string, 0, o.Len())
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "; ")
}
