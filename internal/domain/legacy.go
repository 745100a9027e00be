package domain

// Group keys of the first marble table, still referenced by old links and rows.
const (
	LegacyMaterial   = "material"
	LegacyCloth      = "cloth"
	LegacyWoodAccent = "wood_accent"
)

var legacyAliases = map[string]string{
	LegacyMaterial:   "m",
	LegacyCloth:      "c",
	LegacyWoodAccent: "w",
}

var legacyDefaults = map[string]string{
	LegacyMaterial:   "nero",
	LegacyCloth:      "charcoal",
	LegacyWoodAccent: "black",
}

// LegacyAlias returns the short query parameter for a legacy group key.
func LegacyAlias(key string) (string, bool) {
	a, ok := legacyAliases[key]
	return a, ok
}

// LegacyGroups is the catalog used for designs that have none stored.
func LegacyGroups() []OptionGroup {
	return []OptionGroup{
		{Key: LegacyMaterial, Name: "Material", Options: []string{"nero", "calacatta"}},
		{Key: LegacyCloth, Name: "Cloth color", Options: []string{"charcoal", "blue", "green", "brown"}},
		{Key: LegacyWoodAccent, Name: "Wood accents", Options: []string{"black", "walnut"}},
	}
}

func Categories() []string { return []string{CategoryMarble, CategoryWood, CategoryHybrid} }

func ValidCategory(slug string) bool {
	switch slug {
	case CategoryMarble, CategoryWood, CategoryHybrid:
		return true
	}
	return false
}

// DefaultCategories are served while the categories table is empty.
func DefaultCategories() []Category {
	return []Category{
		{Slug: CategoryMarble, Name: "Marble"},
		{Slug: CategoryWood, Name: "Wood"},
		{Slug: CategoryHybrid, Name: "Hybrid"},
	}
}
