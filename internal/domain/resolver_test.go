package domain

import (
	"net/url"
	"testing"
)

func TestCompositeKeyOrderSensitive(t *testing.T) {
	sel := map[string]string{"material": "nero", "cloth": "green"}
	if got := CompositeKey([]string{"material", "cloth"}, sel); got != "nero|green" {
		t.Fatalf("key: want=%q got=%q", "nero|green", got)
	}
	if got := CompositeKey([]string{"cloth", "material"}, sel); got != "green|nero" {
		t.Fatalf("swapped key: want=%q got=%q", "green|nero", got)
	}
}

func TestCompositeKeyMissingSelection(t *testing.T) {
	got := CompositeKey([]string{"material", "cloth", "wood_accent"}, map[string]string{"cloth": "blue"})
	if got != "|blue|" {
		t.Fatalf("key: want=%q got=%q", "|blue|", got)
	}
}

func TestResolveHit(t *testing.T) {
	idx := map[string]string{"nero|green": "img1.png"}
	img, ok := Resolve(idx, []string{"material", "cloth"}, map[string]string{"material": "nero", "cloth": "green"}, "hero.png")
	if !ok || img != "img1.png" {
		t.Fatalf("resolve: want=(img1.png,true) got=(%s,%v)", img, ok)
	}
}

func TestResolveMissFallsBack(t *testing.T) {
	idx := map[string]string{"nero|green": "img1.png"}
	groups := []string{"material", "cloth"}
	sel := map[string]string{"material": "nero", "cloth": "blue"}

	img, ok := Resolve(idx, groups, sel, "hero.png")
	if ok || img != "hero.png" {
		t.Fatalf("miss: want=(hero.png,false) got=(%s,%v)", img, ok)
	}
	img, ok = Resolve(idx, groups, sel, "")
	if ok || img != PlaceholderImage {
		t.Fatalf("miss without hero: want=(%s,false) got=(%s,%v)", PlaceholderImage, img, ok)
	}
}

func TestBuildIndexUsesCurrentOrder(t *testing.T) {
	variants := []Variant{
		{ImageURL: "a.png", Options: NewOptionValues("material", "nero", "cloth", "green")},
		{ImageURL: "b.png", Options: NewOptionValues("cloth", "blue", "material", "nero")},
		{ImageURL: "", Options: NewOptionValues("material", "x", "cloth", "y")},
	}
	idx := BuildIndex([]string{"cloth", "material"}, variants)
	if idx["green|nero"] != "a.png" || idx["blue|nero"] != "b.png" {
		t.Fatalf("unexpected index: %v", idx)
	}
	if len(idx) != 2 {
		t.Fatalf("variants without image should be skipped: %v", idx)
	}
}

func TestBuildIndexLaterVariantWins(t *testing.T) {
	variants := []Variant{
		{ImageURL: "old.png", Options: NewOptionValues("material", "nero")},
		{ImageURL: "new.png", Options: NewOptionValues("material", "nero")},
	}
	if got := BuildIndex([]string{"material"}, variants)["nero"]; got != "new.png" {
		t.Fatalf("want=%q got=%q", "new.png", got)
	}
}

func TestDefaultSelections(t *testing.T) {
	groups := append(LegacyGroups(), OptionGroup{Key: "pockets", Name: "Pockets", Options: []string{"leather", "chrome"}}, OptionGroup{Key: "empty", Name: "Empty"})

	got := DefaultSelections(groups, nil)
	want := map[string]string{"material": "nero", "cloth": "charcoal", "wood_accent": "black", "pockets": "leather", "empty": ""}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("default %s: want=%q got=%q", k, v, got[k])
		}
	}

	q := url.Values{}
	q.Set("m", "calacatta")
	q.Set("cloth", "green")
	q.Set("c", "blue")
	q.Set("pockets", "chrome")
	got = DefaultSelections(groups, q)
	if got["material"] != "calacatta" {
		t.Fatalf("legacy alias: want=%q got=%q", "calacatta", got["material"])
	}
	if got["cloth"] != "green" {
		t.Fatalf("group key wins over alias: want=%q got=%q", "green", got["cloth"])
	}
	if got["pockets"] != "chrome" {
		t.Fatalf("query value: want=%q got=%q", "chrome", got["pockets"])
	}
}

func TestPrefetch(t *testing.T) {
	idx := map[string]string{"a": "2.png", "b": "1.png", "c": "2.png", "d": "cur.png"}
	got := Prefetch(idx, "cur.png")
	if len(got) != 2 || got[0] != "1.png" || got[1] != "2.png" {
		t.Fatalf("prefetch: got=%v", got)
	}
}

func TestVariantNormalize(t *testing.T) {
	v := Variant{Material: "nero", Cloth: "blue"}
	v.Normalize()
	if s, _ := v.Options.Get("material"); s != "nero" {
		t.Fatalf("material: want=%q got=%q", "nero", s)
	}
	if _, ok := v.Options.Get("wood_accent"); ok {
		t.Fatalf("blank legacy column should not become an option")
	}

	v = Variant{Options: NewOptionValues("cloth", "green", "marble", "Nero")}
	v.Normalize()
	if v.Cloth != "green" || v.Material != "" {
		t.Fatalf("legacy columns: got material=%q cloth=%q", v.Material, v.Cloth)
	}
}
