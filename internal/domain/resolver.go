package domain

import (
	"net/url"
	"sort"
	"strings"
)

// KeyDelimiter joins selected values into a composite key.
const KeyDelimiter = "|"

// CompositeKey joins the selected values in group order. Groups without a selection
// contribute an empty string.
func CompositeKey(groupKeys []string, selections map[string]string) string {
	parts := make([]string, len(groupKeys))
	for i, k := range groupKeys {
		parts[i] = selections[k]
	}
	return strings.Join(parts, KeyDelimiter)
}

// BuildIndex maps composite keys to image URLs using the given (current) group order.
// Variants are expected in creation order; a later variant with the same key wins.
func BuildIndex(groupKeys []string, variants []Variant) map[string]string {
	idx := make(map[string]string, len(variants))
	for _, v := range variants {
		if v.ImageURL == "" {
			continue
		}
		idx[CompositeKey(groupKeys, v.Options.Map())] = v.ImageURL
	}
	return idx
}

// Resolve looks the selection up in the index. A miss returns fallback with hasPhoto=false.
func Resolve(index map[string]string, groupKeys []string, selections map[string]string, fallback string) (string, bool) {
	if img, ok := index[CompositeKey(groupKeys, selections)]; ok && img != "" {
		return img, true
	}
	if fallback == "" {
		fallback = PlaceholderImage
	}
	return fallback, false
}

// DefaultSelections picks the initial value of every group: the query value under the
// group key, then under its legacy alias, then the legacy default, then the first option.
func DefaultSelections(groups []OptionGroup, query url.Values) map[string]string {
	out := make(map[string]string, len(groups))
	for _, g := range groups {
		if query != nil {
			if query.Has(g.Key) {
				out[g.Key] = query.Get(g.Key)
				continue
			}
			if alias, ok := legacyAliases[g.Key]; ok && query.Has(alias) {
				out[g.Key] = query.Get(alias)
				continue
			}
		}
		if def, ok := legacyDefaults[g.Key]; ok {
			out[g.Key] = def
			continue
		}
		if len(g.Options) > 0 {
			out[g.Key] = g.Options[0]
			continue
		}
		out[g.Key] = ""
	}
	return out
}

// Prefetch lists every image reachable from the index except current, sorted.
func Prefetch(index map[string]string, current string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, img := range index {
		if img == current {
			continue
		}
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	sort.Strings(out)
	return out
}
