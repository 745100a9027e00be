package domain

import "strings"

// DeriveKey normalizes a label into a machine key: lowercase, trimmed, every run of
// characters outside [a-z0-9] (whitespace, punctuation, underscores) turned into a
// single underscore, with no leading or trailing underscore.
func DeriveKey(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

func findGroup(groups []OptionGroup, key string) int {
	for i, g := range groups {
		if g.Key == key {
			return i
		}
	}
	return -1
}

func cloneGroups(groups []OptionGroup) []OptionGroup {
	out := make([]OptionGroup, len(groups))
	for i, g := range groups {
		out[i] = OptionGroup{Key: g.Key, Name: g.Name, Options: append([]string(nil), g.Options...)}
		if out[i].Options == nil {
			out[i].Options = []string{}
		}
	}
	return out
}

// AddGroup appends a group keyed by DeriveKey(key), or DeriveKey(name) when key is blank.
// Empty names, empty keys and duplicate keys leave the catalog unchanged.
func AddGroup(groups []OptionGroup, name, key string) []OptionGroup {
	name = strings.TrimSpace(name)
	src := key
	if strings.TrimSpace(src) == "" {
		src = name
	}
	k := DeriveKey(src)
	if name == "" || k == "" || findGroup(groups, k) >= 0 {
		return cloneGroups(groups)
	}
	out := cloneGroups(groups)
	return append(out, OptionGroup{Key: k, Name: name, Options: []string{}})
}

// AddOption appends value to the group when it is non-blank and not already present.
func AddOption(groups []OptionGroup, key, value string) []OptionGroup {
	out := cloneGroups(groups)
	value = strings.TrimSpace(value)
	i := findGroup(out, key)
	if value == "" || i < 0 {
		return out
	}
	for _, v := range out[i].Options {
		if v == value {
			return out
		}
	}
	out[i].Options = append(out[i].Options, value)
	return out
}

func RemoveOption(groups []OptionGroup, key, value string) []OptionGroup {
	out := cloneGroups(groups)
	i := findGroup(out, key)
	if i < 0 {
		return out
	}
	kept := out[i].Options[:0]
	for _, v := range out[i].Options {
		if v != value {
			kept = append(kept, v)
		}
	}
	out[i].Options = kept
	return out
}

func RemoveGroup(groups []OptionGroup, key string) []OptionGroup {
	out := make([]OptionGroup, 0, len(groups))
	for _, g := range cloneGroups(groups) {
		if g.Key != key {
			out = append(out, g)
		}
	}
	return out
}

// NormalizeGroups rebuilds a client-supplied catalog through AddGroup and AddOption,
// so keys are derived and duplicates dropped.
func NormalizeGroups(groups []OptionGroup) []OptionGroup {
	out := []OptionGroup{}
	for _, g := range groups {
		before := len(out)
		out = AddGroup(out, g.Name, g.Key)
		if len(out) == before {
			continue
		}
		k := out[len(out)-1].Key
		for _, v := range g.Options {
			out = AddOption(out, k, v)
		}
	}
	return out
}

func GroupKeys(groups []OptionGroup) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

func HasGroup(groups []OptionGroup, key string) bool { return findGroup(groups, key) >= 0 }

func EqualGroups(a, b []OptionGroup) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Name != b[i].Name || len(a[i].Options) != len(b[i].Options) {
			return false
		}
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				return false
			}
		}
	}
	return true
}
