package cmdutil

// SelectorSet is a membership set built from CLI selector flags such as
// --templates or --replacements. Blank selectors are ignored, so an empty or
// all-blank list selects everything.
type SelectorSet map[string]struct{}

func NewSelectorSet(selectors []string) SelectorSet {
	set := make(SelectorSet, len(selectors))
	for _, s := range selectors {
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// Empty reports whether the set selects everything.
func (s SelectorSet) Empty() bool { return len(s) == 0 }

// Matches reports whether name is selected. An empty set matches all names.
func (s SelectorSet) Matches(name string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[name]
	return ok
}

// Filter returns the items whose key is selected. When the set is empty the
// original slice is returned unchanged.
func Filter[T any](items []T, set SelectorSet, key func(T) string) []T {
	if set.Empty() || len(items) == 0 {
		return items
	}
	result := make([]T, 0, len(items))
	for _, item := range items {
		if set.Matches(key(item)) {
			result = append(result, item)
		}
	}
	return result
}
