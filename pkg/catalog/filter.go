package catalog

import "strings"

// Filter narrows catalog results to configured focus topics. With no
// focus keywords every paper passes; exclusions always apply first.
type Filter struct {
	focus   []string
	exclude []string
}

// NewFilter creates a filter from focus and exclusion keyword lists.
func NewFilter(focusKeywords, excludeKeywords []string) *Filter {
	focus := make([]string, len(focusKeywords))
	for i, kw := range focusKeywords {
		focus[i] = strings.ToLower(kw)
	}

	exclude := make([]string, len(excludeKeywords))
	for i, kw := range excludeKeywords {
		exclude[i] = strings.ToLower(kw)
	}

	return &Filter{focus: focus, exclude: exclude}
}

// Matches reports whether text passes the filter.
func (f *Filter) Matches(text string) bool {
	lower := strings.ToLower(text)

	for _, ex := range f.exclude {
		if strings.Contains(lower, ex) {
			return false
		}
	}

	if len(f.focus) == 0 {
		return true
	}
	for _, kw := range f.focus {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
