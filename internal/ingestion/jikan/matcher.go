package jikan

import "strings"

// SelectMatch picks the candidate that will feed the reconciler.
//
// Only candidates whose type equals typeToken are considered. Among them the
// first whose primary title equals name wins; otherwise the first of them.
// Both comparisons ignore case. No candidate of the right type means no match.
func SelectMatch(candidates []Record, name, typeToken string) (*Record, bool) {
	want := normalize(typeToken)
	target := strings.TrimSpace(name)

	var fallback *Record
	for i := range candidates {
		c := &candidates[i]
		if c.TypeToken() != want {
			continue
		}
		if strings.EqualFold(c.PrimaryTitle(), target) {
			return c, true
		}
		if fallback == nil {
			fallback = c
		}
	}

	if fallback == nil {
		return nil, false
	}
	return fallback, true
}
