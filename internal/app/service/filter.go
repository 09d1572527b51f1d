package service

import (
	"strings"
	"thundercipher/internal/domain/model"
)

// FilterWildcard matches every category or difficulty.
const FilterWildcard = "all"

// FilterLabs computes the visible subset of a catalog. Search is a
// case-insensitive substring match on title and description; category
// and difficulty match by exact equality, with "all" (any casing) or
// the empty string as wildcard. Input order is preserved.
func FilterLabs(items []model.Lab, searchTerm, category, difficulty string) []model.Lab {
	search := strings.ToLower(searchTerm)
	out := []model.Lab{}
	for _, lab := range items {
		if search != "" &&
			!strings.Contains(strings.ToLower(lab.Title), search) &&
			!strings.Contains(strings.ToLower(lab.Description), search) {
			continue
		}
		if !wildcardOrEqual(category, lab.Category) {
			continue
		}
		if !wildcardOrEqual(difficulty, string(lab.Difficulty)) {
			continue
		}
		out = append(out, lab)
	}
	return out
}

func wildcardOrEqual(filter, value string) bool {
	if filter == "" || strings.EqualFold(filter, FilterWildcard) {
		return true
	}
	return filter == value
}
