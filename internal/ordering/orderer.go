// Package ordering ranks brief sections by topical priority so that the most
// central attributes of the subject are covered first.
package ordering

import (
	"sort"
	"strings"

	"article-server/internal/models"
)

// OrderSections returns a new slice with the sections stably sorted by
// attribute-category rank, then by descending query priority. Equal keys keep
// their input order, so re-ordering an already-ordered list is a no-op.
func OrderSections(sections []models.BriefSection) []models.BriefSection {
	ordered := make([]models.BriefSection, len(sections))
	copy(ordered, sections)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := ordered[i].Category.Rank(), ordered[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		return queryPriority(ordered[i]) > queryPriority(ordered[j])
	})

	return ordered
}

func queryPriority(s models.BriefSection) float64 {
	// Missing priority sorts as zero.
	return s.QueryPriority
}

var (
	rootKeywords   = []string{"what is", "definition", "overview", "introduction"}
	uniqueKeywords = []string{"unique", "feature", "advantage", "vs", "comparison"}
	rareKeywords   = []string{"technical", "specification", "detailed", "advanced"}
)

// InferCategory classifies an ungraded section from its heading. Advisory
// only: used when no explicit category exists upstream.
func InferCategory(heading, centralEntity string) models.AttributeCategory {
	h := strings.ToLower(strings.TrimSpace(heading))
	if h == "" {
		return models.CategoryCommon
	}

	if centralEntity != "" && h == strings.ToLower(strings.TrimSpace(centralEntity)) {
		return models.CategoryRoot
	}
	for _, kw := range rootKeywords {
		if strings.Contains(h, kw) {
			return models.CategoryRoot
		}
	}
	for _, kw := range uniqueKeywords {
		if strings.Contains(h, kw) {
			return models.CategoryUnique
		}
	}
	for _, kw := range rareKeywords {
		if strings.Contains(h, kw) {
			return models.CategoryRare
		}
	}
	return models.CategoryCommon
}
