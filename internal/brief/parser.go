// Package brief turns a content brief's outline tree into the flat, immutable
// list of section definitions a generation job works through.
package brief

import (
	"fmt"
	"regexp"
	"strings"

	"article-server/internal/models"
)

// ParseOptions bound what gets extracted from the outline.
type ParseOptions struct {
	MaxSections int
	Language    string
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// ParseSections flattens the brief's outline into section definitions,
// walking nested subsections by explicit recursion. Nodes without a heading
// are marked for AI heading generation. The result is capped at MaxSections
// when set.
func ParseSections(b *models.ContentBrief, opts ParseOptions) []models.SectionDefinition {
	var sections []models.SectionDefinition
	seen := make(map[string]bool)

	var walk func(nodes []models.BriefSection, level int)
	walk = func(nodes []models.BriefSection, level int) {
		for _, node := range nodes {
			def := models.SectionDefinition{
				Key:     node.Key,
				Heading: node.Heading,
				Level:   effectiveLevel(node, level),
				Order:   node.Order,
			}
			if def.Heading == "" {
				def.GenerateHeading = true
			}
			if def.Key == "" {
				def.Key = deriveKey(def.Heading, len(sections))
			}
			if seen[def.Key] {
				def.Key = fmt.Sprintf("%s-%d", def.Key, len(sections))
			}
			seen[def.Key] = true

			sections = append(sections, def)
			walk(node.Children, level+1)
		}
	}
	walk(b.Outline, 1)

	if opts.MaxSections > 0 && len(sections) > opts.MaxSections {
		sections = sections[:opts.MaxSections]
	}
	return sections
}

func effectiveLevel(node models.BriefSection, fallback int) int {
	if node.Level > 0 {
		return node.Level
	}
	return fallback
}

func deriveKey(heading string, position int) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(heading), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fmt.Sprintf("section-%d", position+1)
	}
	return slug
}
