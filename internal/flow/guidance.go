// Package flow computes positional and transition metadata for a section so
// the generated text reads as one continuous article instead of isolated
// blocks.
package flow

import (
	"fmt"
	"regexp"
	"strings"

	"article-server/internal/models"
)

// Fixed fallback openers per transition pattern. Opening and concluding
// sections get no canned opener.
var patternOpeners = map[models.TransitionPattern]string{
	models.PatternDeepening: "Building on this foundation...",
	models.PatternParallel:  "Another important aspect...",
	models.PatternBridging:  "Having covered the fundamentals...",
}

var introKeywords = []string{
	"introduction", "intro", "what is", "overview",
	// Dutch
	"inleiding", "introductie", "wat is",
}

var conclusionKeywords = []string{
	"conclusion", "summary", "final thoughts", "takeaway",
	// Dutch
	"conclusie", "samenvatting", "tot slot", "slotwoord",
}

var firstSentenceSplit = regexp.MustCompile(`(?s)^(.*?[.!?])(?:\s|$)`)

// BuildGuidance derives the flow guidance for section within orderedSections.
// Pure function: no side effects, safe to recompute.
func BuildGuidance(section models.SectionDefinition, orderedSections []models.SectionDefinition, brief *models.ContentBrief, business models.BusinessInfo) models.SectionFlowGuidance {
	index := indexOf(section, orderedSections)
	total := len(orderedSections)

	g := models.SectionFlowGuidance{
		Index:         index,
		Total:         total,
		IsFirst:       index == 0,
		IsLast:        total > 0 && index == total-1,
		Zone:          models.ZoneMain,
		CentralEntity: brief.CentralEntity,
		ArticleTitle:  brief.Title,
	}

	if index > 0 {
		g.PreviousHeading = orderedSections[index-1].Heading
	}
	if index >= 0 && index < total-1 {
		g.NextHeading = orderedSections[index+1].Heading
	}

	node := brief.FindSection(section.Key, section.Heading)
	if node != nil {
		if node.Zone != "" {
			g.Zone = node.Zone
		}
		g.Category = node.Category.Canonical()
	}

	prevZone := previousZone(index, orderedSections, brief)
	g.ZoneTransition = prevZone != "" && g.Zone != "" && prevZone != g.Zone

	g.IsIntro = isIntro(section)
	g.IsConclusion = isConclusion(section)
	g.Pattern = transitionPattern(g)
	g.SuggestedOpener, g.BridgeText = opener(g, section, brief)
	g.Progression = progression(index, total, orderedSections, brief)

	return g
}

func indexOf(section models.SectionDefinition, ordered []models.SectionDefinition) int {
	for i, s := range ordered {
		if s.Key == section.Key {
			return i
		}
	}
	return -1
}

func previousZone(index int, ordered []models.SectionDefinition, brief *models.ContentBrief) models.ContentZone {
	if index <= 0 {
		return ""
	}
	prev := ordered[index-1]
	node := brief.FindSection(prev.Key, prev.Heading)
	if node == nil {
		return models.ZoneMain
	}
	if node.Zone == "" {
		return models.ZoneMain
	}
	return node.Zone
}

// transitionPattern decides the pattern by priority: position first, then zone
// changes, then attribute depth.
func transitionPattern(g models.SectionFlowGuidance) models.TransitionPattern {
	switch {
	case g.Index == 0:
		return models.PatternOpening
	case g.IsLast:
		return models.PatternConcluding
	case g.ZoneTransition:
		return models.PatternBridging
	case g.Category == models.CategoryRare || g.Category == models.CategoryUnique:
		return models.PatternDeepening
	default:
		return models.PatternParallel
	}
}

// opener picks the suggested opener for a section. A bridge payload wins on
// zone transitions; otherwise anchor phrases are cycled; otherwise the fixed
// per-pattern table applies. Bridge full text is surfaced only on transitions.
func opener(g models.SectionFlowGuidance, section models.SectionDefinition, brief *models.ContentBrief) (string, string) {
	if g.ZoneTransition {
		if bridge, ok := brief.Bridges[section.Key]; ok && strings.TrimSpace(bridge) != "" {
			return firstSentence(bridge), bridge
		}
	}
	if len(brief.AnchorPhrases) > 0 && g.Pattern != models.PatternOpening && g.Pattern != models.PatternConcluding {
		return brief.AnchorPhrases[g.Index%len(brief.AnchorPhrases)], ""
	}
	return patternOpeners[g.Pattern], ""
}

func firstSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := firstSentenceSplit.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

func isIntro(section models.SectionDefinition) bool {
	if section.Order == 0 {
		return true
	}
	return matchesKeywords(section, introKeywords)
}

func isConclusion(section models.SectionDefinition) bool {
	// Order-based sentinel used by brief builders for trailing sections.
	if section.Order >= 900 {
		return true
	}
	return matchesKeywords(section, conclusionKeywords)
}

func matchesKeywords(section models.SectionDefinition, keywords []string) bool {
	heading := strings.ToLower(section.Heading)
	key := strings.ToLower(section.Key)
	for _, kw := range keywords {
		if strings.Contains(heading, kw) || strings.Contains(key, strings.ReplaceAll(kw, " ", "-")) {
			return true
		}
	}
	return false
}

// progression summarizes where the section sits in the article's narrative
// arc, based on how many foundational and differentiating sections precede it.
func progression(index, total int, ordered []models.SectionDefinition, brief *models.ContentBrief) string {
	switch {
	case index == 0:
		return "This section opens the article and lays the foundation for everything that follows."
	case total > 0 && index == total-1:
		return "This section closes the article and synthesizes the preceding sections."
	}

	var rootCount, uniqueCount, rareCount int
	for _, s := range ordered[:index] {
		node := brief.FindSection(s.Key, s.Heading)
		if node == nil {
			continue
		}
		switch node.Category.Canonical() {
		case models.CategoryRoot:
			rootCount++
		case models.CategoryUnique:
			uniqueCount++
		case models.CategoryRare:
			rareCount++
		}
	}

	switch {
	case rootCount < 2:
		return fmt.Sprintf("The article is still establishing foundations (section %d of %d); keep definitions central.", index+1, total)
	case uniqueCount < 2 && rareCount < 2:
		return fmt.Sprintf("The article is differentiating the subject (section %d of %d); emphasize what sets it apart.", index+1, total)
	default:
		return fmt.Sprintf("The article is deep into specifics (section %d of %d); assume the fundamentals are known.", index+1, total)
	}
}
