package pipeline

import (
	"article-server/internal/models"
)

// lengthPreset maps an article preset to its default sizing.
type lengthPreset struct {
	DefaultSections int
	MinWords        int
	MaxWords        int
}

var presets = map[string]lengthPreset{
	"short":         {DefaultSections: 5, MinWords: 150, MaxWords: 250},
	"standard":      {DefaultSections: 8, MinWords: 250, MaxWords: 400},
	"comprehensive": {DefaultSections: 12, MinWords: 350, MaxWords: 550},
}

const defaultPreset = "standard"

// Complexity thresholds for the brief heuristic.
const (
	complexOutlineSections = 5
	complexPlannedImages   = 2
	complexSERPWords       = 1500
)

func presetFor(name string) lengthPreset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets[defaultPreset]
}

// resolveSectionCount picks the effective maximum section count by priority:
// explicit override, topic-type preference, brief-complexity heuristic,
// preset default. The heuristic proposal is capped at 150% of the preset
// default to prevent unbounded bloat.
func resolveSectionCount(contentBrief *models.ContentBrief, opts PassOptions) int {
	preset := presetFor(opts.Preset)

	if opts.MaxSectionsOverride > 0 {
		return opts.MaxSectionsOverride
	}

	if opts.RespectTopicType {
		if p, ok := presets[contentBrief.TopicType]; ok {
			return p.DefaultSections
		}
	}

	outlineCount := len(contentBrief.Outline)
	complex := outlineCount >= complexOutlineSections ||
		contentBrief.PlannedImages >= complexPlannedImages ||
		contentBrief.SERPTargetWords > complexSERPWords
	if complex && outlineCount > 0 {
		proposed := outlineCount + 2
		cap := preset.DefaultSections * 3 / 2
		if proposed > cap {
			proposed = cap
		}
		if proposed > 0 {
			return proposed
		}
	}

	return preset.DefaultSections
}

// resolveLengthGuidance derives the per-section target word range. A
// comprehensive brief with a SERP target distributes it across sections
// (±20%); otherwise the topic-type or preset mapping applies.
func resolveLengthGuidance(contentBrief *models.ContentBrief, opts PassOptions, sectionCount int) models.LengthGuidance {
	if contentBrief.TopicType == "comprehensive" && contentBrief.SERPTargetWords > 0 && sectionCount > 0 {
		perSection := contentBrief.SERPTargetWords / sectionCount
		return models.LengthGuidance{
			MinWords: perSection * 8 / 10,
			MaxWords: perSection * 12 / 10,
		}
	}

	name := opts.Preset
	if opts.RespectTopicType {
		if _, ok := presets[contentBrief.TopicType]; ok {
			name = contentBrief.TopicType
		}
	}
	p := presetFor(name)
	return models.LengthGuidance{MinWords: p.MinWords, MaxWords: p.MaxWords}
}
