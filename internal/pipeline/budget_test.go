package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"article-server/internal/models"
)

func outlineOf(n int) []models.BriefSection {
	outline := make([]models.BriefSection, 0, n)
	for i := 0; i < n; i++ {
		outline = append(outline, models.BriefSection{Key: string(rune('a' + i))})
	}
	return outline
}

func TestResolveSectionCount(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		b := &models.ContentBrief{TopicType: "comprehensive", Outline: outlineOf(10)}
		got := resolveSectionCount(b, PassOptions{MaxSectionsOverride: 4, RespectTopicType: true})
		assert.Equal(t, 4, got)
	})

	t.Run("topic type picks the preset", func(t *testing.T) {
		b := &models.ContentBrief{TopicType: "short", Outline: outlineOf(10)}
		got := resolveSectionCount(b, PassOptions{RespectTopicType: true})
		assert.Equal(t, 5, got)
	})

	t.Run("complex outline grows the count", func(t *testing.T) {
		b := &models.ContentBrief{Outline: outlineOf(9)}
		got := resolveSectionCount(b, PassOptions{Preset: "standard"})
		assert.Equal(t, 11, got)
	})

	t.Run("heuristic growth is capped at 150 percent of the preset", func(t *testing.T) {
		b := &models.ContentBrief{Outline: outlineOf(20)}
		got := resolveSectionCount(b, PassOptions{Preset: "standard"})
		assert.Equal(t, 12, got)
	})

	t.Run("simple brief takes the preset default", func(t *testing.T) {
		b := &models.ContentBrief{Outline: outlineOf(3)}
		got := resolveSectionCount(b, PassOptions{Preset: "standard"})
		assert.Equal(t, 8, got)
	})

	t.Run("unknown preset falls back to standard", func(t *testing.T) {
		b := &models.ContentBrief{Outline: outlineOf(3)}
		got := resolveSectionCount(b, PassOptions{Preset: "gigantic"})
		assert.Equal(t, 8, got)
	})
}

func TestResolveLengthGuidance(t *testing.T) {
	t.Run("comprehensive SERP target distributes across sections", func(t *testing.T) {
		b := &models.ContentBrief{TopicType: "comprehensive", SERPTargetWords: 4800}
		got := resolveLengthGuidance(b, PassOptions{Preset: "comprehensive"}, 12)
		assert.Equal(t, models.LengthGuidance{MinWords: 320, MaxWords: 480}, got)
	})

	t.Run("preset mapping otherwise", func(t *testing.T) {
		b := &models.ContentBrief{}
		got := resolveLengthGuidance(b, PassOptions{Preset: "short"}, 5)
		assert.Equal(t, models.LengthGuidance{MinWords: 150, MaxWords: 250}, got)
	})

	t.Run("topic type overrides the preset when respected", func(t *testing.T) {
		b := &models.ContentBrief{TopicType: "comprehensive"}
		got := resolveLengthGuidance(b, PassOptions{Preset: "short", RespectTopicType: true}, 5)
		assert.Equal(t, models.LengthGuidance{MinWords: 350, MaxWords: 550}, got)
	})
}
