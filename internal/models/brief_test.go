package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"article-server/internal/models"
)

func TestFindSection(t *testing.T) {
	b := &models.ContentBrief{
		Outline: []models.BriefSection{
			{Key: "top", Heading: "Top level"},
			{
				Key: "parent", Heading: "Parent",
				Children: []models.BriefSection{
					{Key: "child", Heading: "Child"},
				},
			},
		},
	}

	t.Run("finds by key", func(t *testing.T) {
		node := b.FindSection("top", "")
		assert.NotNil(t, node)
		assert.Equal(t, "Top level", node.Heading)
	})

	t.Run("descends one child level", func(t *testing.T) {
		node := b.FindSection("child", "")
		assert.NotNil(t, node)
		assert.Equal(t, "Child", node.Heading)
	})

	t.Run("falls back to heading match", func(t *testing.T) {
		node := b.FindSection("renamed-key", "Parent")
		assert.NotNil(t, node)
		assert.Equal(t, "parent", node.Key)
	})

	t.Run("nil when nothing matches", func(t *testing.T) {
		assert.Nil(t, b.FindSection("missing", "Unknown heading"))
		assert.Nil(t, b.FindSection("missing", ""))
	})
}

func TestValidationResultHelpers(t *testing.T) {
	result := &models.ValidationResult{
		Passed: false,
		Violations: []models.Violation{
			{Severity: models.SeverityError, RuleID: "r1", Message: "first problem"},
			{Severity: models.SeverityWarning, RuleID: "r2", Message: "a warning"},
			{Severity: models.SeverityError, RuleID: "r3", Message: "second problem"},
			{Severity: models.SeverityInfo, RuleID: "r4", Message: "note"},
		},
	}

	assert.Len(t, result.Errors(), 2)
	assert.Len(t, result.Warnings(), 1)
	assert.Equal(t, "first problem; second problem", result.ErrorSummary())
}

func TestAttributeCategoryCanonical(t *testing.T) {
	assert.Equal(t, models.CategoryRoot, models.CategoryCoreDefinition.Canonical())
	assert.Equal(t, models.CategoryUnique, models.CategorySearchDemand.Canonical())
	assert.Equal(t, models.CategoryRare, models.CategoryCompetitiveExpansion.Canonical())
	assert.Equal(t, models.CategoryCommon, models.CategoryComposite.Canonical())
	assert.Equal(t, models.CategoryRoot, models.CategoryRoot.Canonical())
}
