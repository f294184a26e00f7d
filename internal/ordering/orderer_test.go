package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"article-server/internal/models"
	"article-server/internal/ordering"
)

func TestOrderSections_RanksByCategory(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "care", Heading: "Daily care", Category: models.CategoryCommon},
		{Key: "temperament", Heading: "Temperament", Category: models.CategoryUnique},
		{Key: "what-is", Heading: "What is a Border Collie", Category: models.CategoryRoot},
		{Key: "genetics", Heading: "Genetics", Category: models.CategoryRare},
	}

	ordered := ordering.OrderSections(sections)

	keys := make([]string, 0, len(ordered))
	for _, s := range ordered {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"what-is", "temperament", "genetics", "care"}, keys)
}

func TestOrderSections_QueryPriorityBreaksTies(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "low", Category: models.CategoryUnique, QueryPriority: 0.2},
		{Key: "high", Category: models.CategoryUnique, QueryPriority: 0.9},
		{Key: "mid", Category: models.CategoryUnique, QueryPriority: 0.5},
	}

	ordered := ordering.OrderSections(sections)

	assert.Equal(t, "high", ordered[0].Key)
	assert.Equal(t, "mid", ordered[1].Key)
	assert.Equal(t, "low", ordered[2].Key)
}

func TestOrderSections_LegacyAliasesShareRank(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "composite", Category: models.CategoryComposite},
		{Key: "core", Category: models.CategoryCoreDefinition},
		{Key: "demand", Category: models.CategorySearchDemand},
		{Key: "competitive", Category: models.CategoryCompetitiveExpansion},
	}

	ordered := ordering.OrderSections(sections)

	assert.Equal(t, "core", ordered[0].Key)
	assert.Equal(t, "demand", ordered[1].Key)
	assert.Equal(t, "competitive", ordered[2].Key)
	assert.Equal(t, "composite", ordered[3].Key)
}

func TestOrderSections_UnclassifiedSortsLast(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "mystery", Category: "SOMETHING_NEW"},
		{Key: "common", Category: models.CategoryCommon},
	}

	ordered := ordering.OrderSections(sections)

	assert.Equal(t, "common", ordered[0].Key)
	assert.Equal(t, "mystery", ordered[1].Key)
}

func TestOrderSections_Deterministic(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "a", Category: models.CategoryCommon, QueryPriority: 0.5},
		{Key: "b", Category: models.CategoryCommon, QueryPriority: 0.5},
		{Key: "c", Category: models.CategoryRoot},
		{Key: "d", Category: models.CategoryCommon, QueryPriority: 0.5},
	}

	once := ordering.OrderSections(sections)
	twice := ordering.OrderSections(once)

	// Equal keys keep their input order, so re-ordering is a no-op.
	assert.Equal(t, once, twice)
	// Ties preserve the original relative order.
	assert.Equal(t, "a", once[1].Key)
	assert.Equal(t, "b", once[2].Key)
	assert.Equal(t, "d", once[3].Key)
}

func TestOrderSections_DoesNotMutateInput(t *testing.T) {
	sections := []models.BriefSection{
		{Key: "last", Category: models.CategoryCommon},
		{Key: "first", Category: models.CategoryRoot},
	}

	_ = ordering.OrderSections(sections)

	assert.Equal(t, "last", sections[0].Key)
	assert.Equal(t, "first", sections[1].Key)
}

func TestInferCategory(t *testing.T) {
	t.Run("definition headings are root", func(t *testing.T) {
		assert.Equal(t, models.CategoryRoot, ordering.InferCategory("What is dropshipping?", ""))
		assert.Equal(t, models.CategoryRoot, ordering.InferCategory("Overview of the breed", ""))
	})

	t.Run("heading equal to central entity is root", func(t *testing.T) {
		assert.Equal(t, models.CategoryRoot, ordering.InferCategory("Border Collie", "border collie"))
	})

	t.Run("differentiators are unique", func(t *testing.T) {
		assert.Equal(t, models.CategoryUnique, ordering.InferCategory("Unique features of the breed", ""))
		assert.Equal(t, models.CategoryUnique, ordering.InferCategory("Border Collie vs Australian Shepherd", ""))
	})

	t.Run("technical depth is rare", func(t *testing.T) {
		assert.Equal(t, models.CategoryRare, ordering.InferCategory("Technical specifications", ""))
	})

	t.Run("everything else is common", func(t *testing.T) {
		assert.Equal(t, models.CategoryCommon, ordering.InferCategory("Feeding schedule", ""))
		assert.Equal(t, models.CategoryCommon, ordering.InferCategory("", "entity"))
	})
}
