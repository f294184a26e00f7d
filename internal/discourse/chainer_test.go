package discourse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"article-server/internal/discourse"
)

func TestExtractForNext_VerbObjectPatterns(t *testing.T) {
	t.Run("requires pattern", func(t *testing.T) {
		ctx := discourse.ExtractForNext("The Border Collie requires daily exercise.")

		assert.Equal(t, "daily exercise", ctx.LastObject)
		assert.Contains(t, ctx.SubjectHint, `"daily exercise"`)
	})

	t.Run("copula with article", func(t *testing.T) {
		ctx := discourse.ExtractForNext("A Border Collie is a working dog breed.")

		assert.Equal(t, "working dog breed", ctx.LastObject)
	})

	t.Run("produces pattern", func(t *testing.T) {
		ctx := discourse.ExtractForNext("Over a season the hive produces surplus honey.")

		assert.Equal(t, "surplus honey", ctx.LastObject)
	})
}

func TestExtractForNext_FallbackToTrailingTokens(t *testing.T) {
	ctx := discourse.ExtractForNext("The weather suddenly turned cold yesterday.")

	assert.Equal(t, "turned cold yesterday", ctx.LastObject)
}

func TestExtractForNext_ShortSentenceYieldsNoObject(t *testing.T) {
	ctx := discourse.ExtractForNext("Hello world.")

	assert.Empty(t, ctx.LastObject)
	assert.Empty(t, ctx.SubjectHint)
	assert.Equal(t, "Hello world", ctx.LastSentence)
}

func TestExtractForNext_UsesLastParagraphAndSentence(t *testing.T) {
	text := "First paragraph talks about history.\n\n" +
		"The final paragraph covers training. Training requires consistent routines."

	ctx := discourse.ExtractForNext(text)

	assert.Equal(t, "The final paragraph covers training. Training requires consistent routines.", ctx.PreviousParagraph)
	assert.Equal(t, "Training requires consistent routines", ctx.LastSentence)
	assert.Equal(t, "consistent routines", ctx.LastObject)
}

func TestExtractForNext_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		ctx := discourse.ExtractForNext(input)

		assert.Empty(t, ctx.PreviousParagraph)
		assert.Empty(t, ctx.LastSentence)
		assert.Empty(t, ctx.LastObject)
		assert.Empty(t, ctx.SubjectHint)
	}
}

func TestBuildContext(t *testing.T) {
	t.Run("nil for the first section", func(t *testing.T) {
		assert.Nil(t, discourse.BuildContext(""))
		assert.Nil(t, discourse.BuildContext("  \n "))
	})

	t.Run("non-nil once prior text exists", func(t *testing.T) {
		ctx := discourse.BuildContext("The breed needs mental stimulation.")

		assert.NotNil(t, ctx)
		assert.Equal(t, "mental stimulation", ctx.LastObject)
	})
}
