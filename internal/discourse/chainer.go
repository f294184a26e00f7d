// Package discourse extracts a continuation hint from previously generated
// text so the next section can open by referencing the grammatical object of
// the previous section's final sentence.
package discourse

import (
	"fmt"
	"regexp"
	"strings"

	"article-server/internal/models"
)

// Verb patterns tried in order; the first capture group is the object.
var objectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:requires|needs|provides|offers|includes|contains|has|have)\s+(.+?)[.!?]?\s*$`),
	regexp.MustCompile(`(?i)\b(?:is|are|was|were)\s+(?:a|an|the)?\s*(.+?)[.!?]?\s*$`),
	regexp.MustCompile(`(?i)\b(?:uses|creates|generates|produces)\s+(.+?)[.!?]?\s*$`),
}

var sentenceSplit = regexp.MustCompile(`[.!?](?:\s+|$)`)

const subjectHintTemplate = "Open this section by connecting to \"%s\" from the previous section before introducing the new topic."

// ExtractForNext derives a DiscourseContext from the final paragraph of text.
// Empty or whitespace-only input yields an all-empty context, never an error.
func ExtractForNext(text string) models.DiscourseContext {
	ctx := models.DiscourseContext{}

	paragraph := lastParagraph(text)
	if paragraph == "" {
		return ctx
	}
	ctx.PreviousParagraph = paragraph

	sentence := lastSentence(paragraph)
	if sentence == "" {
		return ctx
	}
	ctx.LastSentence = sentence

	ctx.LastObject = extractObject(sentence)
	if ctx.LastObject != "" {
		ctx.SubjectHint = fmt.Sprintf(subjectHintTemplate, ctx.LastObject)
	}
	return ctx
}

// BuildContext returns the chaining context for the section following
// priorText, or nil when there is no prior text (the first section).
func BuildContext(priorText string) *models.DiscourseContext {
	if strings.TrimSpace(priorText) == "" {
		return nil
	}
	ctx := ExtractForNext(priorText)
	return &ctx
}

func lastParagraph(text string) string {
	paragraphs := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	for i := len(paragraphs) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(paragraphs[i]); p != "" {
			return p
		}
	}
	return ""
}

func lastSentence(paragraph string) string {
	sentences := sentenceSplit.Split(paragraph, -1)
	for i := len(sentences) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(sentences[i]); s != "" {
			return s
		}
	}
	return ""
}

// extractObject pulls the grammatical object off the end of a sentence,
// falling back to the last three tokens when no verb pattern matches.
func extractObject(sentence string) string {
	for _, re := range objectPatterns {
		if m := re.FindStringSubmatch(sentence); m != nil {
			if obj := strings.TrimSpace(m[1]); obj != "" {
				return obj
			}
		}
	}

	tokens := strings.Fields(sentence)
	if len(tokens) < 3 {
		return ""
	}
	tail := strings.Join(tokens[len(tokens)-3:], " ")
	return strings.TrimRight(tail, ".!?")
}
