package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"article-server/internal/ai"
	"article-server/internal/models"
)

const (
	defaultGateMaxRetries = 3
	defaultRetryBackoff   = 1 * time.Second

	checkpointMarkerPrefix  = "<!-- VALIDATION_CHECKPOINT: "
	softFailureMarkerPrefix = "<!-- VALIDATION_SOFT_FAIL: "
	markerSuffix            = " -->\n\n"

	missingConceptRuleID = "missing_required_concept"
)

// sectionWriterSystemPrompt is the fixed instruction set for section
// generation. The section context arrives as JSON in the user message.
const sectionWriterSystemPrompt = `You are an expert long-form content writer. Write ONE article section based on the JSON context in the user message. Follow the flow guidance, the discourse hint and the length guidance exactly. Respond with the section text only, in the requested language. When headingToGenerate is true, start with a markdown heading line (## or ###).`

// Caller abstracts the provider router for the gate.
type Caller interface {
	CallWithFallback(ctx context.Context, settings ai.Settings, prompt ai.Prompt, params ai.GenerationParams) (string, ai.Usage, error)
}

// ValidationFailedError is the terminal rejection raised in hard mode after
// retries are exhausted. The caller must not persist the section.
type ValidationFailedError struct {
	SectionHeading string
	Attempts       int
	Summary        string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("section %q failed validation after %d attempts: %s", e.SectionHeading, e.Attempts, e.Summary)
}

// CheckpointMarker builds the machine-detectable marker embedded when
// checkpoint mode accepts failing text for human review.
func CheckpointMarker(summary string) string {
	return checkpointMarkerPrefix + summary + markerSuffix
}

// SoftFailureMarker builds the marker embedded when soft mode accepts failing
// text.
func SoftFailureMarker(summary string) string {
	return softFailureMarkerPrefix + summary + markerSuffix
}

// IsFlagged reports whether text carries a checkpoint or soft-failure marker.
func IsFlagged(text string) bool {
	return strings.HasPrefix(text, checkpointMarkerPrefix) || strings.HasPrefix(text, softFailureMarkerPrefix)
}

// GenerateRequest is one gated section generation.
type GenerateRequest struct {
	Section    models.SectionDefinition
	Brief      *models.ContentBrief
	Business   models.BusinessInfo
	Siblings   []models.SectionDefinition
	Discourse  *models.DiscourseContext
	Flow       models.SectionFlowGuidance
	Length     models.LengthGuidance
	Mode       models.ValidationMode
	Settings   ai.Settings
	MaxRetries int
	PassNumber int
}

// generationContext is the JSON payload sent as the user message.
type generationContext struct {
	Section           models.SectionDefinition   `json:"section"`
	HeadingToGenerate bool                       `json:"headingToGenerate"`
	ArticleTitle      string                     `json:"articleTitle"`
	CentralEntity     string                     `json:"centralEntity"`
	Language          string                     `json:"language"`
	Business          models.BusinessInfo        `json:"business"`
	Siblings          []string                   `json:"siblingHeadings,omitempty"`
	Discourse         *models.DiscourseContext   `json:"discourse,omitempty"`
	Flow              models.SectionFlowGuidance `json:"flow"`
	Length            models.LengthGuidance      `json:"length"`
	Sensitive         bool                       `json:"sensitiveTopic"`
	SensitiveCategory string                     `json:"sensitiveCategory,omitempty"`
	FixInstructions   string                     `json:"fixInstructions,omitempty"`
}

// Gate wraps one section generation in the bounded
// generate-validate-repair retry loop.
type Gate struct {
	caller    Caller
	validator Validator
	logger    *zap.Logger
	backoff   time.Duration
}

// NewGate creates a validation gate. backoff <= 0 takes the 1s default.
func NewGate(caller Caller, validator Validator, logger *zap.Logger, backoff time.Duration) *Gate {
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &Gate{
		caller:    caller,
		validator: validator,
		logger:    logger.Named("ValidationGate"),
		backoff:   backoff,
	}
}

// attemptOutcome is the explicit per-attempt result consumed by the retry
// loop: exactly one of the fields is set.
type attemptOutcome struct {
	text         string
	result       *models.ValidationResult
	transportErr error
}

// GenerateWithRetry performs up to MaxRetries gated generation attempts.
// In hard mode it fails with ValidationFailedError on exhaustion; in
// checkpoint and soft mode it accepts the last text with an embedded marker.
// A transport error on the final attempt propagates unchanged.
func (g *Gate) GenerateWithRetry(ctx context.Context, req GenerateRequest) (string, error) {
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultGateMaxRetries
	}

	log := g.logger.With(
		zap.String("section_key", req.Section.Key),
		zap.String("heading", req.Section.Heading),
		zap.String("mode", string(req.Mode)))

	sensitive, sensitiveCategory := DetectSensitiveTopic(
		req.Brief.Title + " " + req.Section.Heading + " " + req.Business.Industry)

	vctx := Context{
		SectionKey:        req.Section.Key,
		SectionHeading:    req.Section.Heading,
		ArticleTitle:      req.Brief.Title,
		Language:          req.Brief.Language,
		Sensitive:         sensitive,
		SensitiveCategory: sensitiveCategory,
		MinWords:          req.Length.MinWords,
		MaxWords:          req.Length.MaxWords,
	}

	var (
		fixInstructions string
		lastText        string
		lastResult      *models.ValidationResult
	)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		outcome := g.attempt(ctx, req, sensitive, sensitiveCategory, fixInstructions, vctx)

		if outcome.transportErr != nil {
			log.Warn("Generation attempt hit transport error",
				zap.Int("attempt", attempt),
				zap.Error(outcome.transportErr))
			if attempt == maxRetries {
				// Job-fatal, distinct from a validation rejection.
				return "", outcome.transportErr
			}
			if err := g.sleep(ctx, attempt); err != nil {
				return "", err
			}
			continue
		}

		for _, w := range outcome.result.Warnings() {
			log.Info("Validation warning recorded",
				zap.String("rule", w.RuleID),
				zap.String("message", w.Message))
		}

		if outcome.result.Passed {
			log.Debug("Section accepted", zap.Int("attempt", attempt))
			return outcome.text, nil
		}

		lastText = outcome.text
		lastResult = outcome.result
		log.Warn("Section failed validation",
			zap.Int("attempt", attempt),
			zap.Int("error_count", len(outcome.result.Errors())),
			zap.String("summary", outcome.result.ErrorSummary()))

		if attempt < maxRetries {
			fixInstructions = buildFixInstructions(outcome.result)
			if err := g.sleep(ctx, attempt); err != nil {
				return "", err
			}
		}
	}

	summary := lastResult.ErrorSummary()
	switch req.Mode {
	case models.ValidationModeCheckpoint:
		log.Warn("Accepting section with checkpoint marker after exhausted retries")
		return CheckpointMarker(summary) + lastText, nil
	case models.ValidationModeSoft:
		log.Warn("Accepting section with soft-failure marker after exhausted retries")
		return SoftFailureMarker(summary) + lastText, nil
	default:
		return "", &ValidationFailedError{
			SectionHeading: req.Section.Heading,
			Attempts:       maxRetries,
			Summary:        summary,
		}
	}
}

// attempt runs a single generate+validate cycle and returns the explicit
// outcome.
func (g *Gate) attempt(ctx context.Context, req GenerateRequest, sensitive bool, sensitiveCategory, fixInstructions string, vctx Context) attemptOutcome {
	prompt, err := g.buildPrompt(req, sensitive, sensitiveCategory, fixInstructions)
	if err != nil {
		return attemptOutcome{transportErr: err}
	}

	text, _, err := g.caller.CallWithFallback(ctx, req.Settings, prompt, ai.GenerationParams{})
	if err != nil {
		return attemptOutcome{transportErr: err}
	}
	if strings.TrimSpace(text) == "" {
		return attemptOutcome{transportErr: fmt.Errorf("section %q: %w", req.Section.Key, models.ErrEmptyResponse)}
	}

	result, err := g.validator.Validate(ctx, text, vctx, req.PassNumber)
	if err != nil {
		return attemptOutcome{transportErr: fmt.Errorf("validator call failed for section %q: %w", req.Section.Key, err)}
	}
	return attemptOutcome{text: text, result: result}
}

func (g *Gate) buildPrompt(req GenerateRequest, sensitive bool, sensitiveCategory, fixInstructions string) (ai.Prompt, error) {
	siblings := make([]string, 0, len(req.Siblings))
	for _, s := range req.Siblings {
		if s.Key != req.Section.Key {
			siblings = append(siblings, s.Heading)
		}
	}

	genCtx := generationContext{
		Section:           req.Section,
		HeadingToGenerate: req.Section.GenerateHeading,
		ArticleTitle:      req.Brief.Title,
		CentralEntity:     req.Brief.CentralEntity,
		Language:          req.Brief.Language,
		Business:          req.Business,
		Siblings:          siblings,
		Discourse:         req.Discourse,
		Flow:              req.Flow,
		Length:            req.Length,
		Sensitive:         sensitive,
		SensitiveCategory: sensitiveCategory,
		FixInstructions:   fixInstructions,
	}

	userJSON, err := json.MarshalIndent(genCtx, "", "  ")
	if err != nil {
		return ai.Prompt{}, fmt.Errorf("failed to marshal generation context: %w", err)
	}
	return ai.Prompt{System: sectionWriterSystemPrompt, User: string(userJSON)}, nil
}

// buildFixInstructions consolidates the validator's feedback for the next
// attempt. Missing-concept violations get an explicit imperative naming the
// concepts, which repairs far more reliably than the generic instruction.
func buildFixInstructions(result *models.ValidationResult) string {
	instructions := result.FixInstruction

	var concepts []string
	for _, v := range result.Errors() {
		if v.RuleID != missingConceptRuleID && !strings.Contains(strings.ToLower(v.Message), "missing required concept") {
			continue
		}
		concept := v.Suggestion
		if concept == "" {
			concept = v.Message
		}
		concepts = append(concepts, concept)
	}

	if len(concepts) > 0 {
		imperative := "You MUST explicitly cover the following required concepts: " + strings.Join(concepts, ", ") + "."
		if instructions != "" {
			instructions += "\n" + imperative
		} else {
			instructions = imperative
		}
	}
	return instructions
}

// sleep waits the exponential backoff delay, doubling per attempt.
func (g *Gate) sleep(ctx context.Context, attempt int) error {
	delay := g.backoff * (1 << (attempt - 1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
