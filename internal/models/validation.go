package models

import "strings"

// Severity grades a validation violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationMode controls what happens when a section still fails validation
// after the last retry.
type ValidationMode string

const (
	// ValidationModeHard fails the section (and the pass) on exhaustion.
	ValidationModeHard ValidationMode = "hard"
	// ValidationModeCheckpoint accepts the text with an embedded checkpoint
	// marker for human review.
	ValidationModeCheckpoint ValidationMode = "checkpoint"
	// ValidationModeSoft accepts the text with an embedded soft-failure marker.
	ValidationModeSoft ValidationMode = "soft"
)

// Violation is a single rule violation reported by the quality validator.
type Violation struct {
	Severity   Severity `json:"severity"`
	RuleID     string   `json:"ruleId"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of validating one generation attempt.
type ValidationResult struct {
	Passed         bool        `json:"passed"`
	Violations     []Violation `json:"violations,omitempty"`
	FixInstruction string      `json:"fixInstruction,omitempty"`
}

// Errors returns the error-severity violations, the only ones that block
// acceptance.
func (r *ValidationResult) Errors() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// Warnings returns the warning-severity violations. Recorded for
// observability, never blocking.
func (r *ValidationResult) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			out = append(out, v)
		}
	}
	return out
}

// ErrorSummary joins the error-severity violation messages for diagnostics.
func (r *ValidationResult) ErrorSummary() string {
	errs := r.Errors()
	msgs := make([]string, 0, len(errs))
	for _, v := range errs {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}
