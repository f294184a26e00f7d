package models

import "errors"

// ErrNotFound is the standard error when a record is missing from a repository.
var ErrNotFound = errors.New("not found")

// ErrNoProvidersConfigured is returned when neither the primary provider nor
// any fallback provider has credentials configured.
var ErrNoProvidersConfigured = errors.New("no AI providers configured")

// ErrPassAborted signals that a generation pass stopped cleanly because the
// caller requested cancellation. It is distinct from a failed pass: sections
// completed before the abort remain persisted and valid.
var ErrPassAborted = errors.New("generation pass aborted")

// ErrEmptyResponse is returned when a provider answered without any text.
var ErrEmptyResponse = errors.New("empty response from AI provider")
