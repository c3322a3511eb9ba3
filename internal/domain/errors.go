package domain

import "errors"

// Terminal pipeline errors. Everything before the persist boundary aborts
// the run with one of these; everything after is recorded in the RunReport
// and never propagated.
var (
	// ErrGenerationFailed covers generic upstream failures of the
	// text-generation capability.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrRateLimited maps an upstream HTTP 429; the next scheduled run
	// retries naturally.
	ErrRateLimited = errors.New("generation rate limited")

	// ErrQuotaExhausted maps an upstream HTTP 402; fatal until billing
	// is resolved.
	ErrQuotaExhausted = errors.New("generation quota exhausted")

	// ErrParseFailed means the model response was not valid JSON after
	// fence stripping.
	ErrParseFailed = errors.New("generation response parse failed")

	// ErrValidationFailed means the parsed draft is missing a required
	// field (title, excerpt or body).
	ErrValidationFailed = errors.New("generated article validation failed")

	// ErrPersistenceFailed distinguishes storage failures from generation
	// failures so operators can tell the two apart.
	ErrPersistenceFailed = errors.New("article persistence failed")
)
