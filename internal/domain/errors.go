package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the engine,
// item banks and repositories to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Assessment state errors
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty level")
	ErrInvalidState      = errors.New("invalid assessment state")
	ErrEmptyQueue        = errors.New("assessment requires at least one subject")
	ErrAssessmentDone    = errors.New("assessment already complete")
)

// Answer errors
var (
	ErrAnswerMissing    = errors.New("last answer missing for submitted item")
	ErrAnswerOutOfRange = errors.New("last answer index out of range")
)

// Item errors
var (
	ErrInvalidItem = errors.New("invalid assessment item")
)

// Item bank errors
var (
	ErrBankUnavailable = errors.New("item bank unavailable")
)
