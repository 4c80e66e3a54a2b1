package services

import "time"

// RuleEvaluator abstracts the external recurrence-rule capability. The
// engine never interprets rule grammar itself; any compliant evaluator can
// be substituted behind this interface.
type RuleEvaluator interface {
	// Next returns the first occurrence of rule after the reference instant,
	// or at/after it when inclusive is true. Returns nil when the rule
	// yields no further occurrences (e.g. COUNT exhausted). Fails with
	// apperrors.ErrInvalidRule when the rule cannot be parsed.
	Next(rule string, after time.Time, inclusive bool) (*time.Time, error)

	// Validate reports whether the rule parses. Used at write time so that
	// an unparseable rule never reaches the scheduler.
	Validate(rule string) error
}
