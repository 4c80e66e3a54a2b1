package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/teambition/rrule-go"
)

// ruleExpander is the common surface of rrule.RRule and rrule.Set.
type ruleExpander interface {
	After(dt time.Time, inc bool) time.Time
}

// rruleEvaluator implements the RuleEvaluator port on top of rrule-go.
// The engine treats the grammar as a black box; everything it needs is
// "next occurrence after an instant".
type rruleEvaluator struct{}

// NewRuleEvaluator creates the default RFC-5545 rule evaluator.
func NewRuleEvaluator() portssvc.RuleEvaluator {
	return &rruleEvaluator{}
}

var _ portssvc.RuleEvaluator = (*rruleEvaluator)(nil)

// parse accepts both iCalendar blocks ("DTSTART:...\nRRULE:FREQ=...") and
// bare option strings ("FREQ=DAILY;INTERVAL=1").
func (e *rruleEvaluator) parse(rule string) (ruleExpander, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, fmt.Errorf("%w: empty rule", apperrors.ErrInvalidRule)
	}
	if strings.Contains(rule, ":") {
		set, err := rrule.StrToRRuleSet(rule)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRule, err)
		}
		return set, nil
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRule, err)
	}
	return r, nil
}

// Next returns the first occurrence after (or at, when inclusive) the
// reference instant, or nil when the rule is exhausted.
func (e *rruleEvaluator) Next(rule string, after time.Time, inclusive bool) (*time.Time, error) {
	expander, err := e.parse(rule)
	if err != nil {
		return nil, err
	}
	next := expander.After(after, inclusive)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

// Validate reports whether the rule parses.
func (e *rruleEvaluator) Validate(rule string) error {
	_, err := e.parse(rule)
	return err
}
