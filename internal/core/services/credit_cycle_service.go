package services

import (
	"fmt"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
)

const (
	// cycleLookbackDays seeds the backward scan for "previous" occurrences.
	// Statement rules are typically monthly, so 40 days always covers at
	// least one prior occurrence.
	cycleLookbackDays = 40

	// maxCycleIterations bounds the forward scan through the lookback window.
	maxCycleIterations = 64
)

// creditCycleService implements the CreditCycleSvc interface.
type creditCycleService struct {
	BaseService
	evaluator portssvc.RuleEvaluator
}

// NewCreditCycleService creates a new credit cycle calculator.
func NewCreditCycleService(evaluator portssvc.RuleEvaluator) portssvc.CreditCycleSvc {
	return &creditCycleService{evaluator: evaluator}
}

var _ portssvc.CreditCycleSvc = (*creditCycleService)(nil)

// Compute derives the current statement window. The due date is the first
// due occurrence at or after now; the closing date is the closing occurrence
// that precedes or equals the due date it funds. Last values are the
// occurrences immediately before the next ones.
func (s *creditCycleService) Compute(method domain.PaymentMethod, now time.Time) (domain.CreditCycleState, error) {
	if !method.IsCredit() {
		return domain.CreditCycleState{}, nil
	}

	nextDue, err := s.evaluator.Next(method.CreditDueRule, now, true)
	if err != nil {
		return domain.CreditCycleState{}, fmt.Errorf("failed to evaluate due rule: %w", err)
	}
	if nextDue == nil {
		return domain.CreditCycleState{}, nil
	}

	nextClosing, err := s.occurrenceAtOrBefore(method.CreditClosingRule, *nextDue)
	if err != nil {
		return domain.CreditCycleState{}, fmt.Errorf("failed to evaluate closing rule: %w", err)
	}

	lastDue, err := s.occurrenceBefore(method.CreditDueRule, *nextDue)
	if err != nil {
		return domain.CreditCycleState{}, fmt.Errorf("failed to evaluate due rule lookback: %w", err)
	}

	var lastClosing *time.Time
	if nextClosing != nil {
		lastClosing, err = s.occurrenceBefore(method.CreditClosingRule, *nextClosing)
		if err != nil {
			return domain.CreditCycleState{}, fmt.Errorf("failed to evaluate closing rule lookback: %w", err)
		}
	}

	return domain.CreditCycleState{
		NextClosing: nextClosing,
		NextDue:     nextDue,
		LastClosing: lastClosing,
		LastDue:     lastDue,
	}, nil
}

// occurrenceAtOrBefore finds the last occurrence of rule at or before bound,
// scanning forward from the lookback seed.
func (s *creditCycleService) occurrenceAtOrBefore(rule string, bound time.Time) (*time.Time, error) {
	return s.scanBack(rule, bound, func(t time.Time) bool { return t.After(bound) })
}

// occurrenceBefore finds the last occurrence of rule strictly before bound.
func (s *creditCycleService) occurrenceBefore(rule string, bound time.Time) (*time.Time, error) {
	return s.scanBack(rule, bound, func(t time.Time) bool { return !t.Before(bound) })
}

func (s *creditCycleService) scanBack(rule string, bound time.Time, pastBound func(time.Time) bool) (*time.Time, error) {
	cursor := bound.AddDate(0, 0, -cycleLookbackDays)
	inclusive := true
	var found *time.Time
	for i := 0; i < maxCycleIterations; i++ {
		next, err := s.evaluator.Next(rule, cursor, inclusive)
		if err != nil {
			return nil, err
		}
		if next == nil || pastBound(*next) {
			break
		}
		found = next
		cursor = *next
		inclusive = false
	}
	return found, nil
}
