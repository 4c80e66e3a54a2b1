package services

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// CreditCycleSvc derives the current closing/due statement window of a
// credit payment method from its two recurrence rules.
type CreditCycleSvc interface {
	// Compute returns the zero state (all nil) for non-credit methods or
	// when either rule is absent. An error only occurs for rules that were
	// somehow stored unparseable, which write-time validation prevents.
	Compute(method domain.PaymentMethod, now time.Time) (domain.CreditCycleState, error)
}
