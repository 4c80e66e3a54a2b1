package domain

import "time"

// PaymentMethodKind classifies how a payment method settles.
type PaymentMethodKind string

const (
	PaymentMethodCash   PaymentMethodKind = "CASH"
	PaymentMethodDebit  PaymentMethodKind = "DEBIT"
	PaymentMethodCredit PaymentMethodKind = "CREDIT"
)

// CreditCycleState caches the current statement window of a credit payment
// method. Recomputed wholesale on every create/update, never partially
// mutated. All fields are nil for non-credit methods or when either rule is
// absent.
type CreditCycleState struct {
	NextClosing *time.Time `json:"nextClosing"`
	NextDue     *time.Time `json:"nextDue"`
	LastClosing *time.Time `json:"lastClosing"`
	LastDue     *time.Time `json:"lastDue"`
}

// PaymentMethod is how an expense is paid. Credit methods carry two
// recurrence rules describing their statement cycle plus the cached window
// derived from them.
type PaymentMethod struct {
	PaymentMethodID   string            `json:"paymentMethodID"`
	UserID            string            `json:"userID"`
	Name              string            `json:"name"`
	Kind              PaymentMethodKind `json:"kind"`
	AccountID         string            `json:"accountID"` // settlement account
	CreditClosingRule string            `json:"creditClosingRule"`
	CreditDueRule     string            `json:"creditDueRule"`
	CreditCycleState
	IsActive bool `json:"isActive"`
	AuditFields
}

// IsCredit reports whether this method has a derivable statement cycle.
func (p PaymentMethod) IsCredit() bool {
	return p.Kind == PaymentMethodCredit && p.CreditClosingRule != "" && p.CreditDueRule != ""
}
