package repositories

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// PaymentMethodReader defines read operations for payment methods.
type PaymentMethodReader interface {
	FindPaymentMethodByID(ctx context.Context, paymentMethodID string) (*domain.PaymentMethod, error)
	ListPaymentMethodsByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
}

// PaymentMethodWriter defines write operations for payment methods.
type PaymentMethodWriter interface {
	SavePaymentMethod(ctx context.Context, method domain.PaymentMethod) error

	// UpdatePaymentMethod replaces the whole row, including the cached
	// credit cycle window, which is always recomputed wholesale.
	UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) error
}

// PaymentMethodRepositoryFacade combines all payment method repository interfaces.
type PaymentMethodRepositoryFacade interface {
	PaymentMethodReader
	PaymentMethodWriter
}
