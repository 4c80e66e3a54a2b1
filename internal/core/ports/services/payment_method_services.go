package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/finflow/finflow_backend/internal/dto"
)

// PaymentMethodReaderSvc defines read operations for payment methods.
type PaymentMethodReaderSvc interface {
	GetPaymentMethod(ctx context.Context, paymentMethodID, userID string) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
}

// PaymentMethodWriterSvc defines write operations for payment methods.
// Every write recomputes the cached credit cycle window wholesale.
type PaymentMethodWriterSvc interface {
	CreatePaymentMethod(ctx context.Context, req dto.CreatePaymentMethodRequest, userID string, now time.Time) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, paymentMethodID string, req dto.UpdatePaymentMethodRequest, userID string, now time.Time) (*domain.PaymentMethod, error)
}

// PaymentMethodSvcFacade combines all payment method service interfaces.
type PaymentMethodSvcFacade interface {
	PaymentMethodReaderSvc
	PaymentMethodWriterSvc
}
