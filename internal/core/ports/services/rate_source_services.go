package services

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// RateSource abstracts the external exchange-rate provider. The core never
// performs the fetch itself; it only consumes the parsed payload, anchored
// to the configured base currency.
type RateSource interface {
	FetchLatest(ctx context.Context) (*domain.RatePayload, error)
}
