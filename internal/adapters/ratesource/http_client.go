package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/finflow/finflow_backend/internal/core/ports/services"
)

const defaultFetchTimeout = 30 * time.Second

// ratePayloadDTO mirrors the provider's wire format. Timestamp is unix
// seconds; rates are quoted against the provider's base currency.
type ratePayloadDTO struct {
	Timestamp int64                      `json:"timestamp"`
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// HTTPRateSource fetches the latest exchange rates from an HTTP endpoint
// returning an openexchangerates-style JSON document.
type HTTPRateSource struct {
	url    string
	client *http.Client
}

var _ services.RateSource = (*HTTPRateSource)(nil)

// NewHTTPRateSource creates a rate source for the given endpoint URL. A nil
// client falls back to one with a sane timeout.
func NewHTTPRateSource(url string, client *http.Client) *HTTPRateSource {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPRateSource{url: url, client: client}
}

// FetchLatest retrieves and parses the provider's current rate document.
func (s *HTTPRateSource) FetchLatest(ctx context.Context) (*domain.RatePayload, error) {
	if s.url == "" {
		return nil, fmt.Errorf("rate source URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate source request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate source returned status %d: %s", resp.StatusCode, string(body))
	}

	var dto ratePayloadDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("failed to decode rate source response: %w", err)
	}
	if dto.Base == "" {
		return nil, fmt.Errorf("rate source response missing base currency")
	}
	if len(dto.Rates) == 0 {
		return nil, fmt.Errorf("rate source response contains no rates")
	}

	ts := time.Unix(dto.Timestamp, 0).UTC()
	if dto.Timestamp == 0 {
		ts = time.Now().UTC()
	}

	payload := &domain.RatePayload{
		Timestamp:    ts,
		BaseCurrency: strings.ToUpper(dto.Base),
		Rates:        make(map[string]decimal.Decimal, len(dto.Rates)),
	}
	for code, rate := range dto.Rates {
		payload.Rates[strings.ToUpper(code)] = rate
	}
	return payload, nil
}
