package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// unassignedKey buckets transactions that carry no value for the queried
// dimension.
const unassignedKey = "UNASSIGNED"

// statisticsService implements the StatisticsSvcFacade interface. It is
// read-only and tolerates eventual consistency: a query may run before
// today's snapshot exists, which is the expected cause of today's data
// being temporarily excluded.
type statisticsService struct {
	BaseService
	txnRepo  portsrepo.TransactionReader
	rateRepo portsrepo.HistoricRateReader
	taxRepo  portsrepo.TaxReader
}

// NewStatisticsService creates a new statistics aggregator.
func NewStatisticsService(
	txnRepo portsrepo.TransactionReader,
	rateRepo portsrepo.HistoricRateReader,
	taxRepo portsrepo.TaxReader,
) portssvc.StatisticsSvcFacade {
	return &statisticsService{
		txnRepo:  txnRepo,
		rateRepo: rateRepo,
		taxRepo:  taxRepo,
	}
}

var _ portssvc.StatisticsSvcFacade = (*statisticsService)(nil)

// ByDimension groups transactions of the given kind by a dimension key and
// returns rows sorted descending by converted total.
func (s *statisticsService) ByDimension(ctx context.Context, userID string, dim domain.Dimension, kind domain.FlowKind, from, to time.Time, displayCurrency string) (*domain.DimensionReport, error) {
	if !domain.ValidDimension(dim) {
		return nil, fmt.Errorf("%w: unknown dimension %q", apperrors.ErrValidation, dim)
	}
	displayCurrency, err := normalizeDisplayCurrency(displayCurrency)
	if err != nil {
		return nil, err
	}

	txns, snapshots, taxRates, err := s.loadWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*domain.DimensionTotal)
	excluded := 0
	for i := range txns {
		txn := &txns[i]
		if kind != "" && txn.Kind != kind {
			continue
		}
		value, ok := s.convertedValue(txn, snapshots, taxRates, displayCurrency)
		if !ok {
			excluded++
			continue
		}
		key := dimensionKey(dim, txn)
		row, exists := totals[key]
		if !exists {
			row = &domain.DimensionTotal{Key: key, Total: decimal.Zero}
			totals[key] = row
		}
		row.Total = row.Total.Add(value)
		row.TransactionCount++
	}

	rows := make([]domain.DimensionTotal, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Key < rows[j].Key
	})

	return &domain.DimensionReport{
		DisplayCurrency:      displayCurrency,
		Rows:                 rows,
		ExcludedTransactions: excluded,
	}, nil
}

// MonthlySeries sums expense and income totals independently for every
// calendar month in [from, to], including months with zero activity.
func (s *statisticsService) MonthlySeries(ctx context.Context, userID string, from, to time.Time, displayCurrency string) (*domain.MonthlySeries, error) {
	displayCurrency, err := normalizeDisplayCurrency(displayCurrency)
	if err != nil {
		return nil, err
	}

	txns, snapshots, taxRates, err := s.loadWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	expense := make(map[string]decimal.Decimal)
	income := make(map[string]decimal.Decimal)
	excluded := 0
	for i := range txns {
		txn := &txns[i]
		value, ok := s.convertedValue(txn, snapshots, taxRates, displayCurrency)
		if !ok {
			excluded++
			continue
		}
		month := txn.Date.UTC().Format(domain.MonthKey)
		if txn.Kind == domain.FlowExpense {
			expense[month] = expense[month].Add(value)
		} else {
			income[month] = income[month].Add(value)
		}
	}

	var points []domain.MonthlyPoint
	fromUTC, toUTC := from.UTC(), to.UTC()
	cursor := time.Date(fromUTC.Year(), fromUTC.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(toUTC.Year(), toUTC.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		month := cursor.Format(domain.MonthKey)
		points = append(points, domain.MonthlyPoint{
			Month:   month,
			Expense: expense[month],
			Income:  income[month],
		})
		cursor = cursor.AddDate(0, 1, 0)
	}

	return &domain.MonthlySeries{
		DisplayCurrency:      displayCurrency,
		Points:               points,
		ExcludedTransactions: excluded,
	}, nil
}

// Heatmap sums per-day totals, omitting days where both totals are zero.
func (s *statisticsService) Heatmap(ctx context.Context, userID string, from, to time.Time, displayCurrency string) (*domain.Heatmap, error) {
	displayCurrency, err := normalizeDisplayCurrency(displayCurrency)
	if err != nil {
		return nil, err
	}

	txns, snapshots, taxRates, err := s.loadWindow(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	cells := make(map[string]*domain.HeatmapCell)
	excluded := 0
	for i := range txns {
		txn := &txns[i]
		value, ok := s.convertedValue(txn, snapshots, taxRates, displayCurrency)
		if !ok {
			excluded++
			continue
		}
		day := txn.Date.UTC().Format(domain.DayKey)
		cell, exists := cells[day]
		if !exists {
			cell = &domain.HeatmapCell{Date: day, Expense: decimal.Zero, Income: decimal.Zero}
			cells[day] = cell
		}
		if txn.Kind == domain.FlowExpense {
			cell.Expense = cell.Expense.Add(value)
		} else {
			cell.Income = cell.Income.Add(value)
		}
	}

	result := make([]domain.HeatmapCell, 0, len(cells))
	for _, cell := range cells {
		if cell.Expense.IsZero() && cell.Income.IsZero() {
			continue
		}
		result = append(result, *cell)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })

	return &domain.Heatmap{
		DisplayCurrency:      displayCurrency,
		Cells:                result,
		ExcludedTransactions: excluded,
	}, nil
}

// loadWindow validates the range and fetches the transactions, the snapshot
// index and the tax rate index for one query.
func (s *statisticsService) loadWindow(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, map[string]domain.HistoricRateSnapshot, map[string]decimal.Decimal, error) {
	if to.Before(from) {
		return nil, nil, nil, fmt.Errorf("%w: range end before range start", apperrors.ErrValidation)
	}

	txns, err := s.txnRepo.ListTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	snapshotList, err := s.rateRepo.ListSnapshotsByRange(ctx, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list historic snapshots: %w", err)
	}
	snapshots := make(map[string]domain.HistoricRateSnapshot, len(snapshotList))
	for _, snap := range snapshotList {
		snapshots[snap.Date.UTC().Format(domain.DayKey)] = snap
	}

	taxRates, err := s.taxRateIndex(ctx, txns)
	if err != nil {
		return nil, nil, nil, err
	}
	return txns, snapshots, taxRates, nil
}

// taxRateIndex resolves every tax referenced by the window's transactions
// in one repository call.
func (s *statisticsService) taxRateIndex(ctx context.Context, txns []domain.Transaction) (map[string]decimal.Decimal, error) {
	seen := make(map[string]struct{})
	var ids []string
	for i := range txns {
		for _, id := range txns[i].TaxIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	taxes, err := s.taxRepo.FindTaxesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve taxes: %w", err)
	}
	index := make(map[string]decimal.Decimal, len(taxes))
	for _, tax := range taxes {
		index[tax.TaxID] = tax.RatePercent
	}
	return index, nil
}

// convertedValue values one transaction in the display currency at its
// date's historic rate. Expenses are grossed up with their taxes first. The
// second return is false when the transaction must be excluded: no snapshot
// for its date, or a missing/zero rate for either currency in the snapshot.
// Same-currency values need no snapshot and are always included.
func (s *statisticsService) convertedValue(txn *domain.Transaction, snapshots map[string]domain.HistoricRateSnapshot, taxRates map[string]decimal.Decimal, displayCurrency string) (decimal.Decimal, bool) {
	amount := txn.Amount
	if txn.Kind == domain.FlowExpense && len(txn.TaxIDs) > 0 {
		rates := make([]decimal.Decimal, 0, len(txn.TaxIDs))
		for _, id := range txn.TaxIDs {
			if rate, ok := taxRates[id]; ok {
				rates = append(rates, rate)
			}
		}
		amount = domain.TaxInclusiveAmount(amount, rates)
	}

	if txn.CurrencyCode == displayCurrency {
		return amount, true
	}

	snap, ok := snapshots[txn.Date.UTC().Format(domain.DayKey)]
	if !ok {
		return decimal.Zero, false
	}
	fromRate, ok := snap.RateFor(txn.CurrencyCode)
	if !ok {
		return decimal.Zero, false
	}
	toRate, ok := snap.RateFor(displayCurrency)
	if !ok {
		return decimal.Zero, false
	}
	return domain.ConvertAmount(amount, fromRate, toRate), true
}

func dimensionKey(dim domain.Dimension, txn *domain.Transaction) string {
	var key string
	switch dim {
	case domain.DimensionPaymentMethod:
		key = txn.PaymentMethodID
	case domain.DimensionCategory:
		key = txn.CategoryID
	case domain.DimensionAccount:
		key = txn.AccountID
	case domain.DimensionSource:
		key = txn.SourceID
	}
	if key == "" {
		return unassignedKey
	}
	return key
}

func normalizeDisplayCurrency(code string) (string, error) {
	code = strings.ToUpper(code)
	if len(code) != 3 {
		return "", fmt.Errorf("%w: display currency must be a 3-letter code", apperrors.ErrValidation)
	}
	return code, nil
}
