package leverage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/leverage/backend/internal/contracts"
	"github.com/wonny/leverage/backend/pkg/logger"
)

var (
	// ErrTickerRequired is returned when the ticker is empty after trimming
	ErrTickerRequired = errors.New("ticker is required")

	// ErrNoBalanceSheet is returned when the provider has no balance-sheet data for the ticker
	ErrNoBalanceSheet = errors.New("no balance sheet data found")
)

// Service fetches balance sheets and derives debt-to-equity ratios
// ⭐ SSOT: 티커 → 부채비율 파이프라인은 이 서비스에서만
type Service struct {
	fetcher contracts.BalanceSheetFetcher
	logger  *logger.Logger
}

// NewService creates a new leverage service
func NewService(fetcher contracts.BalanceSheetFetcher, log *logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  log,
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// DebtToEquity returns one ratio record per qualifying fiscal period
func (s *Service) DebtToEquity(ctx context.Context, ticker string) ([]contracts.RatioRecord, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, ErrTickerRequired
	}

	sheet, err := s.fetcher.FetchBalanceSheet(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch balance sheet for %s: %w", symbol, err)
	}

	if sheet.IsEmpty() {
		return nil, fmt.Errorf("%w for ticker %s", ErrNoBalanceSheet, symbol)
	}

	records := DeriveDebtToEquity(sheet, symbol)

	s.logger.WithFields(map[string]interface{}{
		"ticker":  symbol,
		"periods": len(sheet.Periods),
		"rows":    sheet.RowCount(),
		"records": len(records),
	}).Debug("Debt-to-equity derived")

	return records, nil
}
