package contracts

import "context"

// BalanceSheetFetcher loads annual balance-sheet data for a ticker.
// An unknown ticker returns an empty sheet, not an error.
// ⭐ SSOT: 재무제표 조회 인터페이스
type BalanceSheetFetcher interface {
	FetchBalanceSheet(ctx context.Context, ticker string) (*BalanceSheet, error)
}
