package leverage

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/leverage/backend/internal/contracts"
)

// EquityCandidates is the priority order used to resolve shareholder equity
var EquityCandidates = []contracts.LineItem{
	contracts.TotalStockholderEquity,
	contracts.StockholdersEquity,
	contracts.TotalEquity,
	contracts.ShareholdersEquity,
}

// ratioPlaces is the number of decimals kept in the published ratio
const ratioPlaces = 2

// ResolveEquity returns the first equity row present in the sheet.
// Presence is decided per sheet, so a present row with a missing cell in
// some period still wins over lower-priority rows.
func ResolveEquity(sheet *contracts.BalanceSheet) (contracts.LineItem, bool) {
	for _, item := range EquityCandidates {
		if sheet.HasRow(item) {
			return item, true
		}
	}
	return 0, false
}

// TotalDebt sums long-term and current debt for period i; missing values count as 0
func TotalDebt(sheet *contracts.BalanceSheet, i int) float64 {
	longTerm, _ := sheet.Value(contracts.LongTermDebt, i)
	current, _ := sheet.Value(contracts.CurrentDebt, i)
	return longTerm + current
}

// DeriveDebtToEquity computes one ratio per period in the sheet's column order.
// Periods whose resolved equity is missing or zero are skipped, as are
// periods whose ratio overflows to ±Inf (e.g. subnormal equity).
// ⭐ SSOT: 부채비율 계산은 이 함수에서만
func DeriveDebtToEquity(sheet *contracts.BalanceSheet, ticker string) []contracts.RatioRecord {
	records := make([]contracts.RatioRecord, 0, len(sheet.Periods))

	equityItem, ok := ResolveEquity(sheet)
	if !ok {
		return records
	}

	for i, period := range sheet.Periods {
		equity, ok := sheet.Value(equityItem, i)
		if !ok || equity == 0 {
			continue
		}

		ratio := TotalDebt(sheet, i) / equity
		if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
			continue
		}

		records = append(records, contracts.RatioRecord{
			Year:         period.Format("2006"),
			DebtToEquity: roundRatio(ratio),
			Stock:        ticker,
		})
	}

	return records
}

// roundRatio rounds half away from zero to two decimals
func roundRatio(ratio float64) float64 {
	rounded, _ := decimal.NewFromFloat(ratio).Round(ratioPlaces).Float64()
	return rounded
}
