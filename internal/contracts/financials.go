package contracts

import (
	"fmt"
	"sort"
	"time"
)

// LineItem enumerates the balance-sheet rows the service knows how to read
// ⭐ SSOT: 재무제표 항목 이름은 여기서만 정의
type LineItem int

const (
	LongTermDebt LineItem = iota
	CurrentDebt
	TotalStockholderEquity
	StockholdersEquity
	TotalEquity
	ShareholdersEquity
)

var lineItemNames = map[LineItem]string{
	LongTermDebt:           "Long Term Debt",
	CurrentDebt:            "Current Debt",
	TotalStockholderEquity: "Total Stockholder Equity",
	StockholdersEquity:     "Stockholders Equity",
	TotalEquity:            "Total Equity",
	ShareholdersEquity:     "Shareholders Equity",
}

// AllLineItems lists every known line item in declaration order
func AllLineItems() []LineItem {
	return []LineItem{
		LongTermDebt,
		CurrentDebt,
		TotalStockholderEquity,
		StockholdersEquity,
		TotalEquity,
		ShareholdersEquity,
	}
}

// String returns the display name, e.g. "Long Term Debt"
func (l LineItem) String() string {
	if name, ok := lineItemNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LineItem(%d)", int(l))
}

// ParseLineItem maps a display name back to its LineItem
func ParseLineItem(name string) (LineItem, bool) {
	for item, n := range lineItemNames {
		if n == name {
			return item, true
		}
	}
	return 0, false
}

// BalanceSheet is a table of line items by fiscal period.
// Periods are ordered most-recent-first; each row holds one optional value
// per period. A row that exists with only nil values is still "present".
type BalanceSheet struct {
	Ticker  string
	Periods []time.Time
	rows    map[LineItem][]*float64
}

// NewBalanceSheet creates an empty sheet with the given period columns.
// Periods are sorted most-recent-first.
func NewBalanceSheet(ticker string, periods []time.Time) *BalanceSheet {
	sorted := append([]time.Time(nil), periods...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].After(sorted[j])
	})

	return &BalanceSheet{
		Ticker:  ticker,
		Periods: sorted,
		rows:    make(map[LineItem][]*float64),
	}
}

// SetRow marks item as present and fills its values by period end date.
// Periods missing from values stay nil.
func (b *BalanceSheet) SetRow(item LineItem, values map[time.Time]float64) error {
	row := make([]*float64, len(b.Periods))
	matched := 0

	for i, period := range b.Periods {
		if v, ok := values[period]; ok {
			row[i] = &v
			matched++
		}
	}

	if matched != len(values) {
		return fmt.Errorf("row %q has %d values outside the sheet's periods", item, len(values)-matched)
	}

	b.rows[item] = row
	return nil
}

// HasRow reports whether the provider returned the line item at all
func (b *BalanceSheet) HasRow(item LineItem) bool {
	_, ok := b.rows[item]
	return ok
}

// Value returns the value of item in period column i; ok is false when the
// row is absent or the cell is missing.
func (b *BalanceSheet) Value(item LineItem, i int) (float64, bool) {
	row, ok := b.rows[item]
	if !ok || i < 0 || i >= len(row) || row[i] == nil {
		return 0, false
	}
	return *row[i], true
}

// RowCount returns how many line items are present
func (b *BalanceSheet) RowCount() int {
	return len(b.rows)
}

// IsEmpty reports whether the sheet carries no usable data
func (b *BalanceSheet) IsEmpty() bool {
	return b == nil || len(b.Periods) == 0 || len(b.rows) == 0
}

// RatioRecord is one fiscal year's debt-to-equity ratio
type RatioRecord struct {
	Year         string  `json:"year"`
	DebtToEquity float64 `json:"debt_to_equity"`
	Stock        string  `json:"stock"`
}
