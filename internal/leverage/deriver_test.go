package leverage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leverage/backend/internal/contracts"
)

func yearEnd(year int) time.Time {
	return time.Date(year, 9, 30, 0, 0, 0, 0, time.UTC)
}

// buildSheet creates a sheet whose rows are given per period (most recent first).
// A nil entry in a row means the cell is missing.
func buildSheet(t *testing.T, years []int, rows map[contracts.LineItem][]*float64) *contracts.BalanceSheet {
	t.Helper()

	periods := make([]time.Time, len(years))
	for i, y := range years {
		periods[i] = yearEnd(y)
	}
	sheet := contracts.NewBalanceSheet("TEST", periods)

	for item, cells := range rows {
		values := make(map[time.Time]float64)
		for i, cell := range cells {
			if cell != nil {
				values[yearEnd(years[i])] = *cell
			}
		}
		require.NoError(t, sheet.SetRow(item, values))
	}
	return sheet
}

func f(v float64) *float64 { return &v }

func TestDeriveDebtToEquity_SinglePeriod(t *testing.T) {
	sheet := buildSheet(t, []int{2023}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt:           {f(100)},
		contracts.CurrentDebt:            {f(50)},
		contracts.TotalStockholderEquity: {f(300)},
	})

	records := DeriveDebtToEquity(sheet, "AAPL")

	require.Len(t, records, 1)
	assert.Equal(t, contracts.RatioRecord{Year: "2023", DebtToEquity: 0.5, Stock: "AAPL"}, records[0])
}

func TestDeriveDebtToEquity_ZeroEquitySkipped(t *testing.T) {
	sheet := buildSheet(t, []int{2023, 2022}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt:           {f(100), f(100)},
		contracts.TotalStockholderEquity: {f(0), f(400)},
	})

	records := DeriveDebtToEquity(sheet, "AAPL")

	require.Len(t, records, 1)
	assert.Equal(t, "2022", records[0].Year)
	assert.Equal(t, 0.25, records[0].DebtToEquity)
}

func TestDeriveDebtToEquity_MissingDebtDefaultsToZero(t *testing.T) {
	sheet := buildSheet(t, []int{2023, 2022}, map[contracts.LineItem][]*float64{
		contracts.CurrentDebt:        {nil, f(30)},
		contracts.StockholdersEquity: {f(200), f(300)},
	})

	records := DeriveDebtToEquity(sheet, "MSFT")

	require.Len(t, records, 2)
	assert.Equal(t, 0.0, records[0].DebtToEquity, "no debt rows still emits a record")
	assert.Equal(t, 0.1, records[1].DebtToEquity)
}

func TestDeriveDebtToEquity_NoEquityRows(t *testing.T) {
	sheet := buildSheet(t, []int{2023, 2022}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt: {f(100), f(90)},
		contracts.CurrentDebt:  {f(10), f(5)},
	})

	records := DeriveDebtToEquity(sheet, "AAPL")

	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDeriveDebtToEquity_PresentButMissingEquityWins(t *testing.T) {
	// Total Stockholder Equity is present with a missing 2023 cell; the
	// lower-priority Stockholders Equity must not be used as a fallback.
	sheet := buildSheet(t, []int{2023, 2022}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt:           {f(100), f(100)},
		contracts.TotalStockholderEquity: {nil, f(200)},
		contracts.StockholdersEquity:     {f(50), f(50)},
	})

	records := DeriveDebtToEquity(sheet, "AAPL")

	require.Len(t, records, 1)
	assert.Equal(t, "2022", records[0].Year)
	assert.Equal(t, 0.5, records[0].DebtToEquity)
}

func TestDeriveDebtToEquity_RoundsOnlyFinalRatio(t *testing.T) {
	// 0.004 + 0.004 = 0.008; rounding each leg first would give 0.
	sheet := buildSheet(t, []int{2023, 2022, 2021}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt: {f(0.004), f(1), f(2)},
		contracts.CurrentDebt:  {f(0.004), f(0), f(0)},
		contracts.TotalEquity:  {f(1), f(3), f(-8)},
	})

	records := DeriveDebtToEquity(sheet, "T")

	require.Len(t, records, 3)
	assert.Equal(t, 0.01, records[0].DebtToEquity)
	assert.Equal(t, 0.33, records[1].DebtToEquity)
	assert.Equal(t, -0.25, records[2].DebtToEquity, "negative equity is not skipped")
}

func TestDeriveDebtToEquity_PreservesPeriodOrder(t *testing.T) {
	sheet := buildSheet(t, []int{2024, 2023, 2022, 2021}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt:       {f(1), f(2), f(3), f(4)},
		contracts.ShareholdersEquity: {f(10), f(10), f(10), f(10)},
	})

	records := DeriveDebtToEquity(sheet, "T")

	years := make([]string, len(records))
	for i, r := range records {
		years[i] = r.Year
	}
	assert.Equal(t, []string{"2024", "2023", "2022", "2021"}, years)
}

func TestDeriveDebtToEquity_NonFiniteRatioSkipped(t *testing.T) {
	sheet := buildSheet(t, []int{2023, 2022, 2021}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt:           {f(1e308), f(100), f(100)},
		contracts.CurrentDebt:            {f(1e308), f(0), f(0)},
		contracts.TotalStockholderEquity: {f(1), f(5e-324), f(200)},
	})

	var records []contracts.RatioRecord
	require.NotPanics(t, func() {
		records = DeriveDebtToEquity(sheet, "AAPL")
	})

	require.Len(t, records, 1)
	assert.Equal(t, contracts.RatioRecord{Year: "2021", DebtToEquity: 0.5, Stock: "AAPL"}, records[0])
}

func TestRoundRatio_TiesAwayFromZero(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.13},
		{2.675, 2.68},
		{-0.125, -0.13},
		{0.124, 0.12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundRatio(tt.in), "roundRatio(%v)", tt.in)
	}
}

// Every period with non-zero equity yields exactly round2(debt/equity).
func TestDeriveDebtToEquity_RatioProperty(t *testing.T) {
	debts := []float64{0, 1, 12.5, 99.999, 1e9, 123456789.123}
	equities := []float64{1, 3, 7, -2.5, 0.3, 4e10}

	for _, debt := range debts {
		for _, equity := range equities {
			sheet := buildSheet(t, []int{2020}, map[contracts.LineItem][]*float64{
				contracts.LongTermDebt:       {f(debt)},
				contracts.StockholdersEquity: {f(equity)},
			})

			records := DeriveDebtToEquity(sheet, "P")

			require.Len(t, records, 1)
			assert.InDelta(t, math.Round(debt/equity*100)/100, records[0].DebtToEquity, 1e-9,
				"debt=%v equity=%v", debt, equity)
		}
	}
}

func TestResolveEquity_Priority(t *testing.T) {
	tests := []struct {
		name    string
		present []contracts.LineItem
		want    contracts.LineItem
		wantOK  bool
	}{
		{"total stockholder equity first", []contracts.LineItem{contracts.ShareholdersEquity, contracts.TotalStockholderEquity}, contracts.TotalStockholderEquity, true},
		{"stockholders equity next", []contracts.LineItem{contracts.TotalEquity, contracts.StockholdersEquity}, contracts.StockholdersEquity, true},
		{"total equity before shareholders", []contracts.LineItem{contracts.ShareholdersEquity, contracts.TotalEquity}, contracts.TotalEquity, true},
		{"shareholders equity last", []contracts.LineItem{contracts.ShareholdersEquity}, contracts.ShareholdersEquity, true},
		{"none", []contracts.LineItem{contracts.LongTermDebt}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make(map[contracts.LineItem][]*float64)
			for _, item := range tt.present {
				rows[item] = []*float64{f(1)}
			}
			sheet := buildSheet(t, []int{2023}, rows)

			got, ok := ResolveEquity(sheet)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTotalDebt(t *testing.T) {
	sheet := buildSheet(t, []int{2023, 2022}, map[contracts.LineItem][]*float64{
		contracts.LongTermDebt: {f(100), nil},
		contracts.CurrentDebt:  {f(50), nil},
	})

	assert.Equal(t, 150.0, TotalDebt(sheet, 0))
	assert.Equal(t, 0.0, TotalDebt(sheet, 1))
}
