package yahoo

import (
	"fmt"
	"time"

	"github.com/wonny/leverage/backend/internal/contracts"
)

const asOfDateLayout = "2006-01-02"

// buildBalanceSheet pivots the per-series blocks into a sheet whose columns
// are the union of every reported period end date.
func buildBalanceSheet(ticker string, results []TimeseriesResult) (*contracts.BalanceSheet, error) {
	rows := make(map[contracts.LineItem]map[time.Time]float64)
	seen := make(map[time.Time]bool)

	for i := range results {
		result := &results[i]

		item, ok := lineItemForKey(result.SeriesType())
		if !ok {
			continue
		}

		points, present, err := result.Entries()
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", result.SeriesType(), err)
		}
		if !present {
			continue
		}

		values := make(map[time.Time]float64)
		for _, point := range points {
			if point == nil {
				continue
			}

			period, err := time.Parse(asOfDateLayout, point.AsOfDate)
			if err != nil {
				return nil, fmt.Errorf("series %s: invalid asOfDate %q: %w", result.SeriesType(), point.AsOfDate, err)
			}
			seen[period] = true

			if point.ReportedValue != nil && point.ReportedValue.Raw != nil {
				values[period] = *point.ReportedValue.Raw
			}
		}
		rows[item] = values
	}

	periods := make([]time.Time, 0, len(seen))
	for period := range seen {
		periods = append(periods, period)
	}

	sheet := contracts.NewBalanceSheet(ticker, periods)
	if len(periods) == 0 {
		// rows without a single period carry nothing to derive from
		return sheet, nil
	}

	for item, values := range rows {
		if err := sheet.SetRow(item, values); err != nil {
			return nil, err
		}
	}

	return sheet, nil
}
