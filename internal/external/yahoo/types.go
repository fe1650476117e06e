package yahoo

import (
	"encoding/json"

	"github.com/wonny/leverage/backend/internal/contracts"
)

// annualPrefix selects the annual (12M) series of each fundamental
const annualPrefix = "annual"

// lineItemKeys maps each line item to its fundamentals-timeseries type name
var lineItemKeys = map[contracts.LineItem]string{
	contracts.LongTermDebt:           "LongTermDebt",
	contracts.CurrentDebt:            "CurrentDebt",
	contracts.TotalStockholderEquity: "TotalStockholderEquity",
	contracts.StockholdersEquity:     "StockholdersEquity",
	contracts.TotalEquity:            "TotalEquityGrossMinorityInterest",
	contracts.ShareholdersEquity:     "CommonStockEquity",
}

// TypeKey returns the annual series name for a line item, e.g. "annualLongTermDebt"
func TypeKey(item contracts.LineItem) string {
	return annualPrefix + lineItemKeys[item]
}

// lineItemForKey is the reverse of TypeKey
func lineItemForKey(key string) (contracts.LineItem, bool) {
	for item := range lineItemKeys {
		if TypeKey(item) == key {
			return item, true
		}
	}
	return 0, false
}

// TimeseriesResponse is the envelope of the fundamentals-timeseries endpoint
type TimeseriesResponse struct {
	Timeseries struct {
		Result []TimeseriesResult `json:"result"`
		Error  *APIError          `json:"error"`
	} `json:"timeseries"`
}

// APIError is the provider's error object
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return "yahoo: " + e.Code + ": " + e.Description
}

// TimeseriesResult is one series block. The data array lives under a key
// equal to the series type, so it is kept raw until the type is known.
type TimeseriesResult struct {
	Meta struct {
		Symbol []string `json:"symbol"`
		Type   []string `json:"type"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`

	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps every field so the dynamically named series can be read
func (r *TimeseriesResult) UnmarshalJSON(data []byte) error {
	type plain TimeseriesResult
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	return json.Unmarshal(data, &r.fields)
}

// SeriesType returns the series type name, or "" when meta is missing
func (r *TimeseriesResult) SeriesType() string {
	if len(r.Meta.Type) == 0 {
		return ""
	}
	return r.Meta.Type[0]
}

// Entries decodes the data points of the series. ok is false when the
// block carries no array for its type (the line item is absent).
func (r *TimeseriesResult) Entries() ([]*DataPoint, bool, error) {
	raw, ok := r.fields[r.SeriesType()]
	if !ok || string(raw) == "null" {
		return nil, false, nil
	}

	var points []*DataPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, false, err
	}
	return points, true, nil
}

// DataPoint is one reported value; entries may be null in the array
type DataPoint struct {
	AsOfDate      string         `json:"asOfDate"`
	PeriodType    string         `json:"periodType"`
	CurrencyCode  string         `json:"currencyCode"`
	ReportedValue *ReportedValue `json:"reportedValue"`
}

// ReportedValue holds the raw number and its formatted label
type ReportedValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}
