package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wonny/leverage/backend/internal/contracts"
)

// FilenameTimeLayout is the timestamp embedded in download filenames
const FilenameTimeLayout = "20060102_150405"

// RatioHeader is the header row of a debt-to-equity CSV
var RatioHeader = []string{"year", "debt_to_equity", "stock"}

// RatioFilename returns debt_to_equity_<TICKER>_<YYYYMMDD_HHMMSS>.csv
func RatioFilename(ticker string, at time.Time) string {
	return fmt.Sprintf("debt_to_equity_%s_%s.csv", ticker, at.Format(FilenameTimeLayout))
}

// WriteRatioCSV renders records as CSV. An empty slice yields the header only.
// ⭐ SSOT: 부채비율 CSV 포맷은 여기서만
func WriteRatioCSV(w io.Writer, records []contracts.RatioRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(RatioHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Year,
			strconv.FormatFloat(r.DebtToEquity, 'f', -1, 64),
			r.Stock,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", r.Year, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RatioCSV is WriteRatioCSV into memory
func RatioCSV(records []contracts.RatioRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRatioCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseRatioCSV reads a CSV produced by WriteRatioCSV back into records
func ParseRatioCSV(r io.Reader) ([]contracts.RatioRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}

	header := rows[0]
	if len(header) != len(RatioHeader) {
		return nil, fmt.Errorf("read csv: unexpected header %v", header)
	}
	for i, col := range RatioHeader {
		if header[i] != col {
			return nil, fmt.Errorf("read csv: unexpected header %v", header)
		}
	}

	records := make([]contracts.RatioRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ratio, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("read csv: line %d: %w", i+2, err)
		}
		records = append(records, contracts.RatioRecord{
			Year:         row[0],
			DebtToEquity: ratio,
			Stock:        row[2],
		})
	}

	return records, nil
}
