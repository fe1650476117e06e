package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/leverage/backend/internal/api/handlers"
	"github.com/wonny/leverage/backend/internal/contracts"
	"github.com/wonny/leverage/backend/internal/export"
	"github.com/wonny/leverage/backend/internal/external/yahoo"
	"github.com/wonny/leverage/backend/internal/leverage"
	"github.com/wonny/leverage/backend/pkg/httputil"
	"github.com/wonny/leverage/backend/pkg/logger"
)

// ratioCmd represents the ratio command
var ratioCmd = &cobra.Command{
	Use:   "ratio <TICKER>",
	Short: "부채비율 계산 (one-off)",
	Long: `API 서버 없이 한 종목의 부채비율을 계산합니다.

Formats:
  table - aligned text (default)
  json  - {"data": [...]} as served by POST /api/debt-to-equity
  csv   - the file served by POST /api/debt-to-equity-csv

--table reads a local balance sheet instead of calling the provider:
  {"periods": ["2023-09-30", ...],
   "rows": {"Long Term Debt": [95281000000, ...], "Stockholders Equity": [...]}}

Example:
  go run ./cmd/leverage ratio AAPL
  go run ./cmd/leverage ratio MSFT --format csv --output msft.csv
  go run ./cmd/leverage ratio TEST --table sheet.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runRatio,
}

var (
	ratioFormat string
	ratioOutput string
	ratioTable  string
)

func init() {
	rootCmd.AddCommand(ratioCmd)

	ratioCmd.Flags().StringVar(&ratioFormat, "format", "table", "출력 형식 (table|json|csv)")
	ratioCmd.Flags().StringVarP(&ratioOutput, "output", "o", "", "출력 파일 (default: stdout)")
	ratioCmd.Flags().StringVar(&ratioTable, "table", "", "로컬 재무제표 JSON 파일")
}

func runRatio(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// logs go to stderr so stdout stays a clean JSON/CSV stream
	log := logger.NewWithWriter(cfg, os.Stderr)

	var fetcher contracts.BalanceSheetFetcher
	if ratioTable != "" {
		fetcher = &fileFetcher{path: ratioTable}
	} else {
		fetcher = yahoo.NewClient(httputil.New(cfg, log), cfg, log)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Provider.Timeout)
	defer cancel()

	ticker := leverage.NormalizeTicker(args[0])
	records, err := leverage.NewService(fetcher, log).DebtToEquity(ctx, ticker)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ratioOutput != "" {
		f, err := os.Create(ratioOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeRatios(out, ratioFormat, ticker, records)
}

// writeRatios renders records in one of the supported CLI formats
func writeRatios(w io.Writer, format, ticker string, records []contracts.RatioRecord) error {
	switch format {
	case "table":
		WriteRatioTable(w, ticker, records)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(handlers.RatioResponse{Data: records})
	case "csv":
		return export.WriteRatioCSV(w, records)
	default:
		return fmt.Errorf("unknown format %q (valid: table, json, csv)", format)
	}
}

// balanceSheetFile is the --table input format
type balanceSheetFile struct {
	Periods []string              `json:"periods"`
	Rows    map[string][]*float64 `json:"rows"`
}

// fileFetcher serves a balance sheet from a local JSON file
type fileFetcher struct {
	path string
}

func (f *fileFetcher) FetchBalanceSheet(ctx context.Context, ticker string) (*contracts.BalanceSheet, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read balance sheet file: %w", err)
	}
	return parseBalanceSheetFile(ticker, data)
}

func parseBalanceSheetFile(ticker string, data []byte) (*contracts.BalanceSheet, error) {
	var file balanceSheetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode balance sheet file: %w", err)
	}

	periods := make([]time.Time, len(file.Periods))
	for i, p := range file.Periods {
		t, err := time.Parse("2006-01-02", p)
		if err != nil {
			return nil, fmt.Errorf("period %q: %w", p, err)
		}
		periods[i] = t
	}

	sheet := contracts.NewBalanceSheet(ticker, periods)
	for name, cells := range file.Rows {
		item, ok := contracts.ParseLineItem(name)
		if !ok {
			// unknown line items are ignored, like any other provider row
			continue
		}
		if len(cells) != len(periods) {
			return nil, fmt.Errorf("row %q has %d values for %d periods", name, len(cells), len(periods))
		}

		values := make(map[time.Time]float64)
		for i, cell := range cells {
			if cell != nil {
				values[periods[i]] = *cell
			}
		}
		if err := sheet.SetRow(item, values); err != nil {
			return nil, err
		}
	}

	return sheet, nil
}
