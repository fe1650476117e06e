package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/leverage/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// WriteRatioTable renders records as an aligned text table
func WriteRatioTable(w io.Writer, ticker string, records []contracts.RatioRecord) {
	columns := []string{"Year", "Debt/Equity", "Stock"}
	widths := []int{6, 12, 8}

	fmt.Fprintf(w, "Debt-to-equity for %s\n", ticker)
	writeTableRow(w, columns, widths)
	fmt.Fprintln(w, strings.Repeat("─", tableWidth(widths)))

	for _, r := range records {
		writeTableRow(w, []string{
			r.Year,
			fmt.Sprintf("%.2f", r.DebtToEquity),
			r.Stock,
		}, widths)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "(no fiscal year with a usable equity figure)")
	}
}

func writeTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
}

func tableWidth(widths []int) int {
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	return total
}
