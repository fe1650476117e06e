package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Row is one JSON object with its keys kept in document order
type Row struct {
	Keys   []string
	Values map[string]json.RawMessage
}

// Table is a column-ordered tabular payload
type Table struct {
	Columns []string
	Rows    [][]string
}

// TableFilename returns generated_data_<YYYYMMDD_HHMMSS>.csv
func TableFilename(at time.Time) string {
	return fmt.Sprintf("generated_data_%s.csv", at.Format(FilenameTimeLayout))
}

// rowKind is the JSON shape of one entry of the rows array
type rowKind int

const (
	objectRow rowKind = iota
	listRow
	scalarRow
)

func kindOf(raw json.RawMessage) rowKind {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{':
			return objectRow
		case '[':
			return listRow
		}
	}
	return scalarRow
}

// DecodeRows parses a JSON array of rows, preserving key order per object.
// Rows are either all objects (columns are keys), all lists (columns are
// positions "0", "1", ...) or all scalars (a single column "0").
func DecodeRows(raw json.RawMessage) ([]Row, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("rows must be an array: %w", err)
	}

	rows := make([]Row, 0, len(items))
	for i, item := range items {
		kind := kindOf(item)
		if i > 0 && kind != kindOf(items[0]) {
			return nil, fmt.Errorf("row %d: cannot mix objects, lists and scalars", i)
		}

		var (
			row Row
			err error
		)
		switch kind {
		case objectRow:
			row, err = decodeObjectRow(item)
		case listRow:
			row, err = decodeListRow(item)
		default:
			row = positionalRow([]json.RawMessage{item})
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeObjectRow(raw json.RawMessage) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return Row{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Row{}, fmt.Errorf("expected an object")
	}

	row := Row{Values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Row{}, fmt.Errorf("key %q: %w", key, err)
		}

		// duplicate keys: last value wins, first position is kept
		if _, dup := row.Values[key]; !dup {
			row.Keys = append(row.Keys, key)
		}
		row.Values[key] = value
	}

	return row, nil
}

func decodeListRow(raw json.RawMessage) (Row, error) {
	var cells []json.RawMessage
	if err := json.Unmarshal(raw, &cells); err != nil {
		return Row{}, err
	}
	return positionalRow(cells), nil
}

func positionalRow(cells []json.RawMessage) Row {
	row := Row{Values: make(map[string]json.RawMessage, len(cells))}
	for i, cell := range cells {
		key := strconv.Itoa(i)
		row.Keys = append(row.Keys, key)
		row.Values[key] = cell
	}
	return row
}

// TableFromRows builds a table whose columns are the union of row keys in
// order of first appearance. Missing cells are empty.
// A numeric column holding a fraction or a gap is a float column, so its
// integers render as "1.0".
func TableFromRows(rows []Row) (*Table, error) {
	table := &Table{}
	index := make(map[string]bool)

	for _, row := range rows {
		for _, key := range row.Keys {
			if !index[key] {
				index[key] = true
				table.Columns = append(table.Columns, key)
			}
		}
	}

	floats := make([]bool, len(table.Columns))
	for j, col := range table.Columns {
		floats[j] = isFloatColumn(rows, col)
	}

	for i, row := range rows {
		cells := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			value, ok := row.Values[col]
			if !ok {
				continue
			}
			cell, err := formatCell(value)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, col, err)
			}
			if floats[j] && isIntegerLiteral(value) {
				cell += ".0"
			}
			cells[j] = cell
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

func isFloatColumn(rows []Row, col string) bool {
	numbers, fraction, gap := 0, false, false

	for _, row := range rows {
		value, ok := row.Values[col]
		trimmed := bytes.TrimSpace(value)
		switch {
		case !ok || len(trimmed) == 0 || trimmed[0] == 'n':
			gap = true
		case isNumber(trimmed):
			numbers++
			if !isIntegerLiteral(trimmed) {
				fraction = true
			}
		default:
			return false
		}
	}

	return numbers > 0 && (fraction || gap)
}

func isNumber(raw []byte) bool {
	return len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'))
}

func isIntegerLiteral(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return isNumber(trimmed) && !bytes.ContainsAny(trimmed, ".eE")
}

// formatCell renders a JSON value the way a spreadsheet export expects it
func formatCell(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case 't':
		return "True", nil
	case 'f':
		return "False", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(trimmed), nil
	}
}

// SampleTable is served when the client sends no rows
func SampleTable(today time.Time) *Table {
	date := today.Format("2006-01-02")
	table := &Table{Columns: []string{"ID", "Name", "Value", "Date"}}

	for i := 1; i <= 10; i++ {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(i),
			fmt.Sprintf("Item %d", i),
			strconv.Itoa(i * 10),
			date,
		})
	}
	return table
}

// WriteCSV renders the table. A table without columns writes nothing.
func (t *Table) WriteCSV(w io.Writer) error {
	if len(t.Columns) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// CSV is WriteCSV into memory
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
