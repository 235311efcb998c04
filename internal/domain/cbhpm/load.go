package cbhpm

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/assislucian/glosa-audit/pkg/money"
)

// csvRow mirrors the semicolon-delimited layout CBHPM tables are distributed
// in. Monetary columns stay strings until normalized.
type csvRow struct {
	Codigo          string `csv:"codigo"`
	Descricao       string `csv:"descricao"`
	Valor           string `csv:"valor"`
	PorteAnestesico string `csv:"porte_anestesico"`
}

// LoadCSV reads a semicolon-delimited fee table. Rows with no code or an
// unreadable value are rejected: a hole in reference data silently dropped
// here would resurface as a wrong audit verdict later.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []csvRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CBHPM CSV: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entry, err := rowToEntry(row.Codigo, row.Descricao, row.Valor, row.PorteAnestesico)
		if err != nil {
			return nil, fmt.Errorf("CBHPM CSV row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return NewTable(entries), nil
}

// LoadXLSX reads a fee table from the first sheet of a spreadsheet. The
// header row is located by label containment, same rule the statement parser
// applies to document tables.
func LoadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open CBHPM spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("CBHPM spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read CBHPM sheet %q: %w", sheets[0], err)
	}

	headerIdx, cols := findSheetHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("CBHPM sheet %q has no recognizable header row", sheets[0])
	}

	entries := make([]Entry, 0, len(rows)-headerIdx-1)
	for i, row := range rows[headerIdx+1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		code := get(cols.code)
		if code == "" {
			continue
		}
		entry, err := rowToEntry(code, get(cols.description), get(cols.value), get(cols.port))
		if err != nil {
			return nil, fmt.Errorf("CBHPM sheet row %d: %w", headerIdx+i+2, err)
		}
		entries = append(entries, entry)
	}
	return NewTable(entries), nil
}

type sheetColumns struct {
	code        int
	description int
	value       int
	port        int
}

// findSheetHeader returns the first row binding at least code and value
// columns, with the resolved column indexes.
func findSheetHeader(rows [][]string) (int, sheetColumns) {
	for i, row := range rows {
		cols := sheetColumns{code: -1, description: -1, value: -1, port: -1}
		for j, cell := range row {
			lower := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case cols.code < 0 && strings.Contains(lower, "código"),
				cols.code < 0 && strings.Contains(lower, "codigo"):
				cols.code = j
			case cols.description < 0 && strings.Contains(lower, "descri"):
				cols.description = j
			case cols.port < 0 && strings.Contains(lower, "anest"):
				cols.port = j
			case cols.value < 0 && strings.Contains(lower, "valor"):
				cols.value = j
			}
		}
		if cols.code >= 0 && cols.value >= 0 {
			return i, cols
		}
	}
	return -1, sheetColumns{}
}

func rowToEntry(code, description, value, port string) (Entry, error) {
	amount, err := money.Parse(value)
	if err != nil {
		return Entry{}, fmt.Errorf("code %s: %w", code, err)
	}

	entry := Entry{
		Code:        code,
		Description: description,
		Value:       amount,
	}
	if port != "" {
		p, err := money.Parse(port)
		if err != nil {
			return Entry{}, fmt.Errorf("code %s anesthesia port: %w", code, err)
		}
		entry.AnesthesiaPort = p
	}
	return entry, nil
}
