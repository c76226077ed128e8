// =============================================================================
// PayPal to GnuCash Importer - XLSX Rule Source
// =============================================================================
//
// Routing rules can also be maintained as a spreadsheet, which is what the
// bookkeepers who own the account mapping actually edit. The first sheet is
// read; the first row is the header and must contain the columns Type,
// Status, Account1, Account2 and optionally Strategy (case-insensitive,
// any order). Rows with an empty Type cell are skipped.
//
// =============================================================================

package rules

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX loads routing rules from the first sheet of an XLSX workbook.
func LoadXLSX(path string) ([]Rule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no rule rows", sheets[0])
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}

	var loaded []Rule
	for i, row := range rows[1:] {
		get := func(col int) string {
			if col >= 0 && col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		if get(columns.typ) == "" {
			continue
		}

		rule, err := resolveStrategy(Rule{
			Type:         get(columns.typ),
			Status:       get(columns.status),
			Account1:     get(columns.account1),
			Account2:     get(columns.account2),
			StrategyName: get(columns.strategy),
		}, fmt.Sprintf("%s row %d", path, i+2))
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, rule)
	}

	if len(loaded) == 0 {
		return nil, fmt.Errorf("sheet %q has no rule rows", sheets[0])
	}
	return loaded, nil
}

// columnIndexes holds the resolved column positions of the rule sheet.
type columnIndexes struct {
	typ      int
	status   int
	account1 int
	account2 int
	strategy int
}

// mapColumns resolves the header row into column positions.
func mapColumns(header []string) (columnIndexes, error) {
	columns := columnIndexes{typ: -1, status: -1, account1: -1, account2: -1, strategy: -1}

	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "type":
			columns.typ = i
		case "status", "state":
			columns.status = i
		case "account1":
			columns.account1 = i
		case "account2":
			columns.account2 = i
		case "strategy":
			columns.strategy = i
		}
	}

	if columns.typ == -1 || columns.status == -1 || columns.account1 == -1 || columns.account2 == -1 {
		return columns, fmt.Errorf("header must contain Type, Status, Account1 and Account2 columns")
	}
	return columns, nil
}
