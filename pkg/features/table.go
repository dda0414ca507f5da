package features

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an uploaded CSV: trimmed header names plus the raw rows.
// Raw cells are kept untouched so results can be attached to them.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable builds a table, trimming surrounding whitespace from header names.
// When a name repeats, the first occurrence wins.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		t.Header[i] = name
		if _, seen := t.index[name]; !seen {
			t.index[name] = i
		}
	}
	return t
}

// ParseCSV parses raw CSV bytes. The first record is the header.
func ParseCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))

	records, err := r.ReadAll()
	if err != nil {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "unable to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "unable to parse CSV", errors.New("no columns to parse from file"))
	}
	return NewTable(records[0], records[1:]), nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the index of a header name.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell of row i in the named column.
func (t *Table) Value(i int, name string) (string, bool) {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.Rows) || j >= len(t.Rows[i]) {
		return "", false
	}
	return t.Rows[i][j], true
}

// MissingColumns returns the required names absent from the header, in required order.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateColumns fails with CSV_MISSING_COLUMNS when any feature column is absent.
func ValidateColumns(t *Table) error {
	missing := t.MissingColumns(Columns())
	if len(missing) == 0 {
		return nil
	}
	found := append([]string(nil), t.Header...)
	cause := &pkg.MissingColumnsError{Missing: missing, Found: found}
	return pkg.NewAppError(pkg.ErrMissingColumnsCode, fmt.Sprintf("CSV missing columns: %q", missing), cause)
}
