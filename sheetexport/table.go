package sheetexport

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Mode int

const (
	// Replace clears the tab, then writes the header and rows.
	Replace Mode = iota
	// Append adds rows after the existing content; the header is not written.
	Append
)

func (m Mode) String() string {
	if m == Append {
		return "append"
	}
	return "replace"
}

var ErrEmptyTab = errors.New("tab name is empty")

// Table is a header plus rows of plain cell values. Supported cell types are
// string, integers, float64, decimal.Decimal, decimal.NullDecimal and nil.
type Table struct {
	Header []string
	Rows   [][]any
}

// Writer is a tabular sink addressed by tab name.
type Writer interface {
	WriteTable(ctx context.Context, tab string, t Table, mode Mode) error
}

// cellValue normalizes a cell for sinks that only take strings and numbers.
// Empty cells become "".
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		f, _ := x.Float64()
		return f
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		f, _ := x.Decimal.Float64()
		return f
	case *int:
		if x == nil {
			return ""
		}
		return *x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case fmt.Stringer:
		return x.String()
	default:
		return v
	}
}

func normalizedRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = cellValue(v)
	}
	return out
}

func headerRow(h []string) []any {
	out := make([]any, len(h))
	for i, v := range h {
		out[i] = v
	}
	return out
}

// rowsFor returns the rows a write puts on the tab, header first on Replace.
func rowsFor(t Table, mode Mode) [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	if mode == Replace && len(t.Header) > 0 {
		out = append(out, headerRow(t.Header))
	}
	for _, r := range t.Rows {
		out = append(out, normalizedRow(r))
	}
	return out
}
