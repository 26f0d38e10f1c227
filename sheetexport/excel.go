package sheetexport

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Excel writes tabs into a local xlsx workbook. Changes are kept in memory
// until Save.
type Excel struct {
	path    string
	f       *excelize.File
	written map[string]bool
}

// NewExcel opens the workbook at path, or starts a new one if it does not
// exist yet.
func NewExcel(path string) (*Excel, error) {
	if path == "" {
		return nil, errors.New("xlsx path is empty")
	}
	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
	} else {
		return nil, err
	}
	return &Excel{path: path, f: f, written: map[string]bool{}}, nil
}

func (e *Excel) Path() string { return e.path }

func (e *Excel) WriteTable(ctx context.Context, tab string, t Table, mode Mode) error {
	if tab == "" {
		return ErrEmptyTab
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	idx, err := e.f.GetSheetIndex(tab)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := e.f.NewSheet(tab); err != nil {
			return err
		}
	}

	existing, err := e.f.GetRows(tab)
	if err != nil {
		return err
	}
	start := len(existing) + 1
	if mode == Replace {
		for i := len(existing); i >= 1; i-- {
			if err := e.f.RemoveRow(tab, i); err != nil {
				return err
			}
		}
		start = 1
	}

	for i, row := range rowsFor(t, mode) {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := e.f.SetSheetRow(tab, cell, &row); err != nil {
			return err
		}
	}
	e.written[tab] = true
	return nil
}

// Save writes the workbook to its path. The placeholder sheet of a new
// workbook is dropped once another tab holds data.
func (e *Excel) Save() error {
	e.dropPlaceholder()
	return e.f.SaveAs(e.path)
}

// Bytes returns the workbook as xlsx bytes.
func (e *Excel) Bytes() ([]byte, error) {
	e.dropPlaceholder()
	buf, err := e.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (e *Excel) Close() error {
	return e.f.Close()
}

func (e *Excel) dropPlaceholder() {
	if e.written[defaultSheet] || len(e.written) == 0 {
		return
	}
	if idx, err := e.f.GetSheetIndex(defaultSheet); err != nil || idx < 0 {
		return
	}
	rows, err := e.f.GetRows(defaultSheet)
	if err != nil || len(rows) > 0 {
		return
	}
	_ = e.f.DeleteSheet(defaultSheet)
}
