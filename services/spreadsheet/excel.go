// Package spreadsheet reads and writes xlsx workbooks.
package spreadsheet

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/chikoro/core/report"
)

var ErrNoSheet = errors.New("the workbook does not contain any sheet")

type Excel struct{}

func NewExcel() Excel {
	return Excel{}
}

// ReadRows returns the rows of the first sheet of the workbook read from r.
func (Excel) ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet)
	return rows, errors.Wrapf(err, "reading sheet %q", sheet)
}

// WriteSheet writes sheet as a single-sheet workbook, header in bold.
func (Excel) WriteSheet(w io.Writer, sheet report.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return errors.Wrap(err, "naming sheet")
		}
	}

	if err := f.SetSheetRow(name, "A1", &sheet.Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if len(sheet.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "creating header style")
		}
		last, _ := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err = f.SetCellStyle(name, "A1", last, bold); err != nil {
			return errors.Wrap(err, "styling header")
		}
	}

	for i, row := range sheet.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
