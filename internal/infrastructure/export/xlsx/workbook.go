// Package xlsx renders revenue reports, the front desk day sheets and the
// customer list as excelize workbooks.
package xlsx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	fillHeader  = "D9EAD3"
	fillTotal   = "FFCC99"
	fillRevenue = "33CCCC"
	fillList    = "FFBFBF"

	// numFmtThousands is the built-in "#,##0" format.
	numFmtThousands = 3
	// numFmtHours is the built-in "0.00" format.
	numFmtHours = 2
)

// Workbook is a rendered report with its download name.
type Workbook struct {
	FileName string
	file     *excelize.File
}

// Bytes serializes the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", w.FileName, err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// fileName is <base>_yyyyMMdd.xlsx for the issue day.
func fileName(base string, issuedAt time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", base, issuedAt.Format("20060102"))
}

// sheet writes one worksheet and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

// newSheet renames the default sheet of a fresh file or adds a sheet.
func newSheet(f *excelize.File, name string) *sheet {
	s := &sheet{f: f, name: name}
	if list := f.GetSheetList(); len(list) == 1 && list[0] == "Sheet1" {
		s.err = f.SetSheetName("Sheet1", name)
		return s
	}
	_, s.err = f.NewSheet(name)
	return s
}

func (s *sheet) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return name
}

func (s *sheet) set(col, row int, v any) {
	if s.err != nil {
		return
	}
	if d, ok := v.(decimal.Decimal); ok {
		v = d.InexactFloat64()
	}
	s.err = s.f.SetCellValue(s.name, s.cell(col, row), v)
}

func (s *sheet) width(col int, w float64) {
	if s.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetColWidth(s.name, name, name, w)
}

// style applies st to the rectangle (c1,r1)-(c2,r2).
func (s *sheet) style(c1, r1, c2, r2 int, st *excelize.Style) {
	if s.err != nil {
		return
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellStyle(s.name, s.cell(c1, r1), s.cell(c2, r2), id)
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func thinBorder() []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return out
}

func headerStyle(color string) *excelize.Style {
	return &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      fill(color),
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Border:    thinBorder(),
	}
}

func amountStyle(color string) *excelize.Style {
	st := &excelize.Style{NumFmt: numFmtThousands, Border: thinBorder()}
	if color != "" {
		st.Fill = fill(color)
	}
	return st
}
