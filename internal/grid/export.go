package grid

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the name of the single worksheet of an export.
const ExportSheet = "Sheet1"

const (
	titleRow      = 1
	headerRow     = 2
	firstDataRow  = 3
	widthPadChars = 2
	maxColWidth   = 255
)

// ExportOptions configures an Exporter.
type ExportOptions struct {
	// Prefix is prepended to the download name and the title row.
	Prefix string

	// IncludeHidden exports columns whose Omit flag is set. When false only
	// the columns visible on screen are written.
	IncludeHidden bool
}

// Exporter serializes flattened rows into an .xlsx workbook.
type Exporter struct {
	opts ExportOptions
}

// NewExporter returns an Exporter using opts.
func NewExporter(opts ExportOptions) *Exporter {
	return &Exporter{opts: opts}
}

// FileName returns the download name for filename: "<Prefix> - <filename>.xlsx".
func (e *Exporter) FileName(filename string) string {
	return e.title(filename) + ".xlsx"
}

func (e *Exporter) title(filename string) string {
	if e.opts.Prefix == "" {
		return filename
	}
	return e.opts.Prefix + " - " + filename
}

// Columns returns the columns an export of cols will contain, in order.
func (e *Exporter) Columns(cols []Column) []Column {
	if e.opts.IncludeHidden {
		return CopyColumns(cols)
	}
	return VisibleColumns(cols)
}

// Export writes a workbook with a merged title row, a bold header row of
// column display names and one row per record, in column order. Values are
// looked up by each column's Identifier; missing keys leave the cell empty.
// Every column is sized to fit its longest text plus two characters.
// It returns the download file name.
func (e *Exporter) Export(w io.Writer, rows []FlatRow, cols []Column, filename string) (string, error) {
	cols = e.Columns(cols)

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeTitle(f, filename, len(cols)); err != nil {
		return "", fmt.Errorf("export: title: %w", err)
	}

	widths := make([]int, len(cols))
	if err := writeHeader(f, cols, widths); err != nil {
		return "", fmt.Errorf("export: header: %w", err)
	}

	for r, row := range rows {
		for c, col := range cols {
			v, ok := row[col.Identifier]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, firstDataRow+r)
			if err != nil {
				return "", fmt.Errorf("export: cell: %w", err)
			}
			if err := f.SetCellValue(ExportSheet, cell, cellValue(v)); err != nil {
				return "", fmt.Errorf("export: write %s: %w", cell, err)
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(stringify(v)))
		}
	}

	if err := autoSize(f, widths); err != nil {
		return "", fmt.Errorf("export: column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return "", fmt.Errorf("export: serialize: %w", err)
	}
	return e.FileName(filename), nil
}

func (e *Exporter) writeTitle(f *excelize.File, filename string, ncols int) error {
	if err := f.SetCellValue(ExportSheet, "A1", e.title(filename)); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	last := "A1"
	if ncols > 1 {
		if last, err = excelize.CoordinatesToCellName(ncols, titleRow); err != nil {
			return err
		}
		if err := f.MergeCell(ExportSheet, "A1", last); err != nil {
			return err
		}
	}
	return f.SetCellStyle(ExportSheet, "A1", last, style)
}

func writeHeader(f *excelize.File, cols []Column, widths []int) error {
	if len(cols) == 0 {
		return nil
	}

	for c, col := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ExportSheet, cell, col.Name); err != nil {
			return err
		}
		widths[c] = utf8.RuneCountInString(col.Name)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), headerRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(ExportSheet, "A2", last, bold)
}

func autoSize(f *excelize.File, widths []int) error {
	for c, w := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := min(w+widthPadChars, maxColWidth)
		if err := f.SetColWidth(ExportSheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

// cellValue converts a flat value into something excelize writes natively.
func cellValue(v any) any {
	switch v.(type) {
	case string, bool, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	}
	return stringify(v)
}
