package grid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func exportColumns() []Column {
	return []Column{
		{ID: "sku", Name: "SKU", Identifier: "sku"},
		{ID: "name", Name: "Product Name", Identifier: "name"},
		{ID: "qty", Name: "On Hand", Identifier: "on_hand", Omit: true},
	}
}

func openExport(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValueAt(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(ExportSheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s) error = %v", cell, err)
	}
	return v
}

func TestExporter_Layout(t *testing.T) {
	rows := []FlatRow{
		{"sku": "A5", "name": "Widget", "on_hand": 5},
		{"sku": "B2", "on_hand": 12},
	}

	var buf bytes.Buffer
	e := NewExporter(ExportOptions{Prefix: "Fulfillment", IncludeHidden: true})
	name, err := e.Export(&buf, rows, exportColumns(), "Products")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "Fulfillment - Products.xlsx" {
		t.Errorf("file name = %q, want %q", name, "Fulfillment - Products.xlsx")
	}

	f := openExport(t, &buf)

	if got := cellValueAt(t, f, "A1"); got != "Fulfillment - Products" {
		t.Errorf("title = %q, want %q", got, "Fulfillment - Products")
	}

	merged, err := f.GetMergeCells(ExportSheet)
	if err != nil {
		t.Fatalf("GetMergeCells() error = %v", err)
	}
	if len(merged) != 1 || merged[0].GetStartAxis() != "A1" || merged[0].GetEndAxis() != "C1" {
		t.Errorf("merged cells = %v, want A1:C1", merged)
	}

	headers := []string{"SKU", "Product Name", "On Hand"}
	for i, want := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if got := cellValueAt(t, f, cell); got != want {
			t.Errorf("header %s = %q, want %q", cell, got, want)
		}
	}

	styleID, err := f.GetCellStyle(ExportSheet, "B2")
	if err != nil {
		t.Fatalf("GetCellStyle() error = %v", err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle() error = %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Error("header row is not bold")
	}

	if got := cellValueAt(t, f, "A3"); got != "A5" {
		t.Errorf("A3 = %q, want A5", got)
	}
	if got := cellValueAt(t, f, "C4"); got != "12" {
		t.Errorf("C4 = %q, want 12", got)
	}
	if got := cellValueAt(t, f, "B4"); got != "" {
		t.Errorf("B4 = %q, want empty for missing key", got)
	}
}

func TestExporter_ColumnWidths(t *testing.T) {
	rows := []FlatRow{
		{"sku": "A-VERY-LONG-SKU-0001", "name": "Widget"},
	}

	var buf bytes.Buffer
	if _, err := NewExporter(ExportOptions{IncludeHidden: true}).Export(&buf, rows, exportColumns(), "p"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f := openExport(t, &buf)

	tests := []struct {
		col  string
		want float64
	}{
		{"A", 22}, // longest cell (20) + 2
		{"B", 14}, // header "Product Name" (12) + 2
		{"C", 9},  // header "On Hand" (7) + 2
	}
	for _, tt := range tests {
		got, err := f.GetColWidth(ExportSheet, tt.col)
		if err != nil {
			t.Fatalf("GetColWidth(%s) error = %v", tt.col, err)
		}
		if got != tt.want {
			t.Errorf("width %s = %v, want %v", tt.col, got, tt.want)
		}
	}
}

func TestExporter_HiddenColumns(t *testing.T) {
	rows := []FlatRow{{"sku": "A5", "name": "Widget", "on_hand": 5}}

	var buf bytes.Buffer
	if _, err := NewExporter(ExportOptions{}).Export(&buf, rows, exportColumns(), "p"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	f := openExport(t, &buf)

	if got := cellValueAt(t, f, "C2"); got != "" {
		t.Errorf("hidden column header C2 = %q, want empty", got)
	}
	if got := cellValueAt(t, f, "B3"); got != "Widget" {
		t.Errorf("B3 = %q, want Widget", got)
	}
}

func TestExporter_NoPrefix(t *testing.T) {
	e := NewExporter(ExportOptions{})
	if got := e.FileName("Orders"); got != "Orders.xlsx" {
		t.Errorf("FileName() = %q, want Orders.xlsx", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExporter_SerializeErrorWrapped(t *testing.T) {
	_, err := NewExporter(ExportOptions{}).Export(failingWriter{}, nil, exportColumns(), "p")
	if err == nil {
		t.Fatal("Export() expected error from failing writer")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("export: serialize")) {
		t.Errorf("error = %q, want export: serialize prefix", err)
	}
}
