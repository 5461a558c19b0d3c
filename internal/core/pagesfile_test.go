package core

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const overrideTOML = `
[[page]]
key = "orders"
label = "Open Orders"
opaque_fields = ["shipments", "lines"]

  [page.filters]
  sku = true

[[page]]
key = "returns"
group = "Sales"
label = "Returns"

  [page.source]
  table = "rma"

  [[page.columns]]
  id = "rma_number"
  title = "RMA #"
  kind = "link"
  link_pattern = "/returns/{id}"

  [[page.columns]]
  id = "reason"
  title = "Reason"
  kind = "badge"
  [page.columns.badge_tones]
  damaged = "danger"
`

func writePagesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write pages file: %v", err)
	}
	return path
}

func TestApplyPages(t *testing.T) {
	registerOrdersPage(t)
	Upsert(PageDefinition{
		Info:    PageInfo{Key: "orders", Group: "Sales", Label: "Orders"},
		Columns: []ColumnSpec{{ID: "number", Title: "Order #"}},
		Filters: FilterCaps{Date: true, SKU: true, PerPage: true},
	})

	file, err := LoadPagesFile(writePagesFile(t, overrideTOML))
	if err != nil {
		t.Fatalf("LoadPagesFile() error = %v", err)
	}
	keys, err := ApplyPages(file)
	if err != nil {
		t.Fatalf("ApplyPages() error = %v", err)
	}
	if strings.Join(keys, ",") != "orders,returns" {
		t.Errorf("applied keys = %v, want [orders returns]", keys)
	}

	orders, _ := Get("orders")
	if orders.Info.Label != "Open Orders" || orders.Info.Group != "Sales" {
		t.Errorf("orders Info = %+v, want merged label and kept group", orders.Info)
	}
	if len(orders.Columns) != 1 {
		t.Errorf("orders columns = %d, want kept 1", len(orders.Columns))
	}
	if orders.Filters.Date || !orders.Filters.SKU {
		t.Errorf("orders Filters = %+v, want sku only", orders.Filters)
	}
	if !orders.OpaqueSet()["lines"] {
		t.Errorf("orders OpaqueFields = %v, want lines", orders.OpaqueFields)
	}

	returns, ok := Get("returns")
	if !ok {
		t.Fatal("returns page not registered")
	}
	if returns.Source.Table != "rma" || returns.Info.Path != "/t/returns" {
		t.Errorf("returns = %+v, want table rma at /t/returns", returns)
	}
	cols := returns.GridColumns()
	if cols[0].Kind != "link" || cols[1].BadgeTones["damaged"] != "danger" {
		t.Errorf("returns columns = %+v", cols)
	}
}

func TestApplyPages_Invalid(t *testing.T) {
	registerOrdersPage(t)

	tests := []struct {
		name string
		file PagesFile
	}{
		{"missing key", PagesFile{Pages: []PageOverride{{Label: "x"}}}},
		{"new page without columns", PagesFile{Pages: []PageOverride{{Key: "returns"}}}},
		{"column without id", PagesFile{Pages: []PageOverride{{Key: "orders", Columns: []ColumnSpec{{Title: "x"}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := Get("orders")
			if _, err := ApplyPages(&tt.file); err == nil {
				t.Fatal("ApplyPages() error = nil, want error")
			}
			after, _ := Get("orders")
			if after.Info.Label != before.Info.Label || len(after.Columns) != len(before.Columns) {
				t.Error("registry changed after a failed apply")
			}
		})
	}
}

func TestLoadPagesFile_UnknownKey(t *testing.T) {
	path := writePagesFile(t, "[[page]]\nkey = \"orders\"\nlabl = \"typo\"\n")
	if _, err := LoadPagesFile(path); err == nil || !strings.Contains(err.Error(), "labl") {
		t.Errorf("LoadPagesFile() error = %v, want unknown key labl", err)
	}
}

func TestEncodePages_RoundTrip(t *testing.T) {
	defs := []PageDefinition{{
		Info:    PageInfo{Key: "orders", Group: "Sales", Label: "Orders", Path: "/t/orders"},
		Columns: []ColumnSpec{{ID: "number", Title: "Order #", Sortable: true}},
		Source:  SourceSpec{Table: "orders"},
		Filters: FilterCaps{Date: true},
	}}

	var buf bytes.Buffer
	if err := EncodePages(&buf, defs); err != nil {
		t.Fatalf("EncodePages() error = %v", err)
	}

	file, err := LoadPagesFile(writePagesFile(t, buf.String()))
	if err != nil {
		t.Fatalf("LoadPagesFile(encoded) error = %v\n%s", err, buf.String())
	}
	if len(file.Pages) != 1 || file.Pages[0].Columns[0].Title != "Order #" || !file.Pages[0].Filters.Date {
		t.Errorf("decoded = %+v", file.Pages)
	}
}

func TestWatchPagesFile_Reloads(t *testing.T) {
	registerOrdersPage(t)
	path := writePagesFile(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := WatchPagesFile(ctx, path, logger); err != nil {
		t.Fatalf("WatchPagesFile() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[[page]]\nkey = \"orders\"\nlabel = \"Reloaded\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if def, _ := Get("orders"); def.Info.Label == "Reloaded" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("orders label was not reloaded from the pages file")
}
