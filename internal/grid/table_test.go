package grid

import (
	"bytes"
	"net/url"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func tableProps() Props {
	return Props{
		Columns: []Column{
			{ID: "order_no", Name: "Order", Identifier: "order_no", Sortable: true},
			{ID: "sku", Name: "SKU", Identifier: "sku"},
			{ID: "total", Name: "Total", Identifier: "total_price", Sortable: true},
		},
		TableData: TableData{Rows: []RawRow{
			{"order_no": "SO-2", "item": map[string]any{"sku": "A5"}, "total_price": 50.0},
			{"order_no": "SO-1", "item": map[string]any{"sku": "B2"}, "total_price": 20.0},
			{"order_no": "SO-3", "item": map[string]any{"sku": "C9"}, "total_price": 5.0, "shipments": []any{map[string]any{"sku": "X"}}},
		}},
		Pagination:     &PaginationInfo{HasNextPage: true, EndCursor: strPtr("c2")},
		ExportFileName: "Orders",
		HasDateFilter:  true,
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable(NewStore(time.Now()), nil)

	view := table.Render(tableProps())

	if len(view.Rows) != 3 || view.TotalRows != 3 {
		t.Fatalf("rows = %d total = %d, want 3/3", len(view.Rows), view.TotalRows)
	}
	if view.Rows[2]["sku"] != "C9" {
		t.Errorf("opaque shipments leaked into flattened row: sku = %v", view.Rows[2]["sku"])
	}
	if len(view.Visible) != 3 {
		t.Errorf("visible columns = %d, want 3", len(view.Visible))
	}
	for _, c := range view.Columns {
		if c.Width == "" {
			t.Errorf("column %s has no width", c.ID)
		}
	}
	if view.Pagination == nil || !view.Pagination.NextEnabled || view.Pagination.PreviousEnabled {
		t.Errorf("pagination = %+v, want next only", view.Pagination)
	}
	if !view.Filters.HasDateFilter || view.Filters.From == "" {
		t.Errorf("filter form = %+v, want date filter with default from", view.Filters)
	}
	if view.ExportFileName != "Orders" {
		t.Errorf("ExportFileName = %q, want Orders", view.ExportFileName)
	}
}

func TestTable_RenderAppliesLiveFilterAndVisibility(t *testing.T) {
	store := NewStore(time.Now())
	table := NewTable(store, nil)
	props := tableProps()

	table.Render(props)
	store.SetFilterText("b2")
	ToggleVisible(store, "Total", false)

	view := table.Render(props)

	if len(view.Rows) != 1 || view.Rows[0]["order_no"] != "SO-1" {
		t.Errorf("filtered rows = %v, want only SO-1", view.Rows)
	}
	if view.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", view.TotalRows)
	}
	if len(view.Visible) != 2 {
		t.Errorf("visible = %d, want 2 after hiding Total", len(view.Visible))
	}
	if view.FilterText != "b2" {
		t.Errorf("FilterText = %q, want b2", view.FilterText)
	}
}

func TestTable_RenderSorts(t *testing.T) {
	table := NewTable(NewStore(time.Now()), nil)
	props := tableProps()
	props.Query = TableQuery{Sort: "total", Desc: false}

	view := table.Render(props)

	var got []any
	for _, r := range view.Rows {
		got = append(got, r["order_no"])
	}
	if got[0] != "SO-3" || got[1] != "SO-1" || got[2] != "SO-2" {
		t.Errorf("sorted order = %v, want [SO-3 SO-1 SO-2]", got)
	}
	if view.SortKey != "total" {
		t.Errorf("SortKey = %q, want total", view.SortKey)
	}

	props.Query = TableQuery{Sort: "sku"}
	view = table.Render(props)
	if view.SortKey != "" {
		t.Errorf("unsortable column should not sort, SortKey = %q", view.SortKey)
	}
}

func TestTable_SyncColumnsRaisesLoadingFlag(t *testing.T) {
	store := NewStore(time.Now())
	table := NewTable(store, nil)

	var seen []bool
	store.Subscribe(func(c StoreChange) {
		if c == ChangeLoadingColumns {
			seen = append(seen, store.LoadingColumns())
		}
	})

	if !table.SyncColumns(tableProps().Columns) {
		t.Fatal("SyncColumns() = false, want true on first dispatch")
	}
	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("loading flag transitions = %v, want [true false]", seen)
	}
	if store.LoadingColumns() {
		t.Error("LoadingColumns = true after sync, want false")
	}
}

func TestTable_NoPagination(t *testing.T) {
	table := NewTable(NewStore(time.Now()), nil)
	props := tableProps()
	props.Pagination = nil

	if view := table.Render(props); view.Pagination != nil {
		t.Errorf("Pagination = %+v, want nil", view.Pagination)
	}
}

func TestTable_Next(t *testing.T) {
	table := NewTable(NewStore(time.Now()), nil)
	props := tableProps()

	var stored string
	props.ManageCursor = CursorManagerFunc(func(c *string) { stored = *c })

	current, _ := url.Parse("/orders?sku=A")
	nav, err := table.Next(props, current)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if nav.URL != "/orders?sku=A&cursor=c2" {
		t.Errorf("URL = %q", nav.URL)
	}
	if stored != "c2" {
		t.Errorf("stored = %q, want c2", stored)
	}
}

func TestTable_ExportMatchesGridRows(t *testing.T) {
	store := NewStore(time.Now())
	table := NewTable(store, NewExporter(ExportOptions{Prefix: "FF", IncludeHidden: true}))
	props := tableProps()

	table.Render(props)
	store.SetFilterText("so-")
	ToggleVisible(store, "Total", false)

	var buf bytes.Buffer
	name, err := table.Export(&buf, props)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "FF - Orders.xlsx" {
		t.Errorf("name = %q", name)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ExportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// title + header + 3 data rows
	if len(rows) != 5 {
		t.Fatalf("sheet rows = %d, want 5", len(rows))
	}
	if got := rows[1]; len(got) != 3 || got[2] != "Total" {
		t.Errorf("header = %v, want hidden Total included", got)
	}
	if rows[2][1] != "A5" {
		t.Errorf("first data row sku = %q, want A5", rows[2][1])
	}
}
