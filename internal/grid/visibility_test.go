package grid

import (
	"reflect"
	"testing"
	"time"
)

func TestToggleVisible_RoundTrip(t *testing.T) {
	s := NewStore(time.Now())
	original := testColumns()
	original[2].Omit = true
	s.SetTableColumns(original)

	if n := ToggleVisible(s, "SKU", false); n != 1 {
		t.Fatalf("ToggleVisible matched %d columns, want 1", n)
	}
	if !s.Columns()[1].Omit {
		t.Fatal("SKU should be hidden")
	}

	ToggleVisible(s, "SKU", true)

	if got := s.Columns(); !reflect.DeepEqual(got, original) {
		t.Errorf("after round trip columns = %+v, want %+v", got, original)
	}
}

func TestToggleVisible_MatchesByDisplayName(t *testing.T) {
	s := NewStore(time.Now())
	s.SetTableColumns([]Column{
		{ID: "ship_date", Name: "Date", Identifier: "shipped_at"},
		{ID: "order_date", Name: "Date", Identifier: "ordered_at"},
		{ID: "sku", Name: "SKU", Identifier: "sku"},
	})

	if n := ToggleVisible(s, "Date", false); n != 2 {
		t.Errorf("ToggleVisible matched %d columns, want 2", n)
	}

	cols := s.Columns()
	if !cols[0].Omit || !cols[1].Omit {
		t.Error("both columns named Date should be hidden")
	}
	if cols[2].Omit {
		t.Error("SKU should stay visible")
	}

	if n := ToggleVisible(s, "date", false); n != 0 {
		t.Errorf("display name match should be exact, matched %d", n)
	}
}

func TestShowAll(t *testing.T) {
	s := NewStore(time.Now())
	cols := testColumns()
	for i := range cols {
		cols[i].Omit = true
	}
	s.SetTableColumns(cols)

	ShowAll(s)

	if got := VisibleColumns(s.Columns()); len(got) != 3 {
		t.Errorf("visible columns = %d, want 3", len(got))
	}
}
