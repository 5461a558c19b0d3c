package grid

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFilter_EmptyTextReturnsSameSlice(t *testing.T) {
	rows := []FlatRow{{"sku": "A5"}, {"sku": "B2"}}

	got := Filter(rows, "")

	if len(got) != len(rows) || &got[0] != &rows[0] {
		t.Error("Filter(rows, \"\") did not return the input slice")
	}
}

func TestFilter_StringAndNumberFields(t *testing.T) {
	rows := []FlatRow{
		{"sku": "A5", "total_price": 50},
		{"sku": "B2", "total_price": 20},
	}

	tests := []struct {
		text string
		want string
	}{
		{text: "5", want: "A5"},  // both fields of A5 contain it
		{text: "a5", want: "A5"}, // string field only
		{text: "50", want: "A5"}, // number field only
		{text: "20", want: "B2"}, // number field only
		{text: "b", want: "B2"},  // string field only
	}

	for _, tt := range tests {
		got := Filter(rows, tt.text)
		if len(got) != 1 || got[0]["sku"] != tt.want {
			t.Errorf("Filter(%q) = %v, want only %s", tt.text, got, tt.want)
		}
	}

	if got := Filter(rows, "9"); len(got) != 0 {
		t.Errorf("Filter(\"9\") = %v, want no rows", got)
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	rows := []FlatRow{
		{"name": "abc widget"},
		{"name": "ABC gadget"},
		{"name": "other"},
	}

	upper := Filter(rows, "ABC")
	lower := Filter(rows, "abc")

	if !reflect.DeepEqual(upper, lower) {
		t.Errorf("Filter(ABC) = %v, Filter(abc) = %v, want equal", upper, lower)
	}
	if len(upper) != 2 {
		t.Errorf("matched %d rows, want 2", len(upper))
	}
}

func TestFilter_OtherTypesNeverMatch(t *testing.T) {
	rows := []FlatRow{
		{"active": true},
		{"tags": []any{"true"}},
		{"meta": map[string]any{"x": "true"}},
		{"note": nil},
	}

	if got := Filter(rows, "true"); len(got) != 0 {
		t.Errorf("Filter(true) = %v, want no matches", got)
	}
}

func TestFilter_NumericKinds(t *testing.T) {
	tests := []struct {
		value any
		text  string
	}{
		{int64(1234), "23"},
		{uint16(808), "80"},
		{float64(12.5), "2.5"},
		{float32(0.25), ".25"},
		{json.Number("9001"), "900"},
	}

	for _, tt := range tests {
		rows := []FlatRow{{"v": tt.value}}
		if got := Filter(rows, tt.text); len(got) != 1 {
			t.Errorf("Filter(%T %v, %q) matched %d rows, want 1", tt.value, tt.value, tt.text, len(got))
		}
	}
}

func TestFilter_NeverGrows(t *testing.T) {
	rows := []FlatRow{
		{"a": "x"}, {"a": "xy"}, {"a": 1}, {"b": true}, {},
	}

	for _, text := range []string{"x", "y", "1", "zzz", "X"} {
		if got := Filter(rows, text); len(got) > len(rows) {
			t.Errorf("Filter(%q) returned %d rows from %d", text, len(got), len(rows))
		}
	}
}
