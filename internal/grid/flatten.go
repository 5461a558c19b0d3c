package grid

import "sort"

// RawRow is a backend record of unknown shape and depth, as decoded from JSON.
type RawRow = map[string]any

// FlatRow is the single-level projection of a RawRow used uniformly by the
// live filter, grid rendering and export.
type FlatRow = map[string]any

// DefaultOpaqueFields returns the fields that are never descended into by
// default. Shipment lists are rendered by their own sub-table.
func DefaultOpaqueFields() map[string]bool {
	return map[string]bool{"shipments": true}
}

// Flatten collapses every row into a FlatRow keyed by innermost property
// name. Nested objects are descended unless their key is opaque; slices and
// opaque values are assigned as-is under their key, never copied.
//
// Parent path segments are discarded, so leaf names that appear in several
// branches overwrite each other. Keys are visited in sorted order at every
// level, which makes the winner of a collision deterministic: the branch
// whose path sorts last wins.
func Flatten(rows []RawRow, opaque map[string]bool) []FlatRow {
	out := make([]FlatRow, len(rows))
	for i, row := range rows {
		out[i] = FlattenRow(row, opaque)
	}
	return out
}

// FlattenRow flattens a single record. Flattening an already flat row
// returns an equal map.
func FlattenRow(row RawRow, opaque map[string]bool) FlatRow {
	flat := make(FlatRow, len(row))
	flattenInto(flat, row, opaque)
	return flat
}

func flattenInto(dst FlatRow, src map[string]any, opaque map[string]bool) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := src[key]
		if nested, ok := value.(map[string]any); ok && nested != nil && !opaque[key] {
			flattenInto(dst, nested, opaque)
			continue
		}
		dst[key] = value
	}
}
