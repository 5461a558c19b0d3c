// Package grid is the tabular-data presentation engine shared by every list
// screen of the back office (orders, products, purchase orders, shipping
// labels, reports, users).
//
// The engine never fetches data. A caller hands it a column list, a slice of
// raw records of arbitrary shape and the pagination metadata of the fetch;
// the engine flattens the records, applies the live text filter, estimates
// column widths, drives cursor pagination and serializes the same projection
// to a spreadsheet.
//
// # Flattening
//
// Nested records are collapsed into a single-level [FlatRow] keyed by leaf
// property name (not a dotted path), so colliding leaf names overwrite each
// other. Fields listed as opaque are assigned as-is and never descended:
//
//	flat := grid.Flatten(rows, grid.DefaultOpaqueFields())
//
// # State
//
// Each mounted table owns one [Store] holding filter text, the selected date
// range and the column list with per-column visibility. Stores are never
// shared between pages. Cursor state is not kept here; it belongs to the
// caller through a [CursorManager].
//
// # Pagination
//
// [Paginator] only moves forward by cursor. Next writes the end cursor back to
// the caller and navigates to the current URL with a cursor parameter;
// Previous replays browser history and forces a reload.
package grid
