// Package core provides the caller side of the back-office list screens.
// This package has no UI dependencies and can be used by any frontend.
//
// The table engine in package grid never fetches data. Everything it needs
// on a render comes from here:
//
//   - Page Definitions: registered via the registry, each list screen
//     (orders, products, purchase orders, shipping labels, reports, users)
//     declares its columns, its record source and which server-side filters
//     it offers.
//   - Service: fetches one page of raw records with forward cursor
//     pagination and returns the grid.PaginationInfo the engine expects.
//   - CursorStore: the caller-owned cursor store the paginator writes to.
//   - ExportLimiter: bounds concurrent spreadsheet serializations.
//
// # Page Registry
//
// Pages are registered at init time using [Register]:
//
//	core.Register(PageDefinition{
//	    Info: PageInfo{Key: "orders", Group: "Sales", Label: "Orders"},
//	    Columns: []ColumnSpec{
//	        {ID: "order_no", Title: "Order", Identifier: "order_no", Sortable: true},
//	        {ID: "status", Title: "Status", Identifier: "status", Kind: grid.RenderBadge},
//	    },
//	    Source: SourceSpec{Table: "orders"},
//	})
//
// Column overrides loaded from the pages file are applied with [Upsert].
//
// # Cursor Pagination
//
// Records are read in id order. The cursor handed to the browser is an
// opaque encoding of the last id of the page ([EncodeCursor]); a request with
// a cursor reads the records after it. There is no backward cursor: the
// previous page is reached through browser history.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB004: Database errors (connections, timeouts, missing tables)
//   - QRY001-QRY002: Query errors (dates, undecodable records)
//   - PAG001-PAG003: Pagination errors (bad cursors, disabled controls)
//   - EXP001-EXP002: Export errors (serialization, busy)
//   - TBL001-TBL003: Page and column errors
//   - RATE001: Rate limit
package core
