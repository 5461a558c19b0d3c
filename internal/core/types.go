package core

import (
	"context"

	"github.com/JonMunkholm/fulfillment/internal/grid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PageInfo contains display information about a list screen.
type PageInfo struct {
	Key   string `json:"key" toml:"key"`     // Unique identifier: "orders"
	Group string `json:"group" toml:"group"` // Sidebar section: "Sales", "Inventory"
	Label string `json:"label" toml:"label"` // Display name: "Orders"
	Path  string `json:"path" toml:"-"`      // Browser path, always PagePath(Key)

	// ExportFileName names downloads of this page; defaults to Label.
	ExportFileName string `json:"export_file_name,omitempty" toml:"export_file_name"`
}

// ColumnSpec declares one column of a page. It converts to grid.Column.
type ColumnSpec struct {
	ID          string            `json:"id" toml:"id"`
	Title       string            `json:"title" toml:"title"`
	Identifier  string            `json:"identifier" toml:"identifier"`
	Kind        grid.RendererKind `json:"kind,omitempty" toml:"kind"`
	Sortable    bool              `json:"sortable" toml:"sortable"`
	Hidden      bool              `json:"hidden" toml:"hidden"` // initial Omit flag
	Width       string            `json:"width,omitempty" toml:"width"`
	LinkPattern string            `json:"link_pattern,omitempty" toml:"link_pattern"`
	DateLayout  string            `json:"date_layout,omitempty" toml:"date_layout"`
	BadgeTones  map[string]string `json:"badge_tones,omitempty" toml:"badge_tones"`
}

// Column converts c to an engine column.
func (c ColumnSpec) Column() grid.Column {
	kind := c.Kind
	if !kind.Valid() {
		kind = grid.RenderText
	}
	identifier := c.Identifier
	if identifier == "" {
		identifier = c.ID
	}
	return grid.Column{
		ID:          c.ID,
		Name:        c.Title,
		Identifier:  identifier,
		Sortable:    c.Sortable,
		Omit:        c.Hidden,
		Width:       c.Width,
		Kind:        kind,
		LinkPattern: c.LinkPattern,
		DateLayout:  c.DateLayout,
		BadgeTones:  c.BadgeTones,
	}
}

// SourceSpec locates a page's records. Every source table has a bigint id
// (the cursor key), a jsonb document and the filter columns.
type SourceSpec struct {
	Table         string `json:"table" toml:"table"`
	IDColumn      string `json:"id_column,omitempty" toml:"id_column"`           // default "id"
	DataColumn    string `json:"data_column,omitempty" toml:"data_column"`       // default "data"
	CreatedColumn string `json:"created_column,omitempty" toml:"created_column"` // default "created_at"
	SKUColumn     string `json:"sku_column,omitempty" toml:"sku_column"`         // default "sku"
}

func (s SourceSpec) idColumn() string      { return orDefault(s.IDColumn, "id") }
func (s SourceSpec) dataColumn() string    { return orDefault(s.DataColumn, "data") }
func (s SourceSpec) createdColumn() string { return orDefault(s.CreatedColumn, "created_at") }
func (s SourceSpec) skuColumn() string     { return orDefault(s.SKUColumn, "sku") }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FilterCaps lists the server-side filters a page offers.
type FilterCaps struct {
	Date    bool `json:"date" toml:"date"`
	SKU     bool `json:"sku" toml:"sku"`
	PerPage bool `json:"per_page" toml:"per_page"`
}

// PageDefinition contains everything needed to serve a list screen.
type PageDefinition struct {
	Info    PageInfo
	Columns []ColumnSpec
	Source  SourceSpec
	Filters FilterCaps

	// OpaqueFields are never descended while flattening. Nil means
	// grid.DefaultOpaqueFields.
	OpaqueFields []string
}

// GridColumns converts the page's column specs for the engine.
func (d PageDefinition) GridColumns() []grid.Column {
	cols := make([]grid.Column, len(d.Columns))
	for i, spec := range d.Columns {
		cols[i] = spec.Column()
	}
	return cols
}

// OpaqueSet returns the opaque fields as a set, or nil for the default.
func (d PageDefinition) OpaqueSet() map[string]bool {
	if d.OpaqueFields == nil {
		return nil
	}
	set := make(map[string]bool, len(d.OpaqueFields))
	for _, f := range d.OpaqueFields {
		set[f] = true
	}
	return set
}

// ExportFileName returns the base name for spreadsheet downloads.
func (d PageDefinition) ExportFileName() string {
	if d.Info.ExportFileName != "" {
		return d.Info.ExportFileName
	}
	return d.Info.Label
}

// PageResult is one fetched page of raw records.
type PageResult struct {
	Rows       []grid.RawRow
	Pagination grid.PaginationInfo
	PerPage    int
}

// RecordSource fetches raw records for a page. Implemented by *Service.
type RecordSource interface {
	FetchPage(ctx context.Context, pageKey string, q grid.TableQuery) (*PageResult, error)
}
