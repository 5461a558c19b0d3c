package grid

import (
	"io"
	"net/url"
)

// TableData carries the raw records of one fetch.
type TableData struct {
	Rows []RawRow `json:"rows"`
}

// Props is everything a caller supplies to a table on every render. Nothing
// here is cached between renders.
type Props struct {
	Columns          []Column
	TableData        TableData
	Pagination       *PaginationInfo
	Loading          bool
	ManageCursor     CursorManager
	ExportFileName   string
	HasDateFilter    bool
	HasSkuFilter     bool
	HasPerPageFilter bool

	// OpaqueFields are never descended while flattening. Nil means
	// DefaultOpaqueFields.
	OpaqueFields map[string]bool

	// Query is the filter state read from the current URL.
	Query TableQuery
}

// DefaultExportFileName is used when Props.ExportFileName is empty.
const DefaultExportFileName = "export"

// FilterForm is the state of the date/SKU/per-page filter form.
type FilterForm struct {
	HasDateFilter    bool
	HasSkuFilter     bool
	HasPerPageFilter bool
	SKU              string
	From             string
	To               string
	PerPage          int
}

// View is the render-ready projection of a table.
type View struct {
	Columns        []Column // every column, with widths, for the visibility menu
	Visible        []Column // columns rendered in the grid
	Rows           []FlatRow
	TotalRows      int // rows in the fetch, before the live filter
	FilterText     string
	Loading        bool
	Pagination     *Controls // nil when the caller paginates nothing
	Filters        FilterForm
	SortKey        string
	SortDesc       bool
	ExportFileName string
}

// Table composes the engine for one mounted list screen: the state store,
// column dispatch, the live filter, width estimation, pagination and export.
type Table struct {
	store      *Store
	dispatcher ColumnDispatcher
	exporter   *Exporter
}

// NewTable returns a table over store exporting with exporter.
func NewTable(store *Store, exporter *Exporter) *Table {
	if exporter == nil {
		exporter = NewExporter(ExportOptions{IncludeHidden: true})
	}
	return &Table{store: store, exporter: exporter}
}

// Store returns the table's state store.
func (t *Table) Store() *Store {
	return t.store
}

// Exporter returns the table's exporter.
func (t *Table) Exporter() *Exporter {
	return t.exporter
}

// SyncColumns dispatches cols to the store unless their id sequence is the
// one already dispatched, preserving visibility flags across renders. It
// reports whether the store was written. Subscribers see the column loading
// flag raised for the duration of the dispatch.
func (t *Table) SyncColumns(cols []Column) bool {
	t.store.SetLoadingColumns(true)
	defer t.store.SetLoadingColumns(false)
	return t.dispatcher.Dispatch(t.store, cols)
}

// Project flattens the fetched rows, applies the live filter and the
// requested sort. Grid and export both consume this projection.
func (t *Table) Project(props Props) []FlatRow {
	rows := Flatten(props.TableData.Rows, opaqueFields(props))
	rows = Filter(rows, t.store.FilterText())
	if props.Query.Sort != "" {
		if col, ok := FindColumn(t.store.Columns(), props.Query.Sort); ok {
			rows = SortRows(rows, col, props.Query.Desc)
		}
	}
	return rows
}

// Render syncs the column list and returns the view for props.
func (t *Table) Render(props Props) View {
	t.SyncColumns(props.Columns)

	all := Flatten(props.TableData.Rows, opaqueFields(props))
	cols := EstimateWidths(t.store.Columns(), all)

	rows := Filter(all, t.store.FilterText())
	sortKey := ""
	if props.Query.Sort != "" {
		if col, ok := FindColumn(cols, props.Query.Sort); ok && col.Sortable {
			rows = SortRows(rows, col, props.Query.Desc)
			sortKey = col.ID
		}
	}

	view := View{
		Columns:        cols,
		Visible:        VisibleColumns(cols),
		Rows:           rows,
		TotalRows:      len(all),
		FilterText:     t.store.FilterText(),
		Loading:        props.Loading,
		Filters:        t.filterForm(props),
		SortKey:        sortKey,
		SortDesc:       sortKey != "" && props.Query.Desc,
		ExportFileName: exportFileName(props),
	}
	if props.Pagination != nil {
		controls := t.Paginator(props).Controls()
		view.Pagination = &controls
	}
	return view
}

func (t *Table) filterForm(props Props) FilterForm {
	form := FilterForm{
		HasDateFilter:    props.HasDateFilter,
		HasSkuFilter:     props.HasSkuFilter,
		HasPerPageFilter: props.HasPerPageFilter,
		SKU:              props.Query.SKU,
		PerPage:          props.Query.PerPage,
	}
	dates := t.store.SelectedDates()
	if dates.From != nil {
		form.From = *dates.From
	}
	if dates.To != nil {
		form.To = *dates.To
	}
	return form
}

// Paginator returns the cursor paginator for props.
func (t *Table) Paginator(props Props) *Paginator {
	var info PaginationInfo
	if props.Pagination != nil {
		info = *props.Pagination
	}
	return NewPaginator(info, props.ManageCursor)
}

// Next runs the Next transition against the current URL.
func (t *Table) Next(props Props, current *url.URL) (Navigation, error) {
	return t.Paginator(props).Next(current)
}

// Export writes the projected rows with the store's column list to w and
// returns the download file name.
func (t *Table) Export(w io.Writer, props Props) (string, error) {
	t.SyncColumns(props.Columns)
	return t.exporter.Export(w, t.Project(props), t.store.Columns(), exportFileName(props))
}

func opaqueFields(props Props) map[string]bool {
	if props.OpaqueFields == nil {
		return DefaultOpaqueFields()
	}
	return props.OpaqueFields
}

func exportFileName(props Props) string {
	if props.ExportFileName == "" {
		return DefaultExportFileName
	}
	return props.ExportFileName
}
