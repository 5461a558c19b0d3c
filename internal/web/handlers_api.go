package web

import (
	"net/http"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

type pageSummary struct {
	core.PageInfo
	Columns []core.ColumnSpec `json:"columns"`
	Filters core.FilterCaps   `json:"filters"`
}

// handleListPages returns every registered page with its columns.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]pageSummary, len(defs))
	for i, def := range defs {
		out[i] = pageSummary{PageInfo: def.Info, Columns: def.Columns, Filters: def.Filters}
	}
	writeJSON(w, r, out)
}

type rowsResponse struct {
	Page       string               `json:"page"`
	Columns    []string             `json:"columns"`
	Rows       []grid.FlatRow       `json:"rows"`
	TotalRows  int                  `json:"total_rows"`
	Pagination *grid.PaginationInfo `json:"pagination"`
	Controls   *grid.Controls       `json:"controls,omitempty"`
}

// handlePageRows fetches one page with the table parameters in the query
// and returns the visible columns and flattened rows. The live filter
// applies when q is set.
func (s *Server) handlePageRows(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	if err := s.load(r.Context(), def, sess, mt, r.URL); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if text, ok := r.URL.Query()["q"]; ok {
		mt.table.Store().SetFilterText(text[0])
	}

	view := mt.table.Render(s.props(def, sess, mt))
	ids := make([]string, len(view.Visible))
	for i, col := range view.Visible {
		ids[i] = col.ID
	}
	writeJSON(w, r, rowsResponse{
		Page:       def.Info.Key,
		Columns:    ids,
		Rows:       view.Rows,
		TotalRows:  view.TotalRows,
		Pagination: mt.pagination,
		Controls:   view.Pagination,
	})
}

type statusResponse struct {
	Pages    int                      `json:"pages"`
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, statusResponse{
		Pages:    core.PageCount(),
		Sessions: s.mounts.Len(),
		Exports:  s.exports.Status(),
	})
}
