package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
	"github.com/JonMunkholm/fulfillment/internal/logging"
	"github.com/JonMunkholm/fulfillment/internal/web/templates"
)

// handleTableView fetches the page named by the URL and renders it.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	if err := s.load(r.Context(), def, sess, mt, r.URL); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	view := mt.table.Render(s.props(def, sess, mt))
	if err := templates.TablePage(s.pageData(def, mt, view)).Render(r.Context(), w); err != nil {
		requestLogger(r).Error("render table", "page", def.Info.Key, "error", err)
	}
}

// handleSearch sets the live filter text and re-renders the grid from the
// rows already fetched.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	mt.table.Store().SetFilterText(r.PostForm.Get("q"))

	s.renderGrid(w, r, def, sess, mt)
}

// handleFilters submits the date/SKU/per-page form: a full navigation to the
// page path with the filter parameters set.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	q, err := grid.ParseQuery(r.PostForm)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if !def.Filters.Date {
		q.From, q.To = nil, nil
	} else if q.From != nil || q.To != nil {
		mt.table.Store().SetSelectedDates(q.DateRange())
	}
	if !def.Filters.SKU {
		q.SKU = ""
	}
	if !def.Filters.PerPage {
		q.PerPage = 0
	}
	sess.cursors.Set(def.Info.Key, nil)

	target := grid.FilterURL(def.Info.Path, q)
	logging.WithFields(r.Context(), "page", def.Info.Key, "session", sess.id).
		Info("filters applied", "target", target)
	redirect(w, r, target)
}

// handleResetFilters clears the server-side filters by navigating to the
// bare page path.
func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	mt.table.Store().SetSelectedDates(grid.TodayRange(s.mounts.now()))
	sess.cursors.Set(def.Info.Key, nil)

	redirect(w, r, grid.ResetURL(def.Info.Path))
}

// handleNext follows the end cursor of the last fetch.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	nav, err := mt.table.Next(s.props(def, sess, mt), mt.currentURL(def))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.WithFields(r.Context(), "page", def.Info.Key, "session", sess.id).
		Info("next page", "target", nav.URL)
	redirect(w, r, nav.URL)
}

// handleColumns toggles column visibility by display name, or shows every
// column when show_all is set.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	def, sess, mt, ok := s.openMount(w, r)
	if !ok {
		return
	}
	defer mt.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	logger := logging.WithFields(r.Context(), "page", def.Info.Key, "session", sess.id)
	store := mt.table.Store()
	mt.table.SyncColumns(def.GridColumns())

	if r.PostForm.Get("show_all") == "true" {
		grid.ShowAll(store)
		logger.Info("all columns shown")
		s.renderGrid(w, r, def, sess, mt)
		return
	}

	name := r.PostForm.Get("column")
	visible, err := strconv.ParseBool(r.PostForm.Get("visible"))
	if err != nil {
		err = fmt.Errorf("%w %q", errColumnVisibility, r.PostForm.Get("visible"))
		respondError(w, r, err, statusFor(err))
		return
	}
	if grid.ToggleVisible(store, name, visible) == 0 {
		err := fmt.Errorf("%w: %s", errUnknownColumn, name)
		respondError(w, r, err, statusFor(err))
		return
	}

	logger.Info("column visibility changed", "column", name, "visible", visible)
	s.renderGrid(w, r, def, sess, mt)
}

// renderGrid answers a grid mutation: the grid partial for the grid
// script, a redirect back to the page otherwise.
func (s *Server) renderGrid(w http.ResponseWriter, r *http.Request, def core.PageDefinition, sess *session, mt *mount) {
	if !isHTMX(r) {
		redirect(w, r, mt.currentURL(def).String())
		return
	}

	view := mt.table.Render(s.props(def, sess, mt))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.GridSection(s.pageData(def, mt, view)).Render(r.Context(), w); err != nil {
		requestLogger(r).Error("render grid", "page", def.Info.Key, "error", err)
	}
}
