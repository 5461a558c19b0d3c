package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
	"github.com/JonMunkholm/fulfillment/internal/web/templates"
)

var (
	errUnknownColumn    = errors.New("unknown column")
	errColumnVisibility = errors.New("invalid column visibility")
)

// handleDashboard renders the page index.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.Dashboard(navGroups()),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondError(w, r, fmt.Errorf("render dashboard: %w", err), http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}

// navGroups returns every registered page grouped for the sidebar.
func navGroups() []templates.PageGroup {
	var groups []templates.PageGroup
	for _, name := range core.Groups() {
		defs := core.ByGroup(name)
		pages := make([]core.PageInfo, len(defs))
		for i, def := range defs {
			pages[i] = def.Info
		}
		groups = append(groups, templates.PageGroup{Name: name, Pages: pages})
	}
	return groups
}

// resolvePage returns the page named in the route, answering 404 itself
// when there is none.
func resolvePage(w http.ResponseWriter, r *http.Request) (core.PageDefinition, bool) {
	def, err := core.MustGet(chi.URLParam(r, "page"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return core.PageDefinition{}, false
	}
	return def, true
}

// openMount resolves the page and returns the caller's locked mount for it.
func (s *Server) openMount(w http.ResponseWriter, r *http.Request) (core.PageDefinition, *session, *mount, bool) {
	def, ok := resolvePage(w, r)
	if !ok {
		return def, nil, nil, false
	}
	sess := s.mounts.session(w, r)
	return def, sess, s.mounts.mount(sess, def, s.logger), true
}

// load parses the table query from u, fetches the page and records it on
// the mount. On failure the mount keeps its previous rows and pagination.
func (s *Server) load(ctx context.Context, def core.PageDefinition, sess *session, mt *mount, u *url.URL) error {
	q, err := grid.ParseQuery(u.Query())
	if err != nil {
		return err
	}
	if q.PerPage == 0 {
		q.PerPage = s.cfg.Table.DefaultPerPage
	}

	if def.Filters.Date && (q.From != nil || q.To != nil) {
		mt.table.Store().SetSelectedDates(q.DateRange())
	}
	if q.Cursor != "" {
		sess.cursors.Set(def.Info.Key, &q.Cursor)
	} else {
		sess.cursors.Set(def.Info.Key, nil)
	}

	page, err := s.source.FetchPage(ctx, def.Info.Key, q)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", def.Info.Key, err)
	}

	loaded := &url.URL{Path: def.Info.Path, RawQuery: u.RawQuery}
	mt.record(q, loaded, page)
	return nil
}

// props builds the table props for the mount's last fetch.
func (s *Server) props(def core.PageDefinition, sess *session, mt *mount) grid.Props {
	return grid.Props{
		Columns:          def.GridColumns(),
		TableData:        grid.TableData{Rows: mt.rows},
		Pagination:       mt.pagination,
		Loading:          !mt.fetched,
		ManageCursor:     sess.cursors.ForPage(def.Info.Key),
		ExportFileName:   def.ExportFileName(),
		HasDateFilter:    def.Filters.Date,
		HasSkuFilter:     def.Filters.SKU,
		HasPerPageFilter: def.Filters.PerPage,
		OpaqueFields:     s.opaqueFields(def),
		Query:            mt.query,
	}
}

// opaqueFields prefers the page's own list, then the configured default.
func (s *Server) opaqueFields(def core.PageDefinition) map[string]bool {
	if set := def.OpaqueSet(); set != nil {
		return set
	}
	return s.cfg.Table.OpaqueSet()
}

func (s *Server) pageData(def core.PageDefinition, mt *mount, view grid.View) templates.TablePageData {
	return templates.TablePageData{
		Page:        def.Info,
		View:        view,
		Query:       mt.query,
		Nav:         navGroups(),
		ReloadAfter: grid.PreviousReloadDelay,
	}
}

// redirect navigates the client to target: HX-Redirect for the grid
// script, 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownPage), errors.Is(err, errUnknownColumn):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidCursor), errors.Is(err, grid.ErrInvalidDate),
		errors.Is(err, errColumnVisibility):
		return http.StatusBadRequest
	case errors.Is(err, grid.ErrNextDisabled), errors.Is(err, grid.ErrPreviousDisabled):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyExports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
