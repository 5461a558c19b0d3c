package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/fulfillment/internal/config"
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// fakeSource serves numbered shipment records, pageSize per page.
type fakeSource struct {
	mu      sync.Mutex
	total   int
	queries []grid.TableQuery
	err     error
}

func (f *fakeSource) FetchPage(ctx context.Context, pageKey string, q grid.TableQuery) (*core.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if _, err := core.MustGet(pageKey); err != nil {
		return nil, err
	}

	start := int64(0)
	if q.Cursor != "" {
		id, err := core.DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		start = id
	}
	perPage := q.PerPage
	if perPage == 0 {
		perPage = core.DefaultPerPage
	}

	var rows []grid.RawRow
	for id := start + 1; id <= int64(f.total) && len(rows) < perPage; id++ {
		rows = append(rows, grid.RawRow{
			"id":     float64(id),
			"number": "SH-" + strconv.FormatInt(id, 10),
			"carrier": map[string]any{
				"name": carrierFor(id),
			},
		})
	}

	result := &core.PageResult{
		Rows:    rows,
		PerPage: perPage,
		Pagination: grid.PaginationInfo{
			HasNextPage:     start+int64(len(rows)) < int64(f.total),
			HasPreviousPage: q.Cursor != "",
		},
	}
	if len(rows) > 0 {
		end := core.EncodeCursor(start + int64(len(rows)))
		result.Pagination.EndCursor = &end
	}
	return result, nil
}

func (f *fakeSource) lastQuery() grid.TableQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return grid.TableQuery{}
	}
	return f.queries[len(f.queries)-1]
}

func carrierFor(id int64) string {
	if id%2 == 0 {
		return "DHL"
	}
	return "UPS"
}

func registerShipmentsPage(t *testing.T) core.PageDefinition {
	t.Helper()
	core.Upsert(core.PageDefinition{
		Info: core.PageInfo{Key: "test_shipments", Group: "Logistics", Label: "Shipments"},
		Columns: []core.ColumnSpec{
			{ID: "number", Title: "Shipment", Sortable: true},
			{ID: "name", Title: "Carrier"},
		},
		Filters: core.FilterCaps{Date: true, SKU: true, PerPage: true},
	})
	def, _ := core.Get("test_shipments")
	return def
}

func testConfig() *config.Config {
	return &config.Config{
		Table: config.TableConfig{
			DefaultPerPage: 10,
			OpaqueFields:   []string{"shipments"},
			MountTTL:       time.Minute,
		},
		Export: config.ExportConfig{
			Prefix:        "Fulfillment",
			IncludeHidden: true,
			MaxConcurrent: 2,
			MaxWaitTime:   50 * time.Millisecond,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, source core.RecordSource) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(testConfig(), source, nil, logger)
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	s      *Server
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.s.Router().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

func TestDashboard(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{})}

	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Logistics", `href="/t/test_shipments"`, "Shipments"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestTableView(t *testing.T) {
	registerShipmentsPage(t)
	src := &fakeSource{total: 3}
	c := &client{t: t, s: newTestServer(t, src)}

	rec := c.get("/t/test_shipments")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"SH-1", "SH-3", "DHL", `id="grid"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if c.cookie == nil {
		t.Error("session cookie not set")
	}
	if got := src.lastQuery().PerPage; got != 10 {
		t.Errorf("PerPage = %d, want configured default 10", got)
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
		t.Errorf("CSP = %q", csp)
	}
}

func TestTableView_Errors(t *testing.T) {
	registerShipmentsPage(t)

	tests := []struct {
		name   string
		target string
		source *fakeSource
		status int
	}{
		{"unknown page", "/t/nope", &fakeSource{}, http.StatusNotFound},
		{"invalid date", "/t/test_shipments?from=2024-01-01", &fakeSource{}, http.StatusBadRequest},
		{"invalid cursor", "/t/test_shipments?cursor=%21%21", &fakeSource{}, http.StatusBadRequest},
		{"source failure", "/t/test_shipments", &fakeSource{err: errors.New("connection refused")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &client{t: t, s: newTestServer(t, tt.source)}
			rec := c.get(tt.target)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestSearch_FiltersCachedRows(t *testing.T) {
	registerShipmentsPage(t)
	src := &fakeSource{total: 4}
	c := &client{t: t, s: newTestServer(t, src)}

	c.get("/t/test_shipments")
	fetches := len(src.queries)

	rec := c.post("/t/test_shipments/search", url.Values{"q": {"dhl"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "SH-2") || !strings.Contains(body, "SH-4") {
		t.Errorf("filtered grid missing DHL rows: %s", body)
	}
	if strings.Contains(body, "SH-1<") || strings.Contains(body, "SH-3<") {
		t.Errorf("filtered grid kept UPS rows: %s", body)
	}
	if strings.Contains(body, "<html") {
		t.Error("search returned a full page, want the grid partial")
	}
	if len(src.queries) != fetches {
		t.Errorf("search refetched: %d queries, want %d", len(src.queries), fetches)
	}
}

func TestFilters_RedirectsToFilterURL(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{total: 30})}

	c.get("/t/test_shipments")
	form := url.Values{"sku": {"AB-1"}, "from": {"2024/03/01"}, "to": {"2024/03/31"}, "per_page": {"50"}}
	rec := c.post("/t/test_shipments/filters", form, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/t/test_shipments" {
		t.Errorf("path = %q", loc.Path)
	}
	q := loc.Query()
	if q.Get("sku") != "AB-1" || q.Get("from") != "2024/03/01" || q.Get("to") != "2024/03/31" || q.Get("per_page") != "50" {
		t.Errorf("query = %v", q)
	}
	if q.Has("cursor") {
		t.Error("filter submit kept the cursor")
	}
}

func TestResetFilters(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{total: 30})}

	rec := c.post("/t/test_shipments/filters/reset", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/t/test_shipments" {
		t.Errorf("HX-Redirect = %q, want bare path", got)
	}
}

func TestNext(t *testing.T) {
	registerShipmentsPage(t)
	src := &fakeSource{total: 25}
	c := &client{t: t, s: newTestServer(t, src)}

	c.get("/t/test_shipments?sku=X&per_page=10")
	rec := c.post("/t/test_shipments/next", nil, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Query().Get("cursor") != core.EncodeCursor(10) {
		t.Errorf("cursor = %q, want %q", loc.Query().Get("cursor"), core.EncodeCursor(10))
	}
	if loc.Query().Get("sku") != "X" || loc.Query().Get("per_page") != "10" {
		t.Errorf("next dropped parameters: %v", loc.Query())
	}

	c.get(loc.String())
	if got := src.lastQuery().Cursor; got != core.EncodeCursor(10) {
		t.Errorf("second fetch cursor = %q", got)
	}

	c.get("/t/test_shipments?cursor=" + core.EncodeCursor(20))
	rec = c.post("/t/test_shipments/next", nil, false)
	if rec.Code != http.StatusConflict {
		t.Errorf("next on last page: status = %d, want 409", rec.Code)
	}
}

func TestColumns(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{total: 2})}
	c.get("/t/test_shipments")

	rec := c.post("/t/test_shipments/columns", url.Values{"column": {"Carrier"}, "visible": {"false"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<th") && strings.Contains(rec.Body.String(), ">Carrier</th>") {
		t.Error("hidden column still rendered as header")
	}

	rec = c.post("/t/test_shipments/columns", url.Values{"show_all": {"true"}}, true)
	if !strings.Contains(rec.Body.String(), "DHL") {
		t.Error("show all did not restore the carrier column")
	}

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"unknown column", url.Values{"column": {"Nope"}, "visible": {"true"}}, http.StatusNotFound},
		{"bad visibility", url.Values{"column": {"Carrier"}, "visible": {"maybe"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.post("/t/test_shipments/columns", tt.form, true)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("HX-Retarget"); got != "#notice" {
				t.Errorf("HX-Retarget = %q, want #notice", got)
			}
			if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
				t.Errorf("HX-Reswap = %q, want innerHTML", got)
			}
			if !strings.Contains(rec.Body.String(), `class="alert alert-error"`) {
				t.Errorf("body = %q, want error alert", rec.Body.String())
			}
		})
	}
}

func TestExport(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{total: 3})}

	rec := c.get("/t/test_shipments/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "Fulfillment") || !strings.Contains(cd, ".xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}

func TestExport_TooManyExports(t *testing.T) {
	registerShipmentsPage(t)
	s := newTestServer(t, &fakeSource{total: 1})
	for i := 0; i < s.cfg.Export.MaxConcurrent; i++ {
		if err := s.exports.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	defer func() {
		for i := 0; i < s.cfg.Export.MaxConcurrent; i++ {
			s.exports.Release()
		}
	}()

	c := &client{t: t, s: s}
	rec := c.get("/t/test_shipments/export")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAPI(t *testing.T) {
	registerShipmentsPage(t)
	c := &client{t: t, s: newTestServer(t, &fakeSource{total: 12})}

	rec := c.get("/api/pages/test_shipments/rows?per_page=10&q=UPS")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`"page":"test_shipments"`, `"total_rows":10`, `"hasNextPage":true`, `"SH-1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("rows response missing %s: %s", want, body)
		}
	}
	if strings.Contains(body, `"SH-2"`) {
		t.Error("live filter not applied to API rows")
	}

	rec = c.get("/api/pages/nope/rows")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"code":"TBL001"`) {
		t.Errorf("unknown page: %d %s", rec.Code, rec.Body.String())
	}

	rec = c.get("/api/status")
	if !strings.Contains(rec.Body.String(), `"max_concurrent":2`) {
		t.Errorf("status = %s", rec.Body.String())
	}
}

func TestAPI_RequiresKey(t *testing.T) {
	registerShipmentsPage(t)
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := NewServer(cfg, &fakeSource{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		key    string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusForbidden},
		{"secret", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("key %q: status = %d, want %d", tt.key, rec.Code, tt.status)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if got := rl.allow("10.0.0.1"); got != want {
			t.Errorf("request %d: allow = %v, want %v", i+1, got, want)
		}
	}
	if !rl.allow("10.0.0.2") {
		t.Error("second client limited by first")
	}

	now = now.Add(2 * time.Minute)
	if !rl.allow("10.0.0.1") {
		t.Error("limit not reset after window")
	}
	if _, ok := rl.clients["10.0.0.2"]; ok {
		t.Error("stale client not swept")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrUnknownPage, http.StatusNotFound},
		{core.ErrInvalidCursor, http.StatusBadRequest},
		{grid.ErrInvalidDate, http.StatusBadRequest},
		{grid.ErrNextDisabled, http.StatusConflict},
		{grid.ErrPreviousDisabled, http.StatusConflict},
		{core.ErrTooManyExports, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
