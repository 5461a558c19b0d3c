package web

// mounts.go keeps the per-session table state.
//
// Every browser session (a uuid cookie) owns one mount per page it has
// opened. A mount is the server-side equivalent of a mounted table: its own
// grid.Store and column dispatcher, the last fetched page of raw rows (so the
// live filter and column toggles re-render without refetching) and the URL
// it was loaded from (so Next keeps every other parameter). The session's
// CursorStore outlives its mounts.
//
// Idle sessions are discarded by the sweeper.

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "fulfillment_session"

// Mounts is the registry of sessions and their mounted tables.
type Mounts struct {
	mu       sync.Mutex
	sessions map[string]*session

	ttl      time.Duration
	secure   bool
	now      func() time.Time
	exporter *grid.Exporter
}

type session struct {
	id       string
	cursors  *core.CursorStore
	lastSeen time.Time // guarded by Mounts.mu

	mu     sync.Mutex
	mounts map[string]*mount
}

// mount is one page's table within a session. Handlers hold mu for the
// whole request.
type mount struct {
	mu sync.Mutex

	page       string
	table      *grid.Table
	query      grid.TableQuery
	rows       []grid.RawRow
	pagination *grid.PaginationInfo
	loadedURL  *url.URL
	fetched    bool
}

// NewMounts returns an empty registry. Tables export with exporter.
func NewMounts(ttl time.Duration, secureCookies bool, exporter *grid.Exporter) *Mounts {
	return &Mounts{
		sessions: make(map[string]*session),
		ttl:      ttl,
		secure:   secureCookies,
		now:      time.Now,
		exporter: exporter,
	}
}

// session returns the caller's session, starting one (and setting the
// cookie) when the request has none or an unknown one.
func (m *Mounts) session(w http.ResponseWriter, r *http.Request) *session {
	now := m.now()

	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			m.mu.Lock()
			s, ok := m.sessions[c.Value]
			if ok {
				s.lastSeen = now
			}
			m.mu.Unlock()
			if ok {
				return s
			}
		}
	}

	s := &session{
		id:       uuid.NewString(),
		cursors:  core.NewCursorStore(),
		lastSeen: now,
		mounts:   make(map[string]*mount),
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// mount returns the session's mount for def, creating it on first use.
// The returned mount is locked; the caller must unlock it.
func (m *Mounts) mount(s *session, def core.PageDefinition, logger *slog.Logger) *mount {
	s.mu.Lock()
	mt, ok := s.mounts[def.Info.Key]
	if !ok {
		mt = &mount{
			page:  def.Info.Key,
			table: grid.NewTable(grid.NewStore(m.now()), m.exporter),
		}
		page := def.Info.Key
		mt.table.Store().Subscribe(func(change grid.StoreChange) {
			logger.Debug("table state changed", "page", page, "session", s.id, "change", change)
		})
		s.mounts[def.Info.Key] = mt
	}
	s.mu.Unlock()

	mt.mu.Lock()
	return mt
}

// record stores a successful fetch.
func (mt *mount) record(q grid.TableQuery, loaded *url.URL, page *core.PageResult) {
	mt.query = q
	mt.rows = page.Rows
	info := page.Pagination
	mt.pagination = &info
	mt.loadedURL = loaded
	mt.fetched = true
}

// currentURL is the URL the mount was last loaded from, or the page path.
func (mt *mount) currentURL(def core.PageDefinition) *url.URL {
	if mt.loadedURL != nil {
		u := *mt.loadedURL
		return &u
	}
	return &url.URL{Path: def.Info.Path}
}

// Len returns the number of live sessions.
func (m *Mounts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep discards sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Mounts) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps idle sessions every TTL/2 until ctx is done.
func (m *Mounts) StartSweeper(ctx context.Context, logger *slog.Logger) {
	interval := m.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	logger.Info("mount sweeper started", "ttl", m.ttl, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("mount sweeper stopped")
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Info("swept idle table sessions", "removed", removed, "remaining", m.Len())
			}
		}
	}
}
