package grid

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// PaginationInfo is the pagination metadata returned by the caller's fetch.
// The engine treats it as read-only.
type PaginationInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	EndCursor       *string `json:"endCursor"`
}

// CursorManager is the caller-owned cursor store. A nil cursor clears it.
type CursorManager interface {
	SetCursor(cursor *string)
}

// CursorManagerFunc adapts a function to CursorManager.
type CursorManagerFunc func(cursor *string)

// SetCursor calls f(cursor).
func (f CursorManagerFunc) SetCursor(cursor *string) { f(cursor) }

var (
	// ErrNextDisabled is returned by Next when there is no next page.
	ErrNextDisabled = errors.New("pagination: next page not available")

	// ErrPreviousDisabled is returned by Previous when there is no previous page.
	ErrPreviousDisabled = errors.New("pagination: previous page not available")
)

// CursorParam is the query parameter carrying the forward cursor.
const CursorParam = "cursor"

// PreviousReloadDelay is how long after history-back the page is reloaded.
const PreviousReloadDelay = 100 * time.Millisecond

// NavKind is the kind of navigation a pagination transition requests.
type NavKind string

const (
	// NavPush navigates to URL.
	NavPush NavKind = "push"
	// NavHistoryBack goes back in browser history, then reloads the
	// resulting URL after ReloadAfter.
	NavHistoryBack NavKind = "history_back"
)

// Navigation is the address-bar effect of a pagination transition.
type Navigation struct {
	Kind        NavKind       `json:"kind"`
	URL         string        `json:"url,omitempty"`
	ReloadAfter time.Duration `json:"reload_after,omitempty"`
}

// Controls is the enabled state of the two pagination controls.
type Controls struct {
	NextEnabled     bool `json:"next_enabled"`
	PreviousEnabled bool `json:"previous_enabled"`
}

// Paginator drives the forward-only cursor chain. There is no page number
// and no stack of earlier cursors: Next follows the end cursor, Previous
// replays history.
type Paginator struct {
	info    PaginationInfo
	manager CursorManager
}

// NewPaginator returns a paginator over info. manager may be nil when the
// caller does not track cursors.
func NewPaginator(info PaginationInfo, manager CursorManager) *Paginator {
	return &Paginator{info: info, manager: manager}
}

// Controls reports which controls are enabled. Only the has*Page flags
// count; EndCursor presence is not checked.
func (p *Paginator) Controls() Controls {
	return Controls{
		NextEnabled:     p.info.HasNextPage,
		PreviousEnabled: p.info.HasPreviousPage,
	}
}

// Next stores the end cursor with the caller and returns a navigation to
// current with the cursor parameter set, keeping every other parameter.
func (p *Paginator) Next(current *url.URL) (Navigation, error) {
	if !p.info.HasNextPage {
		return Navigation{}, ErrNextDisabled
	}

	// A missing end cursor is handed over as nil; the URL still carries an
	// empty cursor parameter.
	var cursor string
	var stored *string
	if p.info.EndCursor != nil {
		cursor = *p.info.EndCursor
		stored = &cursor
	}

	if p.manager != nil {
		p.manager.SetCursor(stored)
	}

	return Navigation{Kind: NavPush, URL: WithCursor(current, cursor)}, nil
}

// Previous returns the history-back navigation followed by a forced reload.
func (p *Paginator) Previous() (Navigation, error) {
	if !p.info.HasPreviousPage {
		return Navigation{}, ErrPreviousDisabled
	}
	return Navigation{Kind: NavHistoryBack, ReloadAfter: PreviousReloadDelay}, nil
}

// WithCursor returns the path and query of u with the cursor parameter set.
// Existing parameters keep their order; a previous cursor is replaced in place.
func WithCursor(u *url.URL, cursor string) string {
	if u == nil {
		u = &url.URL{}
	}
	return u.Path + "?" + setParam(u.RawQuery, CursorParam, cursor)
}

// setParam replaces or appends key=value in rawQuery without reordering the
// other parameters (url.Values.Encode would sort them).
func setParam(rawQuery, key, value string) string {
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)

	var parts []string
	replaced := false
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		name, _, _ := strings.Cut(part, "=")
		if unescaped, err := url.QueryUnescape(name); err == nil && unescaped == key {
			if !replaced {
				parts = append(parts, pair)
				replaced = true
			}
			continue
		}
		parts = append(parts, part)
	}
	if !replaced {
		parts = append(parts, pair)
	}
	return strings.Join(parts, "&")
}
