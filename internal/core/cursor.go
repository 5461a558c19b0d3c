package core

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

const cursorPrefix = "id:"

// EncodeCursor returns the opaque cursor pointing after the record with id.
func EncodeCursor(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.FormatInt(id, 10)))
}

// DecodeCursor returns the record id encoded in cursor.
func DecodeCursor(cursor string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	s, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: missing prefix", ErrInvalidCursor)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return id, nil
}

// CursorStore is the caller-owned cursor store, one cursor per page. It
// outlives the table's own state so the cursor survives the navigation the
// paginator performs.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[string]*string
}

// NewCursorStore returns an empty store.
func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: make(map[string]*string)}
}

// Cursor returns the stored cursor for page, or nil.
func (s *CursorStore) Cursor(page string) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cursors[page]
	if !ok || c == nil {
		return nil
	}
	v := *c
	return &v
}

// Set stores cursor for page; nil clears it.
func (s *CursorStore) Set(page string, cursor *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cursor == nil {
		delete(s.cursors, page)
		return
	}
	v := *cursor
	s.cursors[page] = &v
}

// ForPage returns a grid.CursorManager writing to page's slot.
func (s *CursorStore) ForPage(page string) grid.CursorManager {
	return grid.CursorManagerFunc(func(cursor *string) {
		s.Set(page, cursor)
	})
}
