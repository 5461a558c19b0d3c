package grid

import (
	"slices"
	"sync"
	"time"
)

// DateRange is the selected date filter, formatted as yyyy/MM/dd. A nil
// bound means open-ended.
type DateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// FilterState is the filter portion of a Store.
type FilterState struct {
	FilterText    string    `json:"filter_text"`
	SelectedDates DateRange `json:"selected_dates"`
}

// StoreChange names the field a mutation touched.
type StoreChange string

const (
	ChangeFilterText     StoreChange = "filter_text"
	ChangeColumns        StoreChange = "columns"
	ChangeSelectedDates  StoreChange = "selected_dates"
	ChangeLoadingColumns StoreChange = "loading_columns"
)

// Store holds the state of one mounted table: filter text, date range,
// column list and the column loading flag. It is never shared between pages;
// create one per mount with NewStore.
type Store struct {
	mu             sync.RWMutex
	filterText     string
	columns        []Column
	loadingColumns bool
	selectedDates  DateRange

	listenersMu sync.Mutex
	listeners   []func(StoreChange)
}

// NewStore returns an empty store whose selected dates default to the day of
// now for both bounds.
func NewStore(now time.Time) *Store {
	return &Store{selectedDates: TodayRange(now)}
}

// TodayRange is the date range covering the day of now.
func TodayRange(now time.Time) DateRange {
	from := now.Format(DefaultDateLayout)
	to := from
	return DateRange{From: &from, To: &to}
}

// FilterText returns the live filter text.
func (s *Store) FilterText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterText
}

// Columns returns a copy of the column list.
func (s *Store) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CopyColumns(s.columns)
}

// LoadingColumns reports whether the column list is being (re)computed.
func (s *Store) LoadingColumns() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingColumns
}

// SelectedDates returns the selected date range.
func (s *Store) SelectedDates() DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRange(s.selectedDates)
}

// Filters returns a snapshot of the filter state.
func (s *Store) Filters() FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterState{
		FilterText:    s.filterText,
		SelectedDates: copyRange(s.selectedDates),
	}
}

// SetFilterText replaces the live filter text.
func (s *Store) SetFilterText(text string) {
	s.mu.Lock()
	s.filterText = text
	s.mu.Unlock()
	s.notify(ChangeFilterText)
}

// SetTableColumns replaces the whole column list. Callers recompute the full
// array (for instance to flip one Omit flag) and resubmit it.
func (s *Store) SetTableColumns(cols []Column) {
	s.mu.Lock()
	s.columns = CopyColumns(cols)
	s.mu.Unlock()
	s.notify(ChangeColumns)
}

// SetSelectedDates replaces the selected date range.
func (s *Store) SetSelectedDates(r DateRange) {
	s.mu.Lock()
	s.selectedDates = copyRange(r)
	s.mu.Unlock()
	s.notify(ChangeSelectedDates)
}

// SetLoadingColumns sets the column loading flag.
func (s *Store) SetLoadingColumns(loading bool) {
	s.mu.Lock()
	s.loadingColumns = loading
	s.mu.Unlock()
	s.notify(ChangeLoadingColumns)
}

// Subscribe registers fn to be called after every mutation. Listeners run
// outside the state lock and may read the store.
func (s *Store) Subscribe(fn func(StoreChange)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Store) notify(change StoreChange) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}

func copyRange(r DateRange) DateRange {
	var out DateRange
	if r.From != nil {
		from := *r.From
		out.From = &from
	}
	if r.To != nil {
		to := *r.To
		out.To = &to
	}
	return out
}

// ColumnDispatcher guards SetTableColumns against redundant dispatch. Columns
// recomputed from row data on every render would otherwise overwrite the
// store (and its Omit flags) each time.
type ColumnDispatcher struct {
	mu   sync.Mutex
	last []string
	sent bool
}

// Dispatch writes cols to store unless their id sequence equals the one
// dispatched previously. It reports whether the store was written.
func (d *ColumnDispatcher) Dispatch(store *Store, cols []Column) bool {
	ids := columnIDs(cols)

	d.mu.Lock()
	if d.sent && slices.Equal(d.last, ids) {
		d.mu.Unlock()
		return false
	}
	d.last = ids
	d.sent = true
	d.mu.Unlock()

	store.SetTableColumns(cols)
	return true
}

// Reset forgets the last dispatched sequence so the next Dispatch writes.
func (d *ColumnDispatcher) Reset() {
	d.mu.Lock()
	d.last = nil
	d.sent = false
	d.mu.Unlock()
}
