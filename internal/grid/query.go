package grid

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Query parameter names of the table URL contract.
const (
	ParamSKU     = "sku"
	ParamFrom    = "from"
	ParamTo      = "to"
	ParamPerPage = "per_page"
	ParamSort    = "sort"
	ParamDir     = "dir"
)

// PerPageOptions are the page sizes offered by the per-page filter.
var PerPageOptions = []int{10, 25, 50, 100}

// ErrInvalidDate is returned for from/to values not in yyyy/MM/dd form.
var ErrInvalidDate = errors.New("invalid date")

// TableQuery is the server-side filter state carried in the address bar:
// the forward cursor, SKU, date range and page size. Sorting rides along.
type TableQuery struct {
	Cursor  string
	SKU     string
	From    *time.Time
	To      *time.Time
	PerPage int
	Sort    string
	Desc    bool
}

// ParseQuery reads the table parameters from v. Unknown per_page values are
// ignored (PerPage stays 0, meaning the caller default). Malformed dates are
// an error wrapping ErrInvalidDate.
func ParseQuery(v url.Values) (TableQuery, error) {
	q := TableQuery{
		Cursor: v.Get(CursorParam),
		SKU:    strings.TrimSpace(v.Get(ParamSKU)),
		Sort:   v.Get(ParamSort),
		Desc:   strings.EqualFold(v.Get(ParamDir), "desc"),
	}

	var err error
	if q.From, err = parseDateParam(v.Get(ParamFrom)); err != nil {
		return TableQuery{}, fmt.Errorf("%s: %w", ParamFrom, err)
	}
	if q.To, err = parseDateParam(v.Get(ParamTo)); err != nil {
		return TableQuery{}, fmt.Errorf("%s: %w", ParamTo, err)
	}

	if n, err := strconv.Atoi(v.Get(ParamPerPage)); err == nil && slices.Contains(PerPageOptions, n) {
		q.PerPage = n
	}
	return q, nil
}

func parseDateParam(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DefaultDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w %q, want yyyy/MM/dd", ErrInvalidDate, s)
	}
	return &t, nil
}

// Values encodes q back into query parameters, omitting empty fields.
func (q TableQuery) Values() url.Values {
	v := url.Values{}
	if q.Cursor != "" {
		v.Set(CursorParam, q.Cursor)
	}
	q.setFilterValues(v)
	if q.Sort != "" {
		v.Set(ParamSort, q.Sort)
		if q.Desc {
			v.Set(ParamDir, "desc")
		}
	}
	return v
}

func (q TableQuery) setFilterValues(v url.Values) {
	if q.SKU != "" {
		v.Set(ParamSKU, q.SKU)
	}
	if q.From != nil {
		v.Set(ParamFrom, q.From.Format(DefaultDateLayout))
	}
	if q.To != nil {
		v.Set(ParamTo, q.To.Format(DefaultDateLayout))
	}
	if q.PerPage > 0 {
		v.Set(ParamPerPage, strconv.Itoa(q.PerPage))
	}
}

// DateRange returns the from/to bounds as store values.
func (q TableQuery) DateRange() DateRange {
	var r DateRange
	if q.From != nil {
		from := q.From.Format(DefaultDateLayout)
		r.From = &from
	}
	if q.To != nil {
		to := q.To.Format(DefaultDateLayout)
		r.To = &to
	}
	return r
}

// FilterURL is the navigation target of a date/SKU/per-page form submit:
// path with the filter parameters set. The cursor is dropped because it
// belongs to the previous filter combination.
func FilterURL(path string, q TableQuery) string {
	v := url.Values{}
	q.setFilterValues(v)
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// ResetURL is the navigation target of the filter reset control.
func ResetURL(path string) string {
	return path
}
