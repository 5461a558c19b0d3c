package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RendererKind selects how a column's cells are presented.
type RendererKind string

const (
	RenderText  RendererKind = "text"
	RenderLink  RendererKind = "link"
	RenderBadge RendererKind = "badge"
	RenderDate  RendererKind = "date"
)

// Valid reports whether k is one of the known renderer kinds.
func (k RendererKind) Valid() bool {
	switch k {
	case RenderText, RenderLink, RenderBadge, RenderDate:
		return true
	}
	return false
}

// Column describes one grid column. ID is unique within a table instance and
// Omit is the single source of truth for whether the column is rendered.
type Column struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`       // display label
	Identifier string       `json:"identifier"` // flat-key accessor
	Sortable   bool         `json:"sortable"`
	Omit       bool         `json:"omit"`
	Width      string       `json:"width,omitempty"` // CSS pixels, fixed or computed
	Kind       RendererKind `json:"kind,omitempty"`

	// LinkPattern is expanded against the row for RenderLink, e.g. "/orders/{id}".
	LinkPattern string `json:"link_pattern,omitempty"`

	// DateLayout is the display layout for RenderDate (default 2006/01/02).
	DateLayout string `json:"date_layout,omitempty"`

	// BadgeTones maps a lower-cased cell value to a tone name for RenderBadge.
	BadgeTones map[string]string `json:"badge_tones,omitempty"`
}

// Select returns the raw value of the column in row, or nil when missing.
func (c Column) Select(row FlatRow) any {
	return row[c.Identifier]
}

// CopyColumns returns a copy of cols that does not share the backing array.
func CopyColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// VisibleColumns returns the columns whose Omit flag is false.
func VisibleColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !c.Omit {
			out = append(out, c)
		}
	}
	return out
}

// columnIDs returns the id sequence used for dispatch deduplication.
func columnIDs(cols []Column) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

// DefaultDateLayout is the layout used for date cells and the date filters.
const DefaultDateLayout = "2006/01/02"

// dateInputLayouts are the layouts a date cell value may arrive in.
var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	DefaultDateLayout,
}

// FormatCell returns the display text of a cell for every renderer kind.
// Missing values render as the empty string.
func FormatCell(col Column, row FlatRow) string {
	v := col.Select(row)
	if v == nil {
		return ""
	}

	if col.Kind == RenderDate {
		layout := col.DateLayout
		if layout == "" {
			layout = DefaultDateLayout
		}
		switch t := v.(type) {
		case time.Time:
			return t.Format(layout)
		case string:
			for _, in := range dateInputLayouts {
				if parsed, err := time.Parse(in, t); err == nil {
					return parsed.Format(layout)
				}
			}
			return t
		}
	}

	return stringify(v)
}

// BadgeTone returns the tone configured for the cell value, or "neutral".
func BadgeTone(col Column, row FlatRow) string {
	if tone, ok := col.BadgeTones[strings.ToLower(FormatCell(col, row))]; ok {
		return tone
	}
	return "neutral"
}

// CellLink expands the column's LinkPattern with values from row. Every
// "{key}" placeholder is replaced by the flat value under key; it returns ""
// when the pattern is empty or a placeholder has no value.
func CellLink(col Column, row FlatRow) string {
	pattern := col.LinkPattern
	if pattern == "" {
		return ""
	}

	var b strings.Builder
	for {
		start := strings.IndexByte(pattern, '{')
		if start < 0 {
			b.WriteString(pattern)
			break
		}
		end := strings.IndexByte(pattern[start:], '}')
		if end < 0 {
			b.WriteString(pattern)
			break
		}
		end += start

		key := pattern[start+1 : end]
		v, ok := row[key]
		if !ok || v == nil {
			return ""
		}
		b.WriteString(pattern[:start])
		b.WriteString(stringify(v))
		pattern = pattern[end+1:]
	}
	return b.String()
}

// stringify renders any flat value as text.
func stringify(v any) string {
	if s, ok := numberString(v); ok {
		return s
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
