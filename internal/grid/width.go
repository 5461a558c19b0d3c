package grid

import (
	"strconv"
	"unicode/utf8"
)

const (
	charWidthPx    = 8
	contentPadPx   = 34
	titlePadPx     = 60
	columnGutterPx = 30
)

// RowWithLongestField returns the longest string value stored under field
// across rows. Non-string values never win; the result is "" when no row
// holds a string for field.
func RowWithLongestField(rows []FlatRow, field string) string {
	longest := ""
	for _, row := range rows {
		s, ok := row[field].(string)
		if !ok {
			continue
		}
		if utf8.RuneCountInString(s) > utf8.RuneCountInString(longest) {
			longest = s
		}
	}
	return longest
}

// MinWidthPixels returns the minimum column width in pixels so that neither
// the longest content nor the header title gets truncated.
func MinWidthPixels(content, title string) int {
	byContent := utf8.RuneCountInString(content)*charWidthPx + contentPadPx
	byTitle := utf8.RuneCountInString(title)*charWidthPx + titlePadPx
	return max(byContent, byTitle) + columnGutterPx
}

// CalculateMinWidth is MinWidthPixels formatted as a CSS pixel length.
func CalculateMinWidth(content, title string) string {
	return strconv.Itoa(MinWidthPixels(content, title)) + "px"
}

// EstimateWidths returns a copy of cols where every column without a fixed
// width gets one computed from the longest value found in rows.
func EstimateWidths(cols []Column, rows []FlatRow) []Column {
	out := CopyColumns(cols)
	for i := range out {
		if out[i].Width != "" {
			continue
		}
		longest := RowWithLongestField(rows, out[i].Identifier)
		out[i].Width = CalculateMinWidth(longest, out[i].Name)
	}
	return out
}
