package grid

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Filter returns the rows where any field contains text, compared
// case-insensitively. Strings match by substring and numbers are stringified
// first; every other type never matches. An empty text returns rows itself.
func Filter(rows []FlatRow, text string) []FlatRow {
	if text == "" {
		return rows
	}

	needle := strings.ToLower(text)
	out := make([]FlatRow, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row FlatRow, needle string) bool {
	for _, v := range row {
		if s, ok := searchable(v); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// searchable returns the text form of v when the live filter may match it.
func searchable(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	return numberString(v)
}

// numberString stringifies numeric values, reporting false for anything else.
func numberString(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		return n.String(), true
	}
	return "", false
}
