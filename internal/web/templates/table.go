// Package templates holds the templ components of the web UI. Edit the
// .templ files and regenerate with `templ generate`.
package templates

import (
	"time"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// TablePageData is everything a list screen renders.
type TablePageData struct {
	Page  core.PageInfo
	View  grid.View
	Query grid.TableQuery
	Nav   []PageGroup

	// ReloadAfter is the delay between history-back and the forced
	// reload of the Previous control.
	ReloadAfter time.Duration
}

// sortURL links to the page sorted by col, flipping the direction when the
// grid is already sorted by it.
func sortURL(data TablePageData, col grid.Column) string {
	q := data.Query
	q.Desc = data.View.SortKey == col.ID && !data.View.SortDesc
	q.Sort = col.ID
	return data.Page.Path + "?" + q.Values().Encode()
}

func sortMark(view grid.View, col grid.Column) string {
	switch {
	case view.SortKey != col.ID:
		return ""
	case view.SortDesc:
		return " ▼"
	default:
		return " ▲"
	}
}

func checkMark(col grid.Column) string {
	if col.Omit {
		return "☐"
	}
	return "☑"
}
