package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// CellRenderer renders the content of one grid cell.
type CellRenderer func(col grid.Column, row grid.FlatRow) templ.Component

// cellRenderers maps each renderer kind to its component.
var cellRenderers = map[grid.RendererKind]CellRenderer{
	grid.RenderText:  textCell,
	grid.RenderLink:  linkCell,
	grid.RenderBadge: badgeCell,
	grid.RenderDate:  dateCell,
}

// Cell renders row's value for col using the column's renderer kind.
// Unknown kinds render as text.
func Cell(col grid.Column, row grid.FlatRow) templ.Component {
	render, ok := cellRenderers[col.Kind]
	if !ok {
		render = textCell
	}
	return render(col, row)
}
