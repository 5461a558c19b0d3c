package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerReports()
}

func registerReports() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:   "reports",
			Group: "Reporting",
			Label: "Daily Reports",
		},
		Columns: []core.ColumnSpec{
			{ID: "day", Title: "Day", Kind: grid.RenderDate, DateLayout: "Mon 2006/01/02", Sortable: true},
			{ID: "orders", Title: "Orders", Sortable: true},
			{ID: "units_shipped", Title: "Units Shipped", Sortable: true},
			{ID: "revenue", Title: "Revenue", Sortable: true},
			{ID: "late_shipments", Title: "Late", Sortable: true},
			{ID: "sku", Title: "Top SKU", Hidden: true},
		},
		Filters: core.FilterCaps{Date: true, PerPage: true},
	})
}
