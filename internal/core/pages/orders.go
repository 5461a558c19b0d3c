package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerOrders()
}

func registerOrders() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:   "orders",
			Group: "Sales",
			Label: "Orders",
		},
		Columns: []core.ColumnSpec{
			{ID: "number", Title: "Order #", Kind: grid.RenderLink, LinkPattern: "/orders/{id}", Sortable: true},
			{ID: "status", Title: "Status", Kind: grid.RenderBadge, Sortable: true, BadgeTones: map[string]string{
				"open":      "info",
				"fulfilled": "success",
				"on_hold":   "warning",
				"cancelled": "danger",
			}},
			{ID: "name", Title: "Customer", Sortable: true},
			{ID: "email", Title: "Email", Hidden: true},
			{ID: "city", Title: "City"},
			{ID: "country", Title: "Country"},
			{ID: "total", Title: "Total", Sortable: true},
			{ID: "currency", Title: "Currency", Hidden: true},
			{ID: "created_at", Title: "Placed", Kind: grid.RenderDate, Sortable: true},
		},
		Filters: core.FilterCaps{Date: true, SKU: true, PerPage: true},
	})
}
