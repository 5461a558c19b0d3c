package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerShippingLabels()
}

func registerShippingLabels() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:   "shipping_labels",
			Group: "Sales",
			Label: "Shipping Labels",
		},
		Columns: []core.ColumnSpec{
			{ID: "tracking_number", Title: "Tracking #", Kind: grid.RenderLink, LinkPattern: "/shipping-labels/{id}"},
			{ID: "order_number", Title: "Order #", Sortable: true},
			{ID: "carrier", Title: "Carrier", Kind: grid.RenderBadge, Sortable: true},
			{ID: "service", Title: "Service"},
			{ID: "cost", Title: "Cost", Sortable: true},
			{ID: "voided", Title: "Voided", Kind: grid.RenderBadge, BadgeTones: map[string]string{
				"true": "danger",
			}},
			{ID: "created_at", Title: "Printed", Kind: grid.RenderDate, Sortable: true},
		},
		Filters: core.FilterCaps{Date: true, PerPage: true},
	})
}
