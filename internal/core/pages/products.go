package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerProducts()
}

func registerProducts() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:   "products",
			Group: "Inventory",
			Label: "Products",
		},
		Columns: []core.ColumnSpec{
			{ID: "sku", Title: "SKU", Kind: grid.RenderLink, LinkPattern: "/products/{id}", Sortable: true},
			{ID: "title", Title: "Title", Sortable: true},
			{ID: "barcode", Title: "Barcode", Hidden: true},
			{ID: "on_hand", Title: "On Hand", Sortable: true},
			{ID: "allocated", Title: "Allocated", Sortable: true},
			{ID: "location", Title: "Bin"},
			{ID: "weight", Title: "Weight (kg)"},
			{ID: "active", Title: "Active", Kind: grid.RenderBadge, BadgeTones: map[string]string{
				"true":  "success",
				"false": "muted",
			}},
		},
		Filters: core.FilterCaps{SKU: true, PerPage: true},
	})
}
