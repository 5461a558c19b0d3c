package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerPurchaseOrders()
}

func registerPurchaseOrders() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:            "purchase_orders",
			Group:          "Inventory",
			Label:          "Purchase Orders",
			ExportFileName: "Purchase Orders",
		},
		Columns: []core.ColumnSpec{
			{ID: "number", Title: "PO #", Kind: grid.RenderLink, LinkPattern: "/purchase-orders/{id}", Sortable: true},
			{ID: "status", Title: "Status", Kind: grid.RenderBadge, BadgeTones: map[string]string{
				"draft":    "muted",
				"sent":     "info",
				"partial":  "warning",
				"received": "success",
			}},
			// supplier.name flattens to "name"
			{ID: "name", Title: "Supplier", Sortable: true},
			{ID: "warehouse", Title: "Warehouse"},
			{ID: "units", Title: "Units", Sortable: true},
			{ID: "expected_at", Title: "Expected", Kind: grid.RenderDate, Sortable: true},
			{ID: "created_at", Title: "Created", Kind: grid.RenderDate, Hidden: true},
		},
		Source:       core.SourceSpec{Table: "purchase_orders"},
		Filters:      core.FilterCaps{Date: true, SKU: true, PerPage: true},
		OpaqueFields: []string{"shipments", "lines"},
	})
}
