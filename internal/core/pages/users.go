package pages

import (
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func init() {
	registerUsers()
}

func registerUsers() {
	core.Register(core.PageDefinition{
		Info: core.PageInfo{
			Key:   "users",
			Group: "Admin",
			Label: "Users",
		},
		Columns: []core.ColumnSpec{
			{ID: "email", Title: "Email", Kind: grid.RenderLink, LinkPattern: "/users/{id}", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true},
			{ID: "role", Title: "Role", Kind: grid.RenderBadge, BadgeTones: map[string]string{
				"admin":  "danger",
				"picker": "info",
				"viewer": "muted",
			}},
			{ID: "last_login_at", Title: "Last Login", Kind: grid.RenderDate, Sortable: true},
		},
		Filters: core.FilterCaps{PerPage: true},
	})
}
