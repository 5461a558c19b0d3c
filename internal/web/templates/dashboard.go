package templates

import "github.com/JonMunkholm/fulfillment/internal/core"

// PageGroup is one sidebar section.
type PageGroup struct {
	Name  string          `json:"name"`
	Pages []core.PageInfo `json:"pages"`
}
