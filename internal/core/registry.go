package core

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownPage is returned for page keys that are not registered.
var ErrUnknownPage = errors.New("unknown page")

// catalog is the process-wide set of page definitions. Pages register from
// init functions; the pages file upserts over them at startup and on reload.
var catalog = struct {
	sync.RWMutex
	pages map[string]PageDefinition
}{pages: make(map[string]PageDefinition)}

// Register adds def and panics if its key is taken.
func Register(def PageDefinition) {
	catalog.Lock()
	defer catalog.Unlock()

	if _, dup := catalog.pages[def.Info.Key]; dup {
		panic(fmt.Sprintf("page already registered: %s", def.Info.Key))
	}
	catalog.pages[def.Info.Key] = normalize(def)
}

// Upsert adds or replaces def.
func Upsert(def PageDefinition) {
	catalog.Lock()
	defer catalog.Unlock()
	catalog.pages[def.Info.Key] = normalize(def)
}

func normalize(def PageDefinition) PageDefinition {
	def.Info.Path = PagePath(def.Info.Key)
	if def.Source.Table == "" {
		def.Source.Table = def.Info.Key
	}
	return def
}

// PagePath returns the browser path of the page with key.
func PagePath(key string) string {
	return "/t/" + key
}

func Get(key string) (PageDefinition, bool) {
	catalog.RLock()
	defer catalog.RUnlock()
	def, ok := catalog.pages[key]
	return def, ok
}

// MustGet is Get with an error wrapping ErrUnknownPage for missing keys.
func MustGet(key string) (PageDefinition, error) {
	if def, ok := Get(key); ok {
		return def, nil
	}
	return PageDefinition{}, fmt.Errorf("%w: %s", ErrUnknownPage, key)
}

// All returns every page ordered by group, then key.
func All() []PageDefinition {
	return selectPages(func(PageDefinition) bool { return true })
}

// ByGroup returns the pages of group ordered by key.
func ByGroup(group string) []PageDefinition {
	return selectPages(func(def PageDefinition) bool { return def.Info.Group == group })
}

func selectPages(keep func(PageDefinition) bool) []PageDefinition {
	catalog.RLock()
	var out []PageDefinition
	for _, def := range catalog.pages {
		if keep(def) {
			out = append(out, def)
		}
	}
	catalog.RUnlock()

	slices.SortFunc(out, func(a, b PageDefinition) int {
		return cmp.Or(cmp.Compare(a.Info.Group, b.Info.Group), cmp.Compare(a.Info.Key, b.Info.Key))
	})
	return out
}

// Groups returns the distinct group names, sorted.
func Groups() []string {
	catalog.RLock()
	seen := make(map[string]struct{})
	for _, def := range catalog.pages {
		seen[def.Info.Group] = struct{}{}
	}
	catalog.RUnlock()
	return slices.Sorted(maps.Keys(seen))
}

func PageCount() int {
	catalog.RLock()
	defer catalog.RUnlock()
	return len(catalog.pages)
}

// Clear removes every page. Tests use it to start from an empty catalog.
func Clear() {
	catalog.Lock()
	defer catalog.Unlock()
	clear(catalog.pages)
}
