// Package pages registers the built-in list screens with the core registry.
// Import it for side effects; overrides from the pages file are applied on
// top with core.Upsert.
package pages
