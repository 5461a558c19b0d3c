package core

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// PagesFile is the TOML page override file:
//
//	[[page]]
//	key = "orders"
//	label = "Open Orders"
//	opaque_fields = ["shipments", "lines"]
//
//	  [[page.columns]]
//	  id = "number"
//	  title = "Order #"
//	  kind = "link"
//	  link_pattern = "/orders/{id}"
type PagesFile struct {
	Pages []PageOverride `toml:"page"`
}

// PageOverride changes or adds one page. Unset fields keep the registered
// definition's value; a page not yet registered must list its columns.
type PageOverride struct {
	Key            string       `toml:"key"`
	Group          string       `toml:"group"`
	Label          string       `toml:"label"`
	ExportFileName string       `toml:"export_file_name"`
	Columns        []ColumnSpec `toml:"columns"`
	Source         *SourceSpec  `toml:"source"`
	Filters        *FilterCaps  `toml:"filters"`
	OpaqueFields   []string     `toml:"opaque_fields"`
}

// LoadPagesFile decodes the override file at path. Keys the decoder does not
// know are an error so typos do not silently do nothing.
func LoadPagesFile(path string) (*PagesFile, error) {
	var file PagesFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("decode pages file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode pages file: unknown keys: %s", strings.Join(keys, ", "))
	}
	return &file, nil
}

// Merge applies the override to base and returns the result.
func (o PageOverride) Merge(base PageDefinition) PageDefinition {
	def := base
	def.Info.Key = o.Key
	if o.Group != "" {
		def.Info.Group = o.Group
	}
	if o.Label != "" {
		def.Info.Label = o.Label
	}
	if o.ExportFileName != "" {
		def.Info.ExportFileName = o.ExportFileName
	}
	if len(o.Columns) > 0 {
		def.Columns = append([]ColumnSpec(nil), o.Columns...)
	}
	if o.Source != nil {
		def.Source = *o.Source
	}
	if o.Filters != nil {
		def.Filters = *o.Filters
	}
	if o.OpaqueFields != nil {
		def.OpaqueFields = append([]string(nil), o.OpaqueFields...)
	}
	return def
}

// ApplyPages merges every override into the registry. It validates all
// overrides before changing anything and returns the keys it applied.
func ApplyPages(file *PagesFile) ([]string, error) {
	if file == nil {
		return nil, nil
	}

	var (
		errs   []error
		merged []PageDefinition
	)
	for i, o := range file.Pages {
		if o.Key == "" {
			errs = append(errs, fmt.Errorf("page %d: key is required", i))
			continue
		}
		base, exists := Get(o.Key)
		if !exists && len(o.Columns) == 0 {
			errs = append(errs, fmt.Errorf("page %q: new pages must declare columns", o.Key))
			continue
		}
		def := o.Merge(base)
		for _, c := range def.Columns {
			if c.ID == "" {
				errs = append(errs, fmt.Errorf("page %q: column without id", o.Key))
			}
		}
		merged = append(merged, def)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("apply pages file: %w", err)
	}

	keys := make([]string, len(merged))
	for i, def := range merged {
		Upsert(def)
		keys[i] = def.Info.Key
	}
	return keys, nil
}

// EncodePages writes defs in the override file format.
func EncodePages(w io.Writer, defs []PageDefinition) error {
	file := PagesFile{Pages: make([]PageOverride, len(defs))}
	for i, def := range defs {
		src := def.Source
		filters := def.Filters
		file.Pages[i] = PageOverride{
			Key:            def.Info.Key,
			Group:          def.Info.Group,
			Label:          def.Info.Label,
			ExportFileName: def.Info.ExportFileName,
			Columns:        def.Columns,
			Source:         &src,
			Filters:        &filters,
			OpaqueFields:   def.OpaqueFields,
		}
	}
	return toml.NewEncoder(w).Encode(file)
}
