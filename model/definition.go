package model

// CatalogDefinition is the root structure of a seed file. Each file declares
// attribute definitions, the category tree with its bindings, and the
// manufacturer registry.
type CatalogDefinition struct {
	Version       string         `yaml:"version"       json:"version"`
	Attributes    []Attribute    `yaml:"attributes"    json:"attributes,omitempty"`
	Categories    []Category     `yaml:"categories"    json:"categories,omitempty"`
	Manufacturers []Manufacturer `yaml:"manufacturers" json:"manufacturers,omitempty"`

	// Checksum is computed at load time and not part of the YAML.
	Checksum string `yaml:"-" json:"-"`
	// SourceFile records the originating file path.
	SourceFile string `yaml:"-" json:"-"`
}

// Clone returns a deep copy of the definition.
func (d CatalogDefinition) Clone() CatalogDefinition {
	out := d
	if d.Attributes != nil {
		out.Attributes = make([]Attribute, len(d.Attributes))
		for i, a := range d.Attributes {
			out.Attributes[i] = a.Clone()
		}
	}
	if d.Categories != nil {
		out.Categories = make([]Category, len(d.Categories))
		for i, c := range d.Categories {
			out.Categories[i] = c.Clone()
		}
	}
	if d.Manufacturers != nil {
		out.Manufacturers = make([]Manufacturer, len(d.Manufacturers))
		for i, m := range d.Manufacturers {
			out.Manufacturers[i] = m.Clone()
		}
	}
	return out
}
