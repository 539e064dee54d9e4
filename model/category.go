package model

// CategoryAttributeConfig binds an attribute to a category with its display
// state. AttributeID always references an attribute in the library.
type CategoryAttributeConfig struct {
	AttributeID string `yaml:"attribute_id" json:"attribute_id"`
	IsEnabled   bool   `yaml:"is_enabled"   json:"is_enabled"`
	Order       int    `yaml:"order"        json:"order"`
}

// Category is a node in the equipment-type hierarchy. ParentID is nil for
// roots. System and custom bindings are kept in separate ordered lists.
type Category struct {
	ID               string                    `yaml:"id"                json:"id"`
	Name             string                    `yaml:"name"              json:"name"`
	ParentID         *string                   `yaml:"parent_id"         json:"parent_id,omitempty"`
	SystemAttributes []CategoryAttributeConfig `yaml:"system_attributes" json:"system_attributes"`
	CustomAttributes []CategoryAttributeConfig `yaml:"custom_attributes" json:"custom_attributes"`
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	out := c
	out.ParentID = clonePtr(c.ParentID)
	out.SystemAttributes = cloneConfigs(c.SystemAttributes)
	out.CustomAttributes = cloneConfigs(c.CustomAttributes)
	return out
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name     string  `json:"name"      validate:"notblank"`
	ParentID *string `json:"parent_id"`
}

// InheritedAttributes holds the bindings a category receives from its
// ancestors, root first.
type InheritedAttributes struct {
	System []CategoryAttributeConfig `json:"system"`
	Custom []CategoryAttributeConfig `json:"custom"`
}

// AttributeKind discriminates the two shapes an attribute takes on a
// category screen.
type AttributeKind string

const (
	// AttributeKindCore marks a binding from a category's system list.
	AttributeKindCore AttributeKind = "core"
	// AttributeKindCategory marks a binding from a category's custom list.
	AttributeKindCategory AttributeKind = "category"
)

// EffectiveAttribute is one resolved row of a category's attribute set: the
// binding, the definition it points at, and where it came from.
type EffectiveAttribute struct {
	Kind             AttributeKind           `json:"kind"`
	Attribute        Attribute               `json:"attribute"`
	Binding          CategoryAttributeConfig `json:"binding"`
	SourceCategoryID string                  `json:"source_category_id"`
	Inherited        bool                    `json:"inherited"`
}

func cloneConfigs(s []CategoryAttributeConfig) []CategoryAttributeConfig {
	if s == nil {
		return nil
	}
	out := make([]CategoryAttributeConfig, len(s))
	copy(out, s)
	return out
}
