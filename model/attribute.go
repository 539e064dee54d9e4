package model

// AttributeType is the value type of an attribute field.
type AttributeType string

// Supported attribute types.
const (
	AttributeTypeText     AttributeType = "text"
	AttributeTypeNumber   AttributeType = "number"
	AttributeTypeDropdown AttributeType = "dropdown"
	AttributeTypeDate     AttributeType = "date"
	AttributeTypeBoolean  AttributeType = "boolean"
)

// Valid reports whether t is one of the supported attribute types.
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeTypeText, AttributeTypeNumber, AttributeTypeDropdown, AttributeTypeDate, AttributeTypeBoolean:
		return true
	}
	return false
}

// Attribute is a field definition in the attribute library. System attributes
// (Manufacturer, Model, Flue Type, ...) are seed data; custom attributes are
// created by users.
type Attribute struct {
	ID    string        `yaml:"id"    json:"id"`
	Label string        `yaml:"label" json:"label"`
	Type  AttributeType `yaml:"type"  json:"type"`

	IsSystem bool `yaml:"is_system" json:"is_system"`
	// IsRequired is the "preferred" flag. It drives display only and is never
	// enforced as a validation rule.
	IsRequired bool `yaml:"is_required" json:"is_required"`

	AppliedToCategories []string `yaml:"applied_to_categories" json:"applied_to_categories"`

	Description     *string  `yaml:"description"      json:"description,omitempty"`
	DropdownOptions []string `yaml:"dropdown_options" json:"dropdown_options,omitempty"`
	Order           *int     `yaml:"order"            json:"order,omitempty"`
	DefaultValue    *string  `yaml:"default_value"    json:"default_value,omitempty"`
}

// Clone returns a deep copy of the attribute.
func (a Attribute) Clone() Attribute {
	c := a
	c.AppliedToCategories = cloneStrings(a.AppliedToCategories)
	c.DropdownOptions = cloneStrings(a.DropdownOptions)
	c.Description = clonePtr(a.Description)
	c.Order = clonePtr(a.Order)
	c.DefaultValue = clonePtr(a.DefaultValue)
	return c
}

// AppliedTo reports whether the attribute lists categoryID in AppliedToCategories.
func (a Attribute) AppliedTo(categoryID string) bool {
	for _, id := range a.AppliedToCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// AttributeInput is the payload for creating a custom attribute. The id and
// the system flag are assigned by the library.
type AttributeInput struct {
	Label               string        `json:"label"                 validate:"notblank"`
	Type                AttributeType `json:"type"                  validate:"required,oneof=text number dropdown date boolean"`
	IsRequired          bool          `json:"is_required"`
	AppliedToCategories []string      `json:"applied_to_categories" validate:"dive,notblank"`
	Description         *string       `json:"description"`
	DropdownOptions     []string      `json:"dropdown_options"      validate:"dive,notblank"`
	Order               *int          `json:"order"                 validate:"omitempty,gte=0"`
	DefaultValue        *string       `json:"default_value"`
}

// AttributePatch is a partial update of an attribute. Nil fields are left
// untouched. A non-nil AppliedToCategories replaces the complete set.
type AttributePatch struct {
	Label               *string        `json:"label"                 validate:"omitempty,notblank"`
	Type                *AttributeType `json:"type"                  validate:"omitempty,oneof=text number dropdown date boolean"`
	IsRequired          *bool          `json:"is_required"`
	AppliedToCategories *[]string      `json:"applied_to_categories" validate:"omitempty,dive,notblank"`
	Description         *string        `json:"description"`
	DropdownOptions     *[]string      `json:"dropdown_options"      validate:"omitempty,dive,notblank"`
	Order               *int           `json:"order"                 validate:"omitempty,gte=0"`
	DefaultValue        *string        `json:"default_value"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
