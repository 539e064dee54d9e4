package model

// Manufacturer is an equipment maker. It owns its models exclusively.
// UsedByCategories lists the categories that reference the manufacturer; while
// it is non-empty the manufacturer cannot be deleted.
type Manufacturer struct {
	ID               string           `yaml:"id"                 json:"id"`
	Name             string           `yaml:"name"               json:"name"`
	Models           []EquipmentModel `yaml:"models"             json:"models"`
	UsedByCategories []string         `yaml:"used_by_categories" json:"used_by_categories"`
}

// EquipmentModel is a model record owned by one manufacturer.
type EquipmentModel struct {
	ID   string `yaml:"id"   json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Clone returns a deep copy of the manufacturer.
func (m Manufacturer) Clone() Manufacturer {
	out := m
	if m.Models != nil {
		out.Models = make([]EquipmentModel, len(m.Models))
		copy(out.Models, m.Models)
	}
	out.UsedByCategories = cloneStrings(m.UsedByCategories)
	return out
}

// FindModel returns the index of the model with the given id, or -1.
func (m Manufacturer) FindModel(modelID string) int {
	for i, md := range m.Models {
		if md.ID == modelID {
			return i
		}
	}
	return -1
}

// NameInput is the payload for creating or renaming a named entity.
type NameInput struct {
	Name string `json:"name" validate:"notblank"`
}
