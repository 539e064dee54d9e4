package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitabwire/assetattr/model"
)

// AddManufacturer creates a manufacturer with no models and no usage.
func (s *Store) AddManufacturer(ctx context.Context, name string) (string, error) {
	if blank(name) {
		return "", blankName("name")
	}

	var id string
	err := s.mutate(ctx, "add_manufacturer", func(snap *snapshot) error {
		id = s.freshID(func(candidate string) bool { _, taken := snap.manufacturers[candidate]; return taken })
		snap.putManufacturer(model.Manufacturer{
			ID:               id,
			Name:             strings.TrimSpace(name),
			Models:           []model.EquipmentModel{},
			UsedByCategories: []string{},
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// EditManufacturer replaces the manufacturer name.
func (s *Store) EditManufacturer(ctx context.Context, id, name string) error {
	if blank(name) {
		return blankName("name")
	}
	return s.mutate(ctx, "edit_manufacturer", func(snap *snapshot) error {
		m, err := findManufacturer(snap, id)
		if err != nil {
			return err
		}
		m.Name = strings.TrimSpace(name)
		return nil
	})
}

// DeleteManufacturer removes a manufacturer and its models. It is refused
// while any category still uses the manufacturer.
func (s *Store) DeleteManufacturer(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_manufacturer", func(snap *snapshot) error {
		m, err := findManufacturer(snap, id)
		if err != nil {
			return err
		}
		if len(m.UsedByCategories) > 0 {
			return model.NewReferentialGuardError(fmt.Sprintf(
				"manufacturer %q is used by categories %s", id, strings.Join(m.UsedByCategories, ", ")))
		}
		snap.dropManufacturer(id)
		return nil
	})
}

// AddModel creates a model owned by the manufacturer.
func (s *Store) AddModel(ctx context.Context, manufacturerID, name string) (string, error) {
	if blank(name) {
		return "", blankName("name")
	}

	var id string
	err := s.mutate(ctx, "add_model", func(snap *snapshot) error {
		m, err := findManufacturer(snap, manufacturerID)
		if err != nil {
			return err
		}
		id = s.freshID(func(candidate string) bool { return m.FindModel(candidate) >= 0 })
		m.Models = append(m.Models, model.EquipmentModel{ID: id, Name: strings.TrimSpace(name)})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// EditModel renames a model of the manufacturer.
func (s *Store) EditModel(ctx context.Context, manufacturerID, modelID, name string) error {
	if blank(name) {
		return blankName("name")
	}
	return s.mutate(ctx, "edit_model", func(snap *snapshot) error {
		m, i, err := findModel(snap, manufacturerID, modelID)
		if err != nil {
			return err
		}
		m.Models[i].Name = strings.TrimSpace(name)
		return nil
	})
}

// DeleteModel removes a model of the manufacturer.
func (s *Store) DeleteModel(ctx context.Context, manufacturerID, modelID string) error {
	return s.mutate(ctx, "delete_model", func(snap *snapshot) error {
		m, i, err := findModel(snap, manufacturerID, modelID)
		if err != nil {
			return err
		}
		m.Models = append(m.Models[:i:i], m.Models[i+1:]...)
		return nil
	})
}

// LinkManufacturer records that the category uses the manufacturer.
// Linking twice is a no-op.
func (s *Store) LinkManufacturer(ctx context.Context, manufacturerID, categoryID string) error {
	return s.mutate(ctx, "link_manufacturer", func(snap *snapshot) error {
		m, err := findManufacturer(snap, manufacturerID)
		if err != nil {
			return err
		}
		if _, ok := snap.categories[categoryID]; !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", categoryID))
		}
		if contains(m.UsedByCategories, categoryID) {
			return errNoChange
		}
		m.UsedByCategories = append(m.UsedByCategories, categoryID)
		return nil
	})
}

// UnlinkManufacturer drops the category from the manufacturer's usage.
// Missing pieces are ignored.
func (s *Store) UnlinkManufacturer(ctx context.Context, manufacturerID, categoryID string) error {
	return s.mutate(ctx, "unlink_manufacturer", func(snap *snapshot) error {
		m, ok := snap.manufacturers[manufacturerID]
		if !ok || !contains(m.UsedByCategories, categoryID) {
			return errNoChange
		}
		m.UsedByCategories = without(m.UsedByCategories, categoryID)
		return nil
	})
}

func findManufacturer(snap *snapshot, id string) (*model.Manufacturer, error) {
	m, ok := snap.manufacturers[id]
	if !ok {
		return nil, model.NewNotFoundError(fmt.Sprintf("manufacturer %q not found", id))
	}
	return m, nil
}

func findModel(snap *snapshot, manufacturerID, modelID string) (*model.Manufacturer, int, error) {
	m, err := findManufacturer(snap, manufacturerID)
	if err != nil {
		return nil, -1, err
	}
	i := m.FindModel(modelID)
	if i < 0 {
		return nil, -1, model.NewNotFoundError(
			fmt.Sprintf("model %q not found for manufacturer %q", modelID, manufacturerID))
	}
	return m, i, nil
}
