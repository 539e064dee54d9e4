package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitabwire/assetattr/model"
)

// AddCategory creates a category under parentID, or a root when parentID is
// nil or empty.
func (s *Store) AddCategory(ctx context.Context, in model.CategoryInput) (string, error) {
	if err := s.checkInput(in); err != nil {
		return "", err
	}

	var id string
	err := s.mutate(ctx, "add_category", func(snap *snapshot) error {
		parent := derefParent(in.ParentID)
		if parent != "" {
			if _, ok := snap.categories[parent]; !ok {
				return unknownParent(parent)
			}
		}
		id = s.freshID(func(candidate string) bool { _, taken := snap.categories[candidate]; return taken })

		c := model.Category{ID: id, Name: strings.TrimSpace(in.Name)}
		if parent != "" {
			c.ParentID = model.Ptr(parent)
		}
		snap.putCategory(c)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RenameCategory replaces the category name.
func (s *Store) RenameCategory(ctx context.Context, id, name string) error {
	if blank(name) {
		return blankName("name")
	}
	return s.mutate(ctx, "rename_category", func(snap *snapshot) error {
		c, ok := snap.categories[id]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", id))
		}
		c.Name = strings.TrimSpace(name)
		return nil
	})
}

// MoveCategory reassigns the parent. Assignments that would make the
// category its own ancestor are rejected.
func (s *Store) MoveCategory(ctx context.Context, id string, parentID *string) error {
	return s.mutate(ctx, "move_category", func(snap *snapshot) error {
		c, ok := snap.categories[id]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", id))
		}
		parent := derefParent(parentID)
		if parent == "" {
			c.ParentID = nil
			return nil
		}
		if _, ok := snap.categories[parent]; !ok {
			return unknownParent(parent)
		}
		if parent == id || isAncestor(snap, parent, id) {
			return model.NewInvalidInputError(
				fmt.Sprintf("category %q cannot be placed under %q", id, parent),
				model.FieldError{Field: "parent_id", Code: model.FieldInvalid, Message: "parent assignment would create a cycle"},
			)
		}
		c.ParentID = model.Ptr(parent)
		return nil
	})
}

// DeleteCategory removes a leaf category and every reference to it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_category", func(snap *snapshot) error {
		if _, ok := snap.categories[id]; !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", id))
		}
		for _, other := range snap.categories {
			if snap.parentOf(other) == id {
				return model.NewReferentialGuardError(
					fmt.Sprintf("category %q still has child %q", id, other.ID))
			}
		}
		for _, a := range snap.attributes {
			if a.AppliedTo(id) {
				unbindCustom(snap, a.ID, id)
			}
		}
		for _, m := range snap.manufacturers {
			m.UsedByCategories = without(m.UsedByCategories, id)
		}
		snap.dropCategory(id)
		return nil
	})
}

func derefParent(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func unknownParent(parent string) error {
	return model.NewInvalidInputError(
		fmt.Sprintf("parent category %q does not exist", parent),
		model.FieldError{Field: "parent_id", Code: model.FieldUnknown, Message: "parent does not exist"},
	)
}

func blankName(field string) error {
	return model.NewInvalidInputError(field+" must not be blank",
		model.FieldError{Field: field, Code: model.FieldRequired, Message: "must not be blank"})
}
