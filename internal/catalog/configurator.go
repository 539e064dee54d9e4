package catalog

import (
	"context"
	"fmt"

	"github.com/pitabwire/assetattr/model"
)

// ToggleAttribute flips IsEnabled on the category's binding of attributeID,
// in the system list when systemList is set and the custom list otherwise.
// A missing category or binding is a no-op.
func (s *Store) ToggleAttribute(ctx context.Context, categoryID, attributeID string, systemList bool) error {
	return s.mutate(ctx, "toggle_attribute", func(snap *snapshot) error {
		c, ok := snap.categories[categoryID]
		if !ok {
			return errNoChange
		}
		list := c.CustomAttributes
		if systemList {
			list = c.SystemAttributes
		}
		i := indexOf(list, attributeID)
		if i < 0 {
			return errNoChange
		}
		list[i].IsEnabled = !list[i].IsEnabled
		return nil
	})
}

// ReorderAttributes re-sequences the category's custom list to follow
// orderedIDs. Named bindings get Order equal to their position in
// orderedIDs; ids with no binding are skipped. Bindings not named keep their
// relative order and are numbered after the named ones. The system list is
// never reordered.
func (s *Store) ReorderAttributes(ctx context.Context, categoryID string, orderedIDs []string) error {
	return s.mutate(ctx, "reorder_attributes", func(snap *snapshot) error {
		c, ok := snap.categories[categoryID]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", categoryID))
		}

		placed := make(map[string]bool, len(orderedIDs))
		next := make([]model.CategoryAttributeConfig, 0, len(c.CustomAttributes))
		for _, id := range orderedIDs {
			i := indexOf(c.CustomAttributes, id)
			if i < 0 || placed[id] {
				continue
			}
			placed[id] = true
			b := c.CustomAttributes[i]
			b.Order = len(next)
			next = append(next, b)
		}
		for _, b := range c.CustomAttributes {
			if placed[b.AttributeID] {
				continue
			}
			b.Order = len(next)
			next = append(next, b)
		}
		c.CustomAttributes = next
		return nil
	})
}

// ApplyAttribute binds the attribute to the category on both sides. Applying
// an existing binding changes nothing. System attributes only live in system
// lists and are refused.
func (s *Store) ApplyAttribute(ctx context.Context, attributeID, categoryID string) error {
	return s.mutate(ctx, "apply_attribute", func(snap *snapshot) error {
		a, ok := snap.attributes[attributeID]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("attribute %q not found", attributeID))
		}
		if a.IsSystem {
			return model.NewImmutableEntityError(fmt.Sprintf("system attribute %q cannot be bound to a custom list", attributeID))
		}
		if _, ok := snap.categories[categoryID]; !ok {
			return model.NewNotFoundError(fmt.Sprintf("category %q not found", categoryID))
		}
		if !bindCustom(snap, attributeID, categoryID) {
			return errNoChange
		}
		return nil
	})
}

// RemoveAttribute is the inverse of ApplyAttribute. Missing pieces are
// ignored.
func (s *Store) RemoveAttribute(ctx context.Context, attributeID, categoryID string) error {
	return s.mutate(ctx, "remove_attribute", func(snap *snapshot) error {
		if a, ok := snap.attributes[attributeID]; ok && a.IsSystem {
			return errNoChange
		}
		if !unbindCustom(snap, attributeID, categoryID) {
			return errNoChange
		}
		return nil
	})
}
