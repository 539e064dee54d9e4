package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pitabwire/assetattr/model"
)

// AddAttribute creates a custom attribute and binds it to every category in
// AppliedToCategories. It returns the generated id.
func (s *Store) AddAttribute(ctx context.Context, in model.AttributeInput) (string, error) {
	if err := s.checkInput(in); err != nil {
		return "", err
	}
	if in.Type != model.AttributeTypeDropdown && len(in.DropdownOptions) > 0 {
		return "", model.NewInvalidInputError("dropdown options require type dropdown",
			model.FieldError{Field: "dropdown_options", Code: model.FieldInvalid, Message: "only allowed for dropdown attributes"})
	}

	var id string
	err := s.mutate(ctx, "add_attribute", func(snap *snapshot) error {
		if err := requireCategories(snap, "applied_to_categories", in.AppliedToCategories); err != nil {
			return err
		}
		id = s.freshID(func(candidate string) bool { _, taken := snap.attributes[candidate]; return taken })

		snap.putAttribute(model.Attribute{
			ID:              id,
			Label:           in.Label,
			Type:            in.Type,
			IsSystem:        false,
			IsRequired:      in.IsRequired,
			Description:     in.Description,
			DropdownOptions: append([]string(nil), in.DropdownOptions...),
			Order:           in.Order,
			DefaultValue:    in.DefaultValue,
		})
		for _, cid := range dedupe(in.AppliedToCategories) {
			bindCustom(snap, id, cid)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// EditAttribute merges patch into the attribute. A present
// AppliedToCategories is the new complete set: categories dropped from it
// lose their binding, categories added to it gain an enabled binding at the
// end of their custom list, and the rest are left alone.
func (s *Store) EditAttribute(ctx context.Context, id string, patch model.AttributePatch) error {
	if err := s.checkInput(patch); err != nil {
		return err
	}

	return s.mutate(ctx, "edit_attribute", func(snap *snapshot) error {
		a, ok := snap.attributes[id]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("attribute %q not found", id))
		}
		if a.IsSystem {
			if patch.Label != nil && *patch.Label != a.Label {
				return model.NewImmutableEntityError(fmt.Sprintf("system attribute %q cannot be renamed", id))
			}
			if patch.Type != nil && *patch.Type != a.Type {
				return model.NewImmutableEntityError(fmt.Sprintf("system attribute %q cannot change type", id))
			}
			if patch.AppliedToCategories != nil && !sameSet(dedupe(*patch.AppliedToCategories), a.AppliedToCategories) {
				return model.NewImmutableEntityError(fmt.Sprintf("system attribute %q cannot change its categories", id))
			}
		}

		if patch.Label != nil {
			a.Label = *patch.Label
		}
		if patch.Type != nil {
			a.Type = *patch.Type
		}
		if patch.IsRequired != nil {
			a.IsRequired = *patch.IsRequired
		}
		if patch.Description != nil {
			a.Description = model.Ptr(*patch.Description)
		}
		if patch.DropdownOptions != nil {
			a.DropdownOptions = append([]string(nil), (*patch.DropdownOptions)...)
		}
		if patch.Order != nil {
			a.Order = model.Ptr(*patch.Order)
		}
		if patch.DefaultValue != nil {
			a.DefaultValue = model.Ptr(*patch.DefaultValue)
		}
		if a.Type != model.AttributeTypeDropdown && len(a.DropdownOptions) > 0 {
			if patch.DropdownOptions != nil {
				return model.NewInvalidInputError("dropdown options require type dropdown",
					model.FieldError{Field: "dropdown_options", Code: model.FieldInvalid, Message: "only allowed for dropdown attributes"})
			}
			// Switching away from dropdown discards the stale options.
			a.DropdownOptions = nil
		}

		if patch.AppliedToCategories == nil {
			return nil
		}
		target := dedupe(*patch.AppliedToCategories)
		if err := requireCategories(snap, "applied_to_categories", target); err != nil {
			return err
		}
		for _, cid := range append([]string(nil), a.AppliedToCategories...) {
			if !contains(target, cid) {
				unbindCustom(snap, id, cid)
			}
		}
		for _, cid := range target {
			if !a.AppliedTo(cid) {
				bindCustom(snap, id, cid)
			}
		}
		return nil
	})
}

// DeleteAttribute removes a custom attribute and every binding that
// references it.
func (s *Store) DeleteAttribute(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_attribute", func(snap *snapshot) error {
		a, ok := snap.attributes[id]
		if !ok {
			return model.NewNotFoundError(fmt.Sprintf("attribute %q not found", id))
		}
		if a.IsSystem {
			return model.NewImmutableEntityError(fmt.Sprintf("system attribute %q cannot be deleted", id))
		}
		purgeAttribute(snap, id)
		snap.dropAttribute(id)
		return nil
	})
}

// TogglePreferred flips the preferred flag. Unknown ids are ignored.
func (s *Store) TogglePreferred(ctx context.Context, id string) error {
	return s.mutate(ctx, "toggle_preferred", func(snap *snapshot) error {
		a, ok := snap.attributes[id]
		if !ok {
			return errNoChange
		}
		a.IsRequired = !a.IsRequired
		return nil
	})
}

// requireCategories fails with INVALID_INPUT listing every unknown id.
func requireCategories(snap *snapshot, field string, ids []string) error {
	var details []model.FieldError
	for _, cid := range ids {
		if _, ok := snap.categories[cid]; !ok {
			details = append(details, model.FieldError{
				Field:   field,
				Code:    model.FieldUnknown,
				Message: fmt.Sprintf("category %q does not exist", cid),
			})
		}
	}
	if len(details) > 0 {
		return model.NewInvalidInputError("unknown category", details...)
	}
	return nil
}

// freshID draws ids from the configured generator until one is unused,
// falling back to uuids if the generator keeps colliding.
func (s *Store) freshID(taken func(string) bool) string {
	for range 16 {
		if id := s.newID(); id != "" && !taken(id) {
			return id
		}
	}
	for {
		if id := uuid.New().String(); !taken(id) {
			return id
		}
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// sameSet reports whether a and b hold the same ids, ignoring order.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range a {
		if !contains(b, id) {
			return false
		}
	}
	return true
}
