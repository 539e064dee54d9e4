package catalog

import (
	"fmt"

	"github.com/pitabwire/assetattr/model"
)

// checkIntegrity reports every cross-collection inconsistency in s. An empty
// result means the snapshot is fully reconciled.
func checkIntegrity(s *snapshot) []model.FieldError {
	var problems []model.FieldError
	add := func(field, code, format string, args ...any) {
		problems = append(problems, model.FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	for _, id := range s.categoryOrder {
		c := s.categories[id]
		if c.ID == "" {
			add("categories", model.FieldRequired, "category id is empty")
		}
		if parent := s.parentOf(c); parent != "" {
			if _, ok := s.categories[parent]; !ok {
				add("categories."+id+".parent_id", model.FieldUnknown, "parent %q does not exist", parent)
			}
		}
		checkBindings(s, "categories."+id+".system_attributes", c.SystemAttributes, add)
		checkBindings(s, "categories."+id+".custom_attributes", c.CustomAttributes, add)
		for _, b := range c.CustomAttributes {
			a, ok := s.attributes[b.AttributeID]
			switch {
			case !ok:
			case a.IsSystem:
				add("categories."+id+".custom_attributes", model.FieldInvalid,
					"system attribute %q is bound in a custom list", b.AttributeID)
			case !a.AppliedTo(id):
				add("categories."+id+".custom_attributes", model.FieldInvalid,
					"attribute %q is bound but does not list the category", b.AttributeID)
			}
		}
	}

	for _, cycle := range findCycles(s) {
		add("categories."+cycle+".parent_id", model.FieldInvalid, "category %q is its own ancestor", cycle)
	}

	for _, id := range s.attributeOrder {
		a := s.attributes[id]
		for _, cid := range a.AppliedToCategories {
			c, ok := s.categories[cid]
			if !ok {
				add("attributes."+id+".applied_to_categories", model.FieldUnknown, "category %q does not exist", cid)
				continue
			}
			// System attributes are bound through the system list, which
			// is seed data and not mirrored in AppliedToCategories.
			if !a.IsSystem && indexOf(c.CustomAttributes, id) < 0 {
				add("attributes."+id+".applied_to_categories", model.FieldInvalid,
					"category %q lists no binding for the attribute", cid)
			}
		}
	}

	for _, id := range s.manufacturerOrder {
		m := s.manufacturers[id]
		for _, cid := range m.UsedByCategories {
			if _, ok := s.categories[cid]; !ok {
				add("manufacturers."+id+".used_by_categories", model.FieldUnknown, "category %q does not exist", cid)
			}
		}
	}

	return problems
}

func checkBindings(s *snapshot, field string, list []model.CategoryAttributeConfig, add func(field, code, format string, args ...any)) {
	seen := make(map[string]bool, len(list))
	for _, b := range list {
		if _, ok := s.attributes[b.AttributeID]; !ok {
			add(field, model.FieldUnknown, "attribute %q does not exist", b.AttributeID)
		}
		if seen[b.AttributeID] {
			add(field, model.FieldInvalid, "attribute %q is bound twice", b.AttributeID)
		}
		seen[b.AttributeID] = true
	}
}

// findCycles returns the ids of categories that are their own ancestor, in
// category order.
func findCycles(s *snapshot) []string {
	var out []string
	for _, id := range s.categoryOrder {
		visited := map[string]bool{id: true}
		cur := s.parentOf(s.categories[id])
		for cur != "" {
			if cur == id {
				out = append(out, id)
				break
			}
			if visited[cur] {
				break
			}
			visited[cur] = true
			c, ok := s.categories[cur]
			if !ok {
				break
			}
			cur = s.parentOf(c)
		}
	}
	return out
}

// isAncestor reports whether candidate appears on the parent chain starting
// at parentID. Unknown ids end the walk.
func isAncestor(s *snapshot, parentID, candidate string) bool {
	visited := make(map[string]bool)
	for cur := parentID; cur != "" && !visited[cur]; {
		if cur == candidate {
			return true
		}
		visited[cur] = true
		c, ok := s.categories[cur]
		if !ok {
			return false
		}
		cur = s.parentOf(c)
	}
	return false
}

func indexOf(list []model.CategoryAttributeConfig, attributeID string) int {
	for i, b := range list {
		if b.AttributeID == attributeID {
			return i
		}
	}
	return -1
}
