package catalog

import (
	"github.com/pitabwire/assetattr/model"
)

// bindCustom links an attribute to a category on both sides: an enabled
// binding appended to the category's custom list and the category id added to
// the attribute's AppliedToCategories. Both must exist. It reports whether
// anything changed.
func bindCustom(s *snapshot, attributeID, categoryID string) bool {
	a := s.attributes[attributeID]
	c := s.categories[categoryID]

	changed := false
	if indexOf(c.CustomAttributes, attributeID) < 0 {
		c.CustomAttributes = append(c.CustomAttributes, model.CategoryAttributeConfig{
			AttributeID: attributeID,
			IsEnabled:   true,
			Order:       len(c.CustomAttributes),
		})
		changed = true
	}
	if !a.AppliedTo(categoryID) {
		a.AppliedToCategories = append(a.AppliedToCategories, categoryID)
		changed = true
	}
	return changed
}

// unbindCustom is the inverse of bindCustom. Either side may be missing.
func unbindCustom(s *snapshot, attributeID, categoryID string) bool {
	changed := false
	if c, ok := s.categories[categoryID]; ok {
		if i := indexOf(c.CustomAttributes, attributeID); i >= 0 {
			c.CustomAttributes = append(c.CustomAttributes[:i:i], c.CustomAttributes[i+1:]...)
			changed = true
		}
	}
	if a, ok := s.attributes[attributeID]; ok && a.AppliedTo(categoryID) {
		a.AppliedToCategories = without(a.AppliedToCategories, categoryID)
		changed = true
	}
	return changed
}

// purgeAttribute removes every binding of attributeID from both lists of
// every category.
func purgeAttribute(s *snapshot, attributeID string) {
	for _, c := range s.categories {
		if i := indexOf(c.SystemAttributes, attributeID); i >= 0 {
			c.SystemAttributes = append(c.SystemAttributes[:i:i], c.SystemAttributes[i+1:]...)
		}
		if i := indexOf(c.CustomAttributes, attributeID); i >= 0 {
			c.CustomAttributes = append(c.CustomAttributes[:i:i], c.CustomAttributes[i+1:]...)
		}
	}
}
