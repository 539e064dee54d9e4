package seed

import (
	"fmt"
	"strings"

	"github.com/pitabwire/assetattr/model"
)

// VError describes a single validation error in a seed document.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors wraps every problem found in a seed.
type ValidationErrors struct {
	Errors []VError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Error())
	}
	return fmt.Sprintf("seed validation failed: %s", strings.Join(msgs, "; "))
}

// Validator checks seed documents structurally and referentially.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks one (typically merged) definition.
func (v *Validator) Validate(def model.CatalogDefinition) []VError {
	var errs []VError
	add := func(path, code, format string, args ...any) {
		errs = append(errs, VError{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	attrIDs := make(map[string]bool, len(def.Attributes))
	for i, a := range def.Attributes {
		p := fmt.Sprintf("attributes[%d]", i)
		switch {
		case blank(a.ID):
			add(p+".id", "REQUIRED", "id is required")
		case attrIDs[a.ID]:
			add(p+".id", "DUPLICATE_ID", "attribute id %q is declared more than once", a.ID)
		}
		attrIDs[a.ID] = true

		if blank(a.Label) {
			add(p+".label", "REQUIRED", "label is required")
		}
		if !a.Type.Valid() {
			add(p+".type", "INVALID_TYPE", "type %q is not one of text, number, dropdown, date, boolean", a.Type)
		}
		if a.Type != model.AttributeTypeDropdown && len(a.DropdownOptions) > 0 {
			add(p+".dropdown_options", "INVALID", "dropdown_options are only allowed for dropdown attributes")
		}
	}

	catIDs := make(map[string]bool, len(def.Categories))
	for i, c := range def.Categories {
		p := fmt.Sprintf("categories[%d]", i)
		switch {
		case blank(c.ID):
			add(p+".id", "REQUIRED", "id is required")
		case catIDs[c.ID]:
			add(p+".id", "DUPLICATE_ID", "category id %q is declared more than once", c.ID)
		}
		catIDs[c.ID] = true
		if blank(c.Name) {
			add(p+".name", "REQUIRED", "name is required")
		}
	}

	parents := make(map[string]string, len(def.Categories))
	for i, c := range def.Categories {
		p := fmt.Sprintf("categories[%d]", i)
		if !c.IsRoot() {
			parents[c.ID] = *c.ParentID
			if !catIDs[*c.ParentID] {
				add(p+".parent_id", "UNKNOWN_REFERENCE", "parent %q does not exist", *c.ParentID)
			}
		}
		errs = append(errs, validateBindings(p+".system_attributes", c.SystemAttributes, attrIDs)...)
		errs = append(errs, validateBindings(p+".custom_attributes", c.CustomAttributes, attrIDs)...)
	}
	for i, c := range def.Categories {
		if inCycle(c.ID, parents) {
			add(fmt.Sprintf("categories[%d].parent_id", i), "CYCLE", "category %q is its own ancestor", c.ID)
		}
	}

	customBound := make(map[string]map[string]bool)
	for _, c := range def.Categories {
		for _, b := range c.CustomAttributes {
			if customBound[b.AttributeID] == nil {
				customBound[b.AttributeID] = make(map[string]bool)
			}
			customBound[b.AttributeID][c.ID] = true
		}
	}
	for i, a := range def.Attributes {
		p := fmt.Sprintf("attributes[%d].applied_to_categories", i)
		listed := make(map[string]bool, len(a.AppliedToCategories))
		for _, cid := range a.AppliedToCategories {
			listed[cid] = true
			if !catIDs[cid] {
				add(p, "UNKNOWN_REFERENCE", "category %q does not exist", cid)
				continue
			}
			if !a.IsSystem && !customBound[a.ID][cid] {
				add(p, "UNBOUND", "category %q has no custom binding for %q", cid, a.ID)
			}
		}
		for _, c := range def.Categories {
			if a.IsSystem && customBound[a.ID][c.ID] {
				add(p, "SYSTEM_IN_CUSTOM", "category %q binds system attribute %q in its custom list", c.ID, a.ID)
				continue
			}
			if customBound[a.ID][c.ID] && !listed[c.ID] {
				add(p, "MISSING", "category %q binds %q but is not listed", c.ID, a.ID)
			}
		}
	}

	mfrIDs := make(map[string]bool, len(def.Manufacturers))
	for i, m := range def.Manufacturers {
		p := fmt.Sprintf("manufacturers[%d]", i)
		switch {
		case blank(m.ID):
			add(p+".id", "REQUIRED", "id is required")
		case mfrIDs[m.ID]:
			add(p+".id", "DUPLICATE_ID", "manufacturer id %q is declared more than once", m.ID)
		}
		mfrIDs[m.ID] = true
		if blank(m.Name) {
			add(p+".name", "REQUIRED", "name is required")
		}

		modelIDs := make(map[string]bool, len(m.Models))
		for j, md := range m.Models {
			mp := fmt.Sprintf("%s.models[%d]", p, j)
			switch {
			case blank(md.ID):
				add(mp+".id", "REQUIRED", "id is required")
			case modelIDs[md.ID]:
				add(mp+".id", "DUPLICATE_ID", "model id %q is declared more than once", md.ID)
			}
			modelIDs[md.ID] = true
			if blank(md.Name) {
				add(mp+".name", "REQUIRED", "name is required")
			}
		}
		for _, cid := range m.UsedByCategories {
			if !catIDs[cid] {
				add(p+".used_by_categories", "UNKNOWN_REFERENCE", "category %q does not exist", cid)
			}
		}
	}

	return errs
}

func validateBindings(prefix string, list []model.CategoryAttributeConfig, attrIDs map[string]bool) []VError {
	var errs []VError
	seen := make(map[string]bool, len(list))
	for j, b := range list {
		p := fmt.Sprintf("%s[%d].attribute_id", prefix, j)
		if !attrIDs[b.AttributeID] {
			errs = append(errs, VError{Path: p, Code: "UNKNOWN_REFERENCE", Message: fmt.Sprintf("attribute %q does not exist", b.AttributeID)})
		}
		if seen[b.AttributeID] {
			errs = append(errs, VError{Path: p, Code: "DUPLICATE_BINDING", Message: fmt.Sprintf("attribute %q is bound twice", b.AttributeID)})
		}
		seen[b.AttributeID] = true
	}
	return errs
}

// inCycle reports whether following parents from id returns to id.
func inCycle(id string, parents map[string]string) bool {
	visited := map[string]bool{}
	for cur, ok := parents[id]; ok; cur, ok = parents[cur] {
		if cur == id {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
