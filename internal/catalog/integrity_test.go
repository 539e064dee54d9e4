package catalog

import (
	"testing"

	"github.com/pitabwire/assetattr/model"
)

func TestCheckIntegrity_clean(t *testing.T) {
	if p := checkIntegrity(snapshotFromDefinition(testSeed())); len(p) != 0 {
		t.Errorf("problems = %+v, want none", p)
	}
}

func TestCheckIntegrity_findsProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CatalogDefinition)
		field  string
		code   string
	}{
		{
			name:   "dangling system binding",
			mutate: func(d *model.CatalogDefinition) { d.Categories[0].SystemAttributes[0].AttributeID = "ghost" },
			field:  "categories.heating.system_attributes",
			code:   model.FieldUnknown,
		},
		{
			name: "duplicate binding",
			mutate: func(d *model.CatalogDefinition) {
				d.Categories[1].SystemAttributes = append(d.Categories[1].SystemAttributes, d.Categories[1].SystemAttributes[0])
			},
			field: "categories.boiler.system_attributes",
			code:  model.FieldInvalid,
		},
		{
			name:   "unknown parent",
			mutate: func(d *model.CatalogDefinition) { d.Categories[2].ParentID = strPtr("ghost") },
			field:  "categories.cctv.parent_id",
			code:   model.FieldUnknown,
		},
		{
			name:   "self parent",
			mutate: func(d *model.CatalogDefinition) { d.Categories[2].ParentID = strPtr("cctv") },
			field:  "categories.cctv.parent_id",
			code:   model.FieldInvalid,
		},
		{
			name:   "applied to unknown category",
			mutate: func(d *model.CatalogDefinition) { d.Attributes[3].AppliedToCategories = append(d.Attributes[3].AppliedToCategories, "ghost") },
			field:  "attributes.colour.applied_to_categories",
			code:   model.FieldUnknown,
		},
		{
			name: "system attribute in custom list",
			mutate: func(d *model.CatalogDefinition) {
				d.Attributes[1].AppliedToCategories = []string{"boiler"}
				d.Categories[1].CustomAttributes = append(d.Categories[1].CustomAttributes,
					model.CategoryAttributeConfig{AttributeID: "model", IsEnabled: true, Order: 1})
			},
			field: "categories.boiler.custom_attributes",
			code:  model.FieldInvalid,
		},
		{
			name:   "used by unknown category",
			mutate: func(d *model.CatalogDefinition) { d.Manufacturers[0].UsedByCategories = []string{"ghost"} },
			field:  "manufacturers.acme.used_by_categories",
			code:   model.FieldUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testSeed()
			tt.mutate(&def)

			problems := checkIntegrity(snapshotFromDefinition(def))
			found := false
			for _, p := range problems {
				if p.Field == tt.field && p.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("problems = %+v, want %s %s", problems, tt.field, tt.code)
			}
		})
	}
}

func TestCheckIntegrity_systemAttributeNeedsNoCustomBinding(t *testing.T) {
	def := testSeed()
	def.Attributes[0].AppliedToCategories = []string{"heating"}

	if p := checkIntegrity(snapshotFromDefinition(def)); len(p) != 0 {
		t.Errorf("problems = %+v, want none", p)
	}
}

func TestIsAncestor(t *testing.T) {
	snap := snapshotFromDefinition(testSeed())

	if !isAncestor(snap, "boiler", "heating") {
		t.Error("heating should be on boiler's chain")
	}
	if isAncestor(snap, "heating", "boiler") {
		t.Error("boiler is not an ancestor of heating")
	}
	if isAncestor(snap, "cctv", "heating") {
		t.Error("cctv chain does not include heating")
	}
}
