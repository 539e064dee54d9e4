package catalog

import (
	"github.com/pitabwire/assetattr/model"
)

// snapshot is one fully reconciled state of the catalog. A published snapshot
// is never mutated; writers work on a clone.
type snapshot struct {
	version uint64

	attributes    map[string]*model.Attribute
	categories    map[string]*model.Category
	manufacturers map[string]*model.Manufacturer

	// Insertion order for stable listings.
	attributeOrder    []string
	categoryOrder     []string
	manufacturerOrder []string
}

func newSnapshot() *snapshot {
	return &snapshot{
		attributes:    make(map[string]*model.Attribute),
		categories:    make(map[string]*model.Category),
		manufacturers: make(map[string]*model.Manufacturer),
	}
}

// snapshotFromDefinition indexes a seed. Duplicate ids keep the last entry.
func snapshotFromDefinition(def model.CatalogDefinition) *snapshot {
	s := newSnapshot()
	for _, a := range def.Attributes {
		s.putAttribute(a.Clone())
	}
	for _, c := range def.Categories {
		s.putCategory(c.Clone())
	}
	for _, m := range def.Manufacturers {
		s.putManufacturer(m.Clone())
	}
	return s
}

func (s *snapshot) clone() *snapshot {
	out := &snapshot{
		version:           s.version,
		attributes:        make(map[string]*model.Attribute, len(s.attributes)),
		categories:        make(map[string]*model.Category, len(s.categories)),
		manufacturers:     make(map[string]*model.Manufacturer, len(s.manufacturers)),
		attributeOrder:    append([]string(nil), s.attributeOrder...),
		categoryOrder:     append([]string(nil), s.categoryOrder...),
		manufacturerOrder: append([]string(nil), s.manufacturerOrder...),
	}
	for id, a := range s.attributes {
		c := a.Clone()
		out.attributes[id] = &c
	}
	for id, c := range s.categories {
		cc := c.Clone()
		out.categories[id] = &cc
	}
	for id, m := range s.manufacturers {
		mc := m.Clone()
		out.manufacturers[id] = &mc
	}
	return out
}

func (s *snapshot) putAttribute(a model.Attribute) {
	if _, ok := s.attributes[a.ID]; !ok {
		s.attributeOrder = append(s.attributeOrder, a.ID)
	}
	s.attributes[a.ID] = &a
}

func (s *snapshot) putCategory(c model.Category) {
	if _, ok := s.categories[c.ID]; !ok {
		s.categoryOrder = append(s.categoryOrder, c.ID)
	}
	s.categories[c.ID] = &c
}

func (s *snapshot) putManufacturer(m model.Manufacturer) {
	if _, ok := s.manufacturers[m.ID]; !ok {
		s.manufacturerOrder = append(s.manufacturerOrder, m.ID)
	}
	s.manufacturers[m.ID] = &m
}

func (s *snapshot) dropAttribute(id string) {
	delete(s.attributes, id)
	s.attributeOrder = without(s.attributeOrder, id)
}

func (s *snapshot) dropCategory(id string) {
	delete(s.categories, id)
	s.categoryOrder = without(s.categoryOrder, id)
}

func (s *snapshot) dropManufacturer(id string) {
	delete(s.manufacturers, id)
	s.manufacturerOrder = without(s.manufacturerOrder, id)
}

// parentOf returns the parent id of a category, or "" for roots.
func (s *snapshot) parentOf(c *model.Category) string {
	if c.IsRoot() {
		return ""
	}
	return *c.ParentID
}

// definition renders the snapshot back into seed form.
func (s *snapshot) definition() model.CatalogDefinition {
	def := model.CatalogDefinition{
		Attributes:    make([]model.Attribute, 0, len(s.attributeOrder)),
		Categories:    make([]model.Category, 0, len(s.categoryOrder)),
		Manufacturers: make([]model.Manufacturer, 0, len(s.manufacturerOrder)),
	}
	for _, id := range s.attributeOrder {
		def.Attributes = append(def.Attributes, s.attributes[id].Clone())
	}
	for _, id := range s.categoryOrder {
		def.Categories = append(def.Categories, s.categories[id].Clone())
	}
	for _, id := range s.manufacturerOrder {
		def.Manufacturers = append(def.Manufacturers, s.manufacturers[id].Clone())
	}
	return def
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
