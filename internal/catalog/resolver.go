package catalog

import (
	"fmt"

	"github.com/pitabwire/assetattr/model"
)

// Path returns the chain of categories from the root down to categoryID.
// An unknown id yields nil. The walk stops at the first repeated or
// unresolvable id.
func (s *Store) Path(categoryID string) []model.Category {
	snap := s.current()
	chain := ancestry(snap, categoryID)
	if len(chain) == 0 {
		return nil
	}
	out := make([]model.Category, len(chain))
	for i, c := range chain {
		out[len(chain)-1-i] = c.Clone()
	}
	return out
}

// Inherited returns the bindings contributed by the ancestors of categoryID,
// root first. Within each ancestor the system and custom lists keep their own
// order. The category's own bindings are never included.
func (s *Store) Inherited(categoryID string) model.InheritedAttributes {
	snap := s.current()
	out := model.InheritedAttributes{
		System: []model.CategoryAttributeConfig{},
		Custom: []model.CategoryAttributeConfig{},
	}
	for _, c := range ancestorsRootFirst(snap, categoryID) {
		out.System = append(out.System, c.SystemAttributes...)
		out.Custom = append(out.Custom, c.CustomAttributes...)
	}
	return out
}

// EffectiveAttributes resolves the attribute set shown for a category: the
// inherited rows (when includeInherited is set) followed by the category's
// own, each tagged core or category. Bindings whose attribute no longer
// resolves are skipped.
func (s *Store) EffectiveAttributes(categoryID string, includeInherited bool) ([]model.EffectiveAttribute, error) {
	snap := s.current()
	c, ok := snap.categories[categoryID]
	if !ok {
		return nil, model.NewNotFoundError(fmt.Sprintf("category %q not found", categoryID))
	}

	var out []model.EffectiveAttribute
	emit := func(source *model.Category, inherited bool) {
		for _, b := range source.SystemAttributes {
			out = appendEffective(out, snap, model.AttributeKindCore, b, source.ID, inherited)
		}
		for _, b := range source.CustomAttributes {
			out = appendEffective(out, snap, model.AttributeKindCategory, b, source.ID, inherited)
		}
	}
	if includeInherited {
		for _, anc := range ancestorsRootFirst(snap, categoryID) {
			emit(anc, true)
		}
	}
	emit(c, false)

	if out == nil {
		out = []model.EffectiveAttribute{}
	}
	return out, nil
}

func appendEffective(out []model.EffectiveAttribute, snap *snapshot, kind model.AttributeKind, b model.CategoryAttributeConfig, source string, inherited bool) []model.EffectiveAttribute {
	a, ok := snap.attributes[b.AttributeID]
	if !ok {
		return out
	}
	return append(out, model.EffectiveAttribute{
		Kind:             kind,
		Attribute:        a.Clone(),
		Binding:          b,
		SourceCategoryID: source,
		Inherited:        inherited,
	})
}

// ancestry walks from categoryID up through its parents, nearest first,
// starting with the category itself. The visited set bounds the walk on a
// cyclic tree.
func ancestry(snap *snapshot, categoryID string) []*model.Category {
	var chain []*model.Category
	visited := make(map[string]bool)
	for cur := categoryID; cur != "" && !visited[cur]; {
		visited[cur] = true
		c, ok := snap.categories[cur]
		if !ok {
			break
		}
		chain = append(chain, c)
		cur = snap.parentOf(c)
	}
	return chain
}

// ancestorsRootFirst returns the proper ancestors of categoryID ordered from
// the root to the nearest parent.
func ancestorsRootFirst(snap *snapshot, categoryID string) []*model.Category {
	chain := ancestry(snap, categoryID)
	if len(chain) <= 1 {
		return nil
	}
	ancestors := chain[1:]
	out := make([]*model.Category, len(ancestors))
	for i, c := range ancestors {
		out[len(ancestors)-1-i] = c
	}
	return out
}
