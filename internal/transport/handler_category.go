package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/model"
)

// categoryPatch renames and/or moves a category. An explicit null parent_id
// moves it to the root.
type categoryPatch struct {
	Name     *string        `json:"name"`
	ParentID nullableString `json:"parent_id"`
}

type reorderInput struct {
	AttributeIDs []string `json:"attribute_ids"`
}

func (h *handlers) listCategories(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, orEmpty(h.store.Categories()))
}

func (h *handlers) addCategory(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if !h.decodeBody(w, r, "addCategory", &in) {
		return
	}

	var id string
	err := traced(r, "addCategory", func(ctx context.Context) error {
		var err error
		id, err = h.store.AddCategory(ctx, in)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+id)
	WriteJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := h.store.Category(id)
	if !ok {
		WriteNotFound(w, r, fmt.Sprintf("category %q not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch categoryPatch
	if !h.decodeBody(w, r, "updateCategory", &patch) {
		return
	}

	// Move before rename: only the move can be refused on a valid body.
	err := traced(r, "updateCategory", func(ctx context.Context) error {
		if patch.ParentID.Set {
			if err := h.store.MoveCategory(ctx, id, patch.ParentID.Value); err != nil {
				return err
			}
		}
		if patch.Name != nil {
			return h.store.RenameCategory(ctx, id, *patch.Name)
		}
		return nil
	}, observability.AttrCategoryID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	c, ok := h.store.Category(id)
	if !ok {
		WriteNotFound(w, r, fmt.Sprintf("category %q not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := traced(r, "deleteCategory", func(ctx context.Context) error {
		return h.store.DeleteCategory(ctx, id)
	}, observability.AttrCategoryID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) getCategoryPath(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, orEmpty(h.store.Path(chi.URLParam(r, "id"))))
}

func (h *handlers) getInheritedAttributes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.Inherited(chi.URLParam(r, "id")))
}

func (h *handlers) getEffectiveAttributes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	include := h.prefs.ParentInheritance(r.Context())

	_, span := observability.StartSpan(r.Context(), "catalog.effectiveAttributes",
		observability.AttrCategoryID.String(id),
		observability.AttrInherited.Bool(include),
		observability.AttrVersion.Int64(int64(h.store.Version())),
	)
	rows, err := h.store.EffectiveAttributes(id, include)
	observability.EndSpanWithError(span, err)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (h *handlers) reorderAttributes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in reorderInput
	if !h.decodeBody(w, r, "reorderAttributes", &in) {
		return
	}

	err := traced(r, "reorderAttributes", func(ctx context.Context) error {
		return h.store.ReorderAttributes(ctx, id, in.AttributeIDs)
	}, observability.AttrCategoryID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) applyAttribute(w http.ResponseWriter, r *http.Request) {
	categoryID, attributeID := chi.URLParam(r, "id"), chi.URLParam(r, "attributeId")
	err := traced(r, "applyAttribute", func(ctx context.Context) error {
		return h.store.ApplyAttribute(ctx, attributeID, categoryID)
	}, observability.AttrCategoryID.String(categoryID), observability.AttrAttributeID.String(attributeID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) removeAttribute(w http.ResponseWriter, r *http.Request) {
	categoryID, attributeID := chi.URLParam(r, "id"), chi.URLParam(r, "attributeId")
	err := traced(r, "removeAttribute", func(ctx context.Context) error {
		return h.store.RemoveAttribute(ctx, attributeID, categoryID)
	}, observability.AttrCategoryID.String(categoryID), observability.AttrAttributeID.String(attributeID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) toggleAttribute(w http.ResponseWriter, r *http.Request) {
	categoryID, attributeID := chi.URLParam(r, "id"), chi.URLParam(r, "attributeId")

	var systemList bool
	switch list := r.URL.Query().Get("list"); list {
	case "system":
		systemList = true
	case "custom":
	case "":
		WriteError(w, r, model.NewInvalidInputError("list is required",
			model.FieldError{Field: "list", Code: model.FieldRequired, Message: "list must be system or custom"}))
		return
	default:
		WriteError(w, r, model.NewInvalidInputError("list is invalid",
			model.FieldError{Field: "list", Code: model.FieldInvalid, Message: fmt.Sprintf("unknown list %q", list)}))
		return
	}

	err := traced(r, "toggleAttribute", func(ctx context.Context) error {
		return h.store.ToggleAttribute(ctx, categoryID, attributeID, systemList)
	}, observability.AttrCategoryID.String(categoryID), observability.AttrAttributeID.String(attributeID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
