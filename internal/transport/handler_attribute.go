package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/model"
)

func (h *handlers) listAttributes(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, orEmpty(h.store.Attributes()))
}

func (h *handlers) addAttribute(w http.ResponseWriter, r *http.Request) {
	var in model.AttributeInput
	if !h.decodeBody(w, r, "addAttribute", &in) {
		return
	}

	var id string
	err := traced(r, "addAttribute", func(ctx context.Context) error {
		var err error
		id, err = h.store.AddAttribute(ctx, in)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/attributes/"+id)
	WriteJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) getAttribute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := h.store.Attribute(id)
	if !ok {
		WriteNotFound(w, r, fmt.Sprintf("attribute %q not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func (h *handlers) editAttribute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch model.AttributePatch
	if !h.decodeBody(w, r, "editAttribute", &patch) {
		return
	}

	err := traced(r, "editAttribute", func(ctx context.Context) error {
		return h.store.EditAttribute(ctx, id, patch)
	}, observability.AttrAttributeID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.writeAttribute(w, r, id)
}

func (h *handlers) deleteAttribute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := traced(r, "deleteAttribute", func(ctx context.Context) error {
		return h.store.DeleteAttribute(ctx, id)
	}, observability.AttrAttributeID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) togglePreferred(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := traced(r, "togglePreferred", func(ctx context.Context) error {
		return h.store.TogglePreferred(ctx, id)
	}, observability.AttrAttributeID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) writeAttribute(w http.ResponseWriter, r *http.Request, id string) {
	a, ok := h.store.Attribute(id)
	if !ok {
		WriteNotFound(w, r, fmt.Sprintf("attribute %q not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

type createdResponse struct {
	ID string `json:"id"`
}

// orEmpty keeps empty collections encoding as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
