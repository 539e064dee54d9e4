package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/model"
)

func (h *handlers) listManufacturers(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, orEmpty(h.store.Manufacturers()))
}

func (h *handlers) addManufacturer(w http.ResponseWriter, r *http.Request) {
	var in model.NameInput
	if !h.decodeBody(w, r, "addManufacturer", &in) {
		return
	}

	var id string
	err := traced(r, "addManufacturer", func(ctx context.Context) error {
		var err error
		id, err = h.store.AddManufacturer(ctx, in.Name)
		return err
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/manufacturers/"+id)
	WriteJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (h *handlers) getManufacturer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := h.store.Manufacturer(id)
	if !ok {
		WriteNotFound(w, r, fmt.Sprintf("manufacturer %q not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (h *handlers) editManufacturer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.NameInput
	if !h.decodeBody(w, r, "editManufacturer", &in) {
		return
	}

	err := traced(r, "editManufacturer", func(ctx context.Context) error {
		return h.store.EditManufacturer(ctx, id, in.Name)
	}, observability.AttrManufacturerID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.getManufacturer(w, r)
}

func (h *handlers) deleteManufacturer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := traced(r, "deleteManufacturer", func(ctx context.Context) error {
		return h.store.DeleteManufacturer(ctx, id)
	}, observability.AttrManufacturerID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) addModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.NameInput
	if !h.decodeBody(w, r, "addModel", &in) {
		return
	}

	var modelID string
	err := traced(r, "addModel", func(ctx context.Context) error {
		var err error
		modelID, err = h.store.AddModel(ctx, id, in.Name)
		return err
	}, observability.AttrManufacturerID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, createdResponse{ID: modelID})
}

func (h *handlers) editModel(w http.ResponseWriter, r *http.Request) {
	id, modelID := chi.URLParam(r, "id"), chi.URLParam(r, "modelId")
	var in model.NameInput
	if !h.decodeBody(w, r, "editModel", &in) {
		return
	}

	err := traced(r, "editModel", func(ctx context.Context) error {
		return h.store.EditModel(ctx, id, modelID, in.Name)
	}, observability.AttrManufacturerID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) deleteModel(w http.ResponseWriter, r *http.Request) {
	id, modelID := chi.URLParam(r, "id"), chi.URLParam(r, "modelId")
	err := traced(r, "deleteModel", func(ctx context.Context) error {
		return h.store.DeleteModel(ctx, id, modelID)
	}, observability.AttrManufacturerID.String(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) linkManufacturer(w http.ResponseWriter, r *http.Request) {
	id, categoryID := chi.URLParam(r, "id"), chi.URLParam(r, "categoryId")
	err := traced(r, "linkManufacturer", func(ctx context.Context) error {
		return h.store.LinkManufacturer(ctx, id, categoryID)
	}, observability.AttrManufacturerID.String(id), observability.AttrCategoryID.String(categoryID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

func (h *handlers) unlinkManufacturer(w http.ResponseWriter, r *http.Request) {
	id, categoryID := chi.URLParam(r, "id"), chi.URLParam(r, "categoryId")
	err := traced(r, "unlinkManufacturer", func(ctx context.Context) error {
		return h.store.UnlinkManufacturer(ctx, id, categoryID)
	}, observability.AttrManufacturerID.String(id), observability.AttrCategoryID.String(categoryID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
