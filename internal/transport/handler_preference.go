package transport

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/model"
)

type parentInheritance struct {
	Enabled bool `json:"enabled"`
}

func (h *handlers) getParentInheritance(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, parentInheritance{Enabled: h.prefs.ParentInheritance(r.Context())})
}

func (h *handlers) setParentInheritance(w http.ResponseWriter, r *http.Request) {
	var in parentInheritance
	if !h.decodeBody(w, r, "setParentInheritance", &in) {
		return
	}
	if err := h.prefs.SetParentInheritance(r.Context(), in.Enabled); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, in)
}

func (h *handlers) toggleParentInheritance(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.prefs.ToggleParentInheritance(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, parentInheritance{Enabled: enabled})
}

func (h *handlers) resetCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.allowReset {
		WriteError(w, r, model.NewForbiddenError("catalog reset is disabled"))
		return
	}
	h.store.Reset()
	observability.RequestLogger(r.Context(), zap.NewNop()).Info("catalog reset requested",
		zap.Uint64("version", h.store.Version()),
	)
	WriteNoContent(w)
}

func (h *handlers) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	data, err := h.api.Document()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
