package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kassa-dev/kassa/internal/domain/settings"
)

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]settingResponse, len(all))
	for i, s := range all {
		out[i] = settingResponse{Key: s.Key, Value: s.Value}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s, err := h.settings.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: s.Key, Value: s.Value})
}

func (h *Handler) deleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusUnprocessableEntity, "key is required")
		return
	}
	s := settings.Setting{Key: req.Key, Value: req.Value}
	if err := h.settings.Set(r.Context(), &s); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: s.Key, Value: s.Value})
}
