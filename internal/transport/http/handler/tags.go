package handler

import (
	"encoding/json"
	"net/http"

	"github.com/devquery-api/internal/application/tag"
	"github.com/devquery-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// TagHandler handles the tag catalog.
type TagHandler struct {
	svc tag.Service
}

func NewTagHandler(svc tag.Service) *TagHandler {
	return &TagHandler{svc: svc}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: tags})
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TagHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description" validate:"required,max=500"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.svc.Describe(r.Context(), chi.URLParam(r, "name"), req.Description)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
