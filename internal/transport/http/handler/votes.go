package handler

import (
	"encoding/json"
	"net/http"

	"github.com/devquery-api/internal/application/vote"
	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/pkg/validate"
	"github.com/devquery-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// VoteHandler handles voting on questions and answers.
type VoteHandler struct {
	svc vote.Service
}

func NewVoteHandler(svc vote.Service) *VoteHandler {
	return &VoteHandler{svc: svc}
}

type castVoteRequest struct {
	// 1 upvotes, -1 downvotes, 0 clears a previous vote.
	Value *int `json:"value" validate:"required,min=-1,max=1"`
}

type castVoteResponse struct {
	TargetID string `json:"target_id"`
	Score    int    `json:"score"`
}

func (h *VoteHandler) CastQuestion(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, domain.VoteTargetQuestion)
}

func (h *VoteHandler) CastAnswer(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, domain.VoteTargetAnswer)
}

func (h *VoteHandler) cast(w http.ResponseWriter, r *http.Request, targetKind string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID := chi.URLParam(r, "id")
	score, err := h.svc.Cast(r.Context(), claims.UserID, targetID, targetKind, *req.Value)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, castVoteResponse{TargetID: targetID, Score: score})
}
