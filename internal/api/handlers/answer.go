package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/susankaotw/bulau/internal/api"
	"github.com/susankaotw/bulau/internal/service"
)

type AnswerGate interface {
	CheckAccess(ctx context.Context, identity service.Identity) service.GateResult
}

type AnswerResolver interface {
	Resolve(ctx context.Context, query string, limit int) (*service.Resolution, error)
}

// AnswerHandler serves the direct lookup API for non-chat callers.
type AnswerHandler struct {
	gate     AnswerGate
	resolver AnswerResolver
}

func NewAnswerHandler(gate AnswerGate, resolver AnswerResolver) *AnswerHandler {
	return &AnswerHandler{gate: gate, resolver: resolver}
}

// AnswerRequest accepts the query under any of the keys legacy callers
// send.
type AnswerRequest struct {
	Email      string `json:"email"`
	Q          string `json:"q"`
	Question   string `json:"question"`
	QuestionZh string `json:"問題"`
}

func (r *AnswerRequest) query() string {
	if r.Q != "" {
		return r.Q
	}
	if r.Question != "" {
		return r.Question
	}
	return r.QuestionZh
}

// Lookup handles POST /answer.
func (h *AnswerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := service.NormalizeQuery(req.query())
	if query == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	gate := h.gate.CheckAccess(r.Context(), service.Identity{Email: req.Email})
	if !gate.Allowed {
		api.ErrorWithReason(w, api.ReasonToHTTP(gate.Reason), gate.Message, gate.Reason)
		return
	}

	res, err := h.resolver.Resolve(r.Context(), query, service.DefaultLimit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, service.BuildAnswerResponse(req.Email, res))
}
