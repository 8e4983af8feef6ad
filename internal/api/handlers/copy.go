package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"github.com/susankaotw/bulau/internal/api"
	"github.com/susankaotw/bulau/internal/repository"
	"github.com/susankaotw/bulau/internal/service"
)

type CopyGenerator interface {
	Generate(ctx context.Context, topic string) (*service.CopyResult, error)
}

// CopyHandler serves marketing copy generation for non-chat callers.
type CopyHandler struct {
	copywriter CopyGenerator
	records    service.AuditLog
}

// NewCopyHandler creates a new CopyHandler. A nil copywriter reports the
// feature as unconfigured; a nil records log skips the audit write.
func NewCopyHandler(copywriter CopyGenerator, records service.AuditLog) *CopyHandler {
	return &CopyHandler{copywriter: copywriter, records: records}
}

// Hint handles GET /copy, a reachability probe.
func (h *CopyHandler) Hint(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"hint": "POST { topic, userId, email? }",
	})
}

type copyRequest struct {
	Topic  string `json:"topic"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type copyResponse struct {
	OK        bool         `json:"ok"`
	Answer    string       `json:"answer"`
	Tokens    openai.Usage `json:"tokens"`
	LatencyMS int64        `json:"latency_ms"`
}

// Generate handles POST /copy.
func (h *CopyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.copywriter == nil {
		api.Error(w, http.StatusServiceUnavailable, "OPENAI_API_KEY not configured")
		return
	}

	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	topic := service.NormalizeQuery(req.Topic)
	if topic == "" {
		api.Error(w, http.StatusBadRequest, "缺少 topic")
		return
	}

	result, err := h.copywriter.Generate(r.Context(), topic)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.records != nil {
		_, err := h.records.Create(r.Context(), repository.RecordInput{
			Email:    req.Email,
			UserID:   req.UserID,
			Category: repository.CategoryAICopy,
			Content:  topic,
			Source:   "API",
			AINote:   result.Text,
		})
		if err != nil {
			log.Printf("copy: record write failed: %v", err)
		}
	}

	api.JSON(w, http.StatusOK, copyResponse{
		OK:        true,
		Answer:    result.Text,
		Tokens:    result.Usage,
		LatencyMS: result.LatencyMS,
	})
}
