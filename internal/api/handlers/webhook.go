package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/susankaotw/bulau/internal/api"
	"github.com/susankaotw/bulau/internal/line"
	"github.com/susankaotw/bulau/internal/service"
)

type WebhookChat interface {
	HandleEvent(ctx context.Context, ev line.Event)
	HandleText(ctx context.Context, text, userID, replyToken, source string) (*service.ChatOutcome, error)
}

// WebhookHandler receives chat platform deliveries and a direct JSON test
// form. Event handling always answers 200: the platform retries non-2xx
// deliveries and a retry storm helps nobody.
type WebhookHandler struct {
	chat          WebhookChat
	channelSecret string
}

// NewWebhookHandler creates a new WebhookHandler. An empty channelSecret
// skips signature validation.
func NewWebhookHandler(chat WebhookChat, channelSecret string) *WebhookHandler {
	return &WebhookHandler{chat: chat, channelSecret: channelSecret}
}

// Hint handles GET /webhook, a reachability probe.
func (h *WebhookHandler) Hint(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"hint": "POST { text, userId } 或 LINE Webhook events。文案：以『文案 你的主題』觸發產文。",
	})
}

type directRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
}

// Receive handles POST /webhook.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if h.channelSecret != "" {
		if !line.ValidateSignature(h.channelSecret, body, r.Header.Get("X-Line-Signature")) {
			api.Error(w, http.StatusForbidden, "invalid signature")
			return
		}
	}

	var batch line.WebhookRequest
	if err := json.Unmarshal(body, &batch); err == nil && len(batch.Events) > 0 {
		for _, ev := range batch.Events {
			h.chat.HandleEvent(r.Context(), ev)
		}
		api.JSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	var direct directRequest
	if err := json.Unmarshal(body, &direct); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if service.NormalizeQuery(direct.Text) == "" {
		api.Error(w, http.StatusBadRequest, "缺少 text")
		return
	}

	out, err := h.chat.HandleText(r.Context(), direct.Text, direct.UserID, "", "API")
	if err != nil {
		// Still 200: degraded outcome, not a delivery failure.
		log.Printf("webhook: direct handling failed: %v", err)
		api.JSON(w, http.StatusOK, &service.ChatOutcome{OK: false, Error: "internal_error"})
		return
	}
	api.JSON(w, http.StatusOK, out)
}
