package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/susankaotw/bulau/internal/api/handlers"
	"github.com/susankaotw/bulau/internal/api/middleware"
)

type RouterConfig struct {
	AnswerHandler  *handlers.AnswerHandler
	WebhookHandler *handlers.WebhookHandler
	CopyHandler    *handlers.CopyHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Inbound payloads are webhook events and short JSON commands.
	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Check)

	r.Get("/webhook", cfg.WebhookHandler.Hint)
	r.Post("/webhook", cfg.WebhookHandler.Receive)

	r.Post("/answer", cfg.AnswerHandler.Lookup)

	r.Get("/copy", cfg.CopyHandler.Hint)
	r.Post("/copy", cfg.CopyHandler.Generate)

	return r
}
