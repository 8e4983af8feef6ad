package service

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/telemetry"
)

// marketingSystemPrompt steers generated copy: warm register, no medical
// efficacy claims, hashtags in Traditional Chinese.
const marketingSystemPrompt = "你是一位溫柔、療癒、可信任的台灣在地行銷文案助手。" +
	"請以 50–80 字撰寫貼文開頭，避免醫療/療效承諾字眼，最後加 2–4 個 hashtag（繁體）。"

// ChatCompleter defines the interface for chat completions.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CopyResult is one generated piece of copy with its generation cost.
type CopyResult struct {
	Text      string
	LatencyMS int64
	Usage     openai.Usage
}

// CopywriterService generates short marketing copy for a given topic.
type CopywriterService struct {
	client ChatCompleter
	model  string
	clock  Clock
}

// NewCopywriterService creates a new CopywriterService instance.
func NewCopywriterService(client ChatCompleter) *CopywriterService {
	return &CopywriterService{
		client: client,
		model:  openai.GPT4oMini,
		clock:  time.Now,
	}
}

// Generate produces copy for topic.
func (s *CopywriterService) Generate(ctx context.Context, topic string) (*CopyResult, error) {
	topic = NormalizeQuery(topic)
	if topic == "" {
		return nil, domain.ErrMissingTopic
	}

	ctx, span := telemetry.StartSpan(ctx, "CopywriterService.Generate", telemetry.SpanAttributes{
		Topic:     topic,
		Operation: "generate_copy",
	})
	defer span.End()

	started := s.clock()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: marketingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: topic},
		},
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "copy generation failed", err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}

	return &CopyResult{
		Text:      text,
		LatencyMS: s.clock().Sub(started).Milliseconds(),
		Usage:     resp.Usage,
	}, nil
}
