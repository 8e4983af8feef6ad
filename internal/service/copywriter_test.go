package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/susankaotw/bulau/internal/domain"
)

type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func TestGenerate(t *testing.T) {
	completer := &MockChatCompleter{}
	completer.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == openai.GPT4oMini &&
			req.Temperature == 0.7 &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Content == "放鬆課程"
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  給自己一段安靜的時光。#放鬆  "}},
		},
		Usage: openai.Usage{PromptTokens: 40, CompletionTokens: 60, TotalTokens: 100},
	}, nil)

	svc := NewCopywriterService(completer)
	result, err := svc.Generate(context.Background(), " 放鬆課程 ")
	require.NoError(t, err)
	assert.Equal(t, "給自己一段安靜的時光。#放鬆", result.Text)
	assert.Equal(t, 100, result.Usage.TotalTokens)
	completer.AssertExpectations(t)
}

func TestGenerate_EmptyTopic(t *testing.T) {
	svc := NewCopywriterService(&MockChatCompleter{})

	_, err := svc.Generate(context.Background(), "  　 ")
	assert.ErrorIs(t, err, domain.ErrMissingTopic)
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	completer := &MockChatCompleter{}
	completer.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("rate limited"))

	svc := NewCopywriterService(completer)
	_, err := svc.Generate(context.Background(), "放鬆課程")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
}

func TestGenerate_NoChoices(t *testing.T) {
	completer := &MockChatCompleter{}
	completer.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	svc := NewCopywriterService(completer)
	result, err := svc.Generate(context.Background(), "放鬆課程")
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}
