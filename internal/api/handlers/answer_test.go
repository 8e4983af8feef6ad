package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/service"
)

type MockAnswerGate struct {
	mock.Mock
}

func (m *MockAnswerGate) CheckAccess(ctx context.Context, identity service.Identity) service.GateResult {
	args := m.Called(ctx, identity)
	return args.Get(0).(service.GateResult)
}

type MockAnswerResolver struct {
	mock.Mock
}

func (m *MockAnswerResolver) Resolve(ctx context.Context, query string, limit int) (*service.Resolution, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Resolution), args.Error(1)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/answer", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAnswerLookup(t *testing.T) {
	gate := new(MockAnswerGate)
	resolver := new(MockAnswerResolver)
	handler := NewAnswerHandler(gate, resolver)

	gate.On("CheckAccess", mock.Anything, service.Identity{Email: "user@example.com"}).
		Return(service.GateResult{Allowed: true})
	resolver.On("Resolve", mock.Anything, "肩頸痠痛", service.DefaultLimit).
		Return(&service.Resolution{
			Query: "肩頸痠痛",
			Entries: []*domain.KnowledgeEntry{{
				Topic:         "症狀對應",
				Question:      "肩頸痠痛",
				PrimaryAnswer: "熱敷與伸展",
				Version:       "v2.0.0",
				UpdatedAt:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			}},
			MatchedBy: service.MatchedByTitle,
		}, nil)

	w := postJSON(t, handler.Lookup, map[string]string{
		"email": "user@example.com",
		"q":     "肩頸痠痛",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "查詢", resp["mode"])
	assert.Equal(t, "肩頸痠痛", resp["matched"])
	assert.Equal(t, "v2.0.0", resp["version"])

	answer, ok := resp["answer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "熱敷與伸展", answer["衛教版回覆"])

	gate.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestAnswerLookup_LegacyQuestionKeys(t *testing.T) {
	gate := new(MockAnswerGate)
	resolver := new(MockAnswerResolver)
	handler := NewAnswerHandler(gate, resolver)

	gate.On("CheckAccess", mock.Anything, mock.Anything).
		Return(service.GateResult{Allowed: true})
	resolver.On("Resolve", mock.Anything, "腰痛", service.DefaultLimit).
		Return(&service.Resolution{Query: "腰痛"}, nil).Twice()

	w := postJSON(t, handler.Lookup, map[string]string{"question": "腰痛"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, handler.Lookup, map[string]string{"問題": "腰痛"})
	assert.Equal(t, http.StatusOK, w.Code)

	resolver.AssertExpectations(t)
}

func TestAnswerLookup_NotFound(t *testing.T) {
	gate := new(MockAnswerGate)
	resolver := new(MockAnswerResolver)
	handler := NewAnswerHandler(gate, resolver)

	gate.On("CheckAccess", mock.Anything, mock.Anything).
		Return(service.GateResult{Allowed: true})
	resolver.On("Resolve", mock.Anything, "石膏", service.DefaultLimit).
		Return(&service.Resolution{Query: "石膏"}, nil)

	w := postJSON(t, handler.Lookup, map[string]string{"q": "石膏"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["matched"])
	assert.Nil(t, resp["version"])
	answer, ok := resp["answer"].(string)
	require.True(t, ok)
	assert.Contains(t, answer, "查不到相符條目")
}

func TestAnswerLookup_MissingQuestion(t *testing.T) {
	handler := NewAnswerHandler(new(MockAnswerGate), new(MockAnswerResolver))

	w := postJSON(t, handler.Lookup, map[string]string{"email": "user@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question is required")
}

func TestAnswerLookup_InvalidBody(t *testing.T) {
	handler := NewAnswerHandler(new(MockAnswerGate), new(MockAnswerResolver))

	req := httptest.NewRequest(http.MethodPost, "/answer", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	handler.Lookup(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnswerLookup_Denied(t *testing.T) {
	gate := new(MockAnswerGate)
	resolver := new(MockAnswerResolver)
	handler := NewAnswerHandler(gate, resolver)

	gate.On("CheckAccess", mock.Anything, service.Identity{Email: "gone@example.com"}).
		Return(service.GateResult{
			Allowed: false,
			Reason:  domain.ReasonExpired,
			Message: "此帳號已過有效日期（2025-01-31）。",
		})

	w := postJSON(t, handler.Lookup, map[string]string{
		"email": "gone@example.com",
		"q":     "肩頸痠痛",
	})

	require.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.ReasonExpired, resp["reason"])
	assert.Contains(t, resp["error"], "已過有效日期")
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerLookup_StoreFailure(t *testing.T) {
	gate := new(MockAnswerGate)
	resolver := new(MockAnswerResolver)
	handler := NewAnswerHandler(gate, resolver)

	gate.On("CheckAccess", mock.Anything, mock.Anything).
		Return(service.GateResult{Allowed: true})
	resolver.On("Resolve", mock.Anything, "肩頸痠痛", service.DefaultLimit).
		Return(nil, domain.ErrKnowledgeUnavailable)

	w := postJSON(t, handler.Lookup, map[string]string{"q": "肩頸痠痛"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
