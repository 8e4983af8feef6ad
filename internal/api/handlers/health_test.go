package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/susankaotw/bulau/internal/notion"
)

type MockDatabaseProber struct {
	mock.Mock
}

func (m *MockDatabaseProber) GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error) {
	args := m.Called(ctx, databaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Database), args.Error(1)
}

func databaseWithTitle(title string, props map[string]notion.PropertySchema) *notion.Database {
	return &notion.Database{
		Title:      []notion.RichTextItem{{PlainText: title}},
		Properties: props,
	}
}

func TestHealthCheck(t *testing.T) {
	store := new(MockDatabaseProber)
	handler := NewHealthHandler(store, true, "1234567890abcdef1234567890abcdef", "fedcba0987654321fedcba0987654321")

	store.On("GetDatabase", mock.Anything, "1234567890abcdef1234567890abcdef").
		Return(databaseWithTitle("教材 QA", nil), nil)
	store.On("GetDatabase", mock.Anything, "fedcba0987654321fedcba0987654321").
		Return(databaseWithTitle("會員名單", map[string]notion.PropertySchema{
			"Email": {Type: "email"},
			"狀態":    {Type: "select"},
			"有效日期":  {Type: "date"},
			"等級":    {Type: "select"},
			"姓名":    {Type: "title"},
		}), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Check(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])

	env := resp["env"].(map[string]interface{})
	assert.Equal(t, true, env["has_token"])
	assert.Equal(t, true, env["has_qa_db_id"])
	assert.Equal(t, true, env["has_member_db_id"])
	assert.Equal(t, "123456…abcdef", env["qa_db_id"])

	qa := resp["qaRetrieve"].(map[string]interface{})
	assert.Equal(t, true, qa["ok"])
	assert.Equal(t, "教材 QA", qa["title"])

	fields := resp["fields"].(map[string]interface{})
	assert.Equal(t, "Email", fields["emailField"])
	assert.Equal(t, "狀態", fields["statusName"])
	assert.Equal(t, "有效日期", fields["expiryName"])
	assert.Equal(t, "等級", fields["levelName"])
}

func TestHealthCheck_StoreFailure(t *testing.T) {
	store := new(MockDatabaseProber)
	handler := NewHealthHandler(store, true, "qa-db-0000000000", "")

	store.On("GetDatabase", mock.Anything, "qa-db-0000000000").
		Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Check(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	qa := resp["qaRetrieve"].(map[string]interface{})
	assert.Equal(t, false, qa["ok"])
	assert.NotEmpty(t, qa["error"])
	assert.Nil(t, resp["memRetrieve"])
	assert.Nil(t, resp["fields"])
}

func TestHealthCheck_Unconfigured(t *testing.T) {
	handler := NewHealthHandler(nil, false, "", "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Check(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	env := resp["env"].(map[string]interface{})
	assert.Equal(t, false, env["has_token"])
	assert.Equal(t, false, env["has_qa_db_id"])
	assert.Equal(t, "", env["qa_db_id"])
	assert.Nil(t, resp["qaRetrieve"])
}

func TestDetectMemberFields_NameFallback(t *testing.T) {
	fields := detectMemberFields(map[string]notion.PropertySchema{
		"會員信箱":   {Type: "rich_text"},
		"Status": {Type: "select"},
		"到期日":    {Type: "date"},
	})

	assert.Equal(t, "會員信箱", fields.EmailField)
	assert.Equal(t, "Status", fields.StatusName)
	assert.Equal(t, "到期日", fields.ExpiryName)
	assert.Equal(t, "", fields.LevelName)
}

func TestShortDBID(t *testing.T) {
	assert.Equal(t, "", shortDBID(""))
	assert.Equal(t, "abc123", shortDBID("abc-123"))
	assert.Equal(t, "123456…abcdef", shortDBID("12345678-90ab-cdef-1234-567890abcdef"))
}
