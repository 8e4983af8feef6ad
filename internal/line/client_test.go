package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{ChannelToken: "line-token", BaseURL: srv.URL})
}

func TestReplyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)
		assert.Equal(t, "Bearer line-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "token-1", body["replyToken"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "text", msg["type"])
		assert.Equal(t, "查詢結果", msg["text"])

		w.Write([]byte(`{}`))
	})

	err := client.ReplyText(context.Background(), "token-1", "查詢結果")
	require.NoError(t, err)
}

func TestReply_SpentTokenFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token"}`))
	})

	err := client.ReplyText(context.Background(), "used-token", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid reply token")
}

func TestPushText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "U1234", body["to"])

		w.Write([]byte(`{}`))
	})

	err := client.PushText(context.Background(), "U1234", "推播訊息")
	require.NoError(t, err)
}

func TestNewTextMessage_Truncates(t *testing.T) {
	long := strings.Repeat("痛", maxTextLength+100)
	msg := NewTextMessage(long)
	assert.Equal(t, maxTextLength, len([]rune(msg.Text)))
}

func TestNewTextMessageWithQuickReplies(t *testing.T) {
	msg := NewTextMessageWithQuickReplies("還有更多結果", []QuickItem{
		{Label: "顯示全部", Text: "顯示全部 肩頸"},
	})

	require.NotNil(t, msg.QuickReply)
	require.Len(t, msg.QuickReply.Items, 1)
	assert.Equal(t, "message", msg.QuickReply.Items[0].Action.Type)
	assert.Equal(t, "顯示全部 肩頸", msg.QuickReply.Items[0].Action.Text)
}

func TestNewTextMessageWithQuickReplies_CapsAtTwelve(t *testing.T) {
	items := make([]QuickItem, 20)
	for i := range items {
		items[i] = QuickItem{Label: "label", Text: "text"}
	}
	msg := NewTextMessageWithQuickReplies("text", items)
	assert.Len(t, msg.QuickReply.Items, 12)
}

func TestNewFlexCarousel_SingleBubble(t *testing.T) {
	msg := NewFlexCarousel("查詢：肩頸", []CarouselEntry{
		{
			Title: "查詢 #1",
			Rows: []CarouselRow{
				{Label: "問題", Value: "肩頸痠痛"},
				{Label: "教材重點", Value: "—"},
			},
		},
	})

	assert.Equal(t, "flex", msg.Type)
	assert.Equal(t, "查詢：肩頸", msg.AltText)

	var contents map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Contents, &contents))
	assert.Equal(t, "bubble", contents["type"])
}

func TestNewFlexCarousel_ManyBubblesCapped(t *testing.T) {
	entries := make([]CarouselEntry, 15)
	for i := range entries {
		entries[i] = CarouselEntry{Title: "entry", Rows: []CarouselRow{{Label: "問題", Value: "x"}}}
	}
	msg := NewFlexCarousel("alt", entries)

	var contents map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Contents, &contents))
	assert.Equal(t, "carousel", contents["type"])
	assert.Len(t, contents["contents"].([]interface{}), maxCarouselBubbles)
}

func TestValidateSignature(t *testing.T) {
	secret := "channel-secret"
	body := []byte(`{"events":[]}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, ValidateSignature(secret, body, valid))
	assert.False(t, ValidateSignature(secret, body, "bogus"))
	assert.False(t, ValidateSignature(secret, body, ""))
	assert.False(t, ValidateSignature("wrong-secret", body, valid))
}
