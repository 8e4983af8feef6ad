// Package line is the chat-delivery collaborator: reply (use-once, tied to
// an inbound event) and push (usable any time, the fallback when a reply
// token is spent) against the LINE Messaging API.
package line

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.line.me"
	defaultTimeout = 5 * time.Second

	// maxTextLength bounds outgoing message text, under the platform's
	// 5000-character limit.
	maxTextLength = 4900
)

type Config struct {
	ChannelToken string
	BaseURL      string
	Timeout      time.Duration
}

type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.ChannelToken).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

type apiError struct {
	Message string `json:"message"`
}

// Reply sends messages against a reply token. The token is use-once: a
// second call, or a call after the platform's validity window, fails and the
// caller should fall back to Push.
func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	return c.send(ctx, "/v2/bot/message/reply", replyRequest{ReplyToken: replyToken, Messages: messages})
}

// Push sends messages directly to a user id, independent of any inbound
// event.
func (c *Client) Push(ctx context.Context, userID string, messages ...Message) error {
	return c.send(ctx, "/v2/bot/message/push", pushRequest{To: userID, Messages: messages})
}

// ReplyText replies with a single truncated text message.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	return c.Reply(ctx, replyToken, NewTextMessage(text))
}

// PushText pushes a single truncated text message.
func (c *Client) PushText(ctx context.Context, userID, text string) error {
	return c.Push(ctx, userID, NewTextMessage(text))
}

func (c *Client) send(ctx context.Context, path string, body interface{}) error {
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("line send failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("line send returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return nil
}
