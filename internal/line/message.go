package line

import "encoding/json"

// Message is one outgoing chat message. Exactly one content shape is set.
type Message struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	AltText    string          `json:"altText,omitempty"`
	Contents   json.RawMessage `json:"contents,omitempty"`
	QuickReply *QuickReply     `json:"quickReply,omitempty"`
}

type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

type QuickReplyItem struct {
	Type   string           `json:"type"`
	Action QuickReplyAction `json:"action"`
}

type QuickReplyAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// NewTextMessage builds a plain text message, truncated to the platform
// limit.
func NewTextMessage(text string) Message {
	return Message{Type: "text", Text: truncate(text, maxTextLength)}
}

// QuickItem is a label/text pair rendered as a tappable suggestion under a
// text message.
type QuickItem struct {
	Label string
	Text  string
}

// NewTextMessageWithQuickReplies builds a text message with up to 12 quick
// reply actions.
func NewTextMessageWithQuickReplies(text string, items []QuickItem) Message {
	msg := NewTextMessage(text)
	if len(items) == 0 {
		return msg
	}
	if len(items) > 12 {
		items = items[:12]
	}

	qr := &QuickReply{}
	for _, item := range items {
		qr.Items = append(qr.Items, QuickReplyItem{
			Type: "action",
			Action: QuickReplyAction{
				Type:  "message",
				Label: item.Label,
				Text:  item.Text,
			},
		})
	}
	msg.QuickReply = qr
	return msg
}

// truncate bounds s to max runes without splitting a multi-byte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
