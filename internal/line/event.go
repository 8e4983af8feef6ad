package line

// WebhookRequest is the body of an inbound webhook delivery: a batch of
// events from the platform.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one inbound event. Only text message events are acted on.
type Event struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken"`
	Source     EventSource  `json:"source"`
	Message    EventMessage `json:"message"`
}

type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsTextMessage reports whether the event carries user-typed text.
func (e *Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}
