package line

import "encoding/json"

const (
	maxCarouselBubbles = 10
	maxBubbleTitle     = 36
)

// CarouselEntry is the content of one card: a title and labeled rows.
type CarouselEntry struct {
	Title string
	Rows  []CarouselRow
}

type CarouselRow struct {
	Label string
	Value string
}

type flexBox struct {
	Type     string     `json:"type"`
	Layout   string     `json:"layout"`
	Spacing  string     `json:"spacing,omitempty"`
	Contents []flexNode `json:"contents"`
}

type flexNode struct {
	Type     string     `json:"type"`
	Layout   string     `json:"layout,omitempty"`
	Spacing  string     `json:"spacing,omitempty"`
	Contents []flexNode `json:"contents,omitempty"`
	Text     string     `json:"text,omitempty"`
	Size     string     `json:"size,omitempty"`
	Weight   string     `json:"weight,omitempty"`
	Flex     int        `json:"flex,omitempty"`
	Wrap     bool       `json:"wrap,omitempty"`
}

type flexBubble struct {
	Type   string   `json:"type"`
	Header *flexBox `json:"header,omitempty"`
	Body   *flexBox `json:"body,omitempty"`
}

type flexCarousel struct {
	Type     string       `json:"type"`
	Contents []flexBubble `json:"contents"`
}

// NewFlexCarousel builds a card-list message from entries. A single entry
// renders as one bubble; more than one renders as a carousel, capped at the
// platform bubble limit.
func NewFlexCarousel(altText string, entries []CarouselEntry) Message {
	if len(entries) > maxCarouselBubbles {
		entries = entries[:maxCarouselBubbles]
	}

	bubbles := make([]flexBubble, 0, len(entries))
	for _, entry := range entries {
		bubbles = append(bubbles, buildBubble(entry))
	}

	var contents interface{}
	if len(bubbles) == 1 {
		contents = bubbles[0]
	} else {
		contents = flexCarousel{Type: "carousel", Contents: bubbles}
	}

	raw, _ := json.Marshal(contents)
	return Message{
		Type:     "flex",
		AltText:  truncate(altText, 400),
		Contents: raw,
	}
}

func buildBubble(entry CarouselEntry) flexBubble {
	rows := make([]flexNode, 0, len(entry.Rows))
	for _, row := range entry.Rows {
		rows = append(rows, flexNode{
			Type:    "box",
			Layout:  "baseline",
			Spacing: "sm",
			Contents: []flexNode{
				{Type: "text", Text: row.Label, Size: "sm", Weight: "bold", Flex: 3, Wrap: true},
				{Type: "text", Text: row.Value, Size: "sm", Flex: 9, Wrap: true},
			},
		})
	}

	return flexBubble{
		Type: "bubble",
		Header: &flexBox{
			Type:   "box",
			Layout: "vertical",
			Contents: []flexNode{
				{Type: "text", Text: truncate(entry.Title, maxBubbleTitle), Weight: "bold", Size: "md"},
			},
		},
		Body: &flexBox{
			Type:     "box",
			Layout:   "vertical",
			Spacing:  "sm",
			Contents: rows,
		},
	}
}
