package notion

import (
	"strings"
	"time"
)

// Page is a row of a database. Properties are keyed by the editor-facing
// property name, which drifts across schema revisions; callers resolve
// canonical fields through alias chains rather than assuming fixed names.
type Page struct {
	ID             string              `json:"id"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]Property `json:"properties"`
}

// Property is a typed property value. Exactly one of the typed fields is
// populated, matching the Type discriminator.
type Property struct {
	Type     string         `json:"type,omitempty"`
	Title    []RichTextItem `json:"title,omitempty"`
	RichText []RichTextItem `json:"rich_text,omitempty"`
	Select   *SelectOption  `json:"select,omitempty"`
	Email    *string        `json:"email,omitempty"`
	Date     *DateValue     `json:"date,omitempty"`
}

type RichTextItem struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// PlainText flattens a title or rich-text value to a trimmed string.
// Title is preferred when both are set, matching the lookup order used for
// title-or-rich-text schema drift.
func (p Property) PlainText() string {
	if len(p.Title) > 0 {
		return joinPlainText(p.Title)
	}
	return joinPlainText(p.RichText)
}

// SelectName returns the select option name, or "" when unset.
func (p Property) SelectName() string {
	if p.Select == nil {
		return ""
	}
	return strings.TrimSpace(p.Select.Name)
}

// EmailValue returns the email-typed value, or "" when unset.
func (p Property) EmailValue() string {
	if p.Email == nil {
		return ""
	}
	return strings.TrimSpace(*p.Email)
}

// DateStart parses the start date of a date property. Both date-only and
// full timestamp forms are accepted. Returns nil when unset or unparseable.
func (p Property) DateStart() *time.Time {
	if p.Date == nil || p.Date.Start == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, p.Date.Start); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", p.Date.Start); err == nil {
		return &t
	}
	return nil
}

func joinPlainText(items []RichTextItem) string {
	var b strings.Builder
	for _, item := range items {
		if item.PlainText != "" {
			b.WriteString(item.PlainText)
		} else if item.Text != nil {
			b.WriteString(item.Text.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// Constructors for outbound property values.

func NewTitleProperty(text string) Property {
	return Property{Title: []RichTextItem{{Text: &TextContent{Content: text}}}}
}

func NewRichTextProperty(text string) Property {
	return Property{RichText: []RichTextItem{{Text: &TextContent{Content: text}}}}
}

func NewSelectProperty(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func NewEmailProperty(email string) Property {
	return Property{Email: &email}
}

func NewDateProperty(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.Format(time.RFC3339)}}
}

// Filter is the query-by-filter shape: exact-equals on categorical fields
// and substring-contains on text fields, across the three storage shapes a
// logical field may have drifted through.
type Filter struct {
	Property string           `json:"property"`
	Title    *TextCondition   `json:"title,omitempty"`
	RichText *TextCondition   `json:"rich_text,omitempty"`
	Select   *SelectCondition `json:"select,omitempty"`
	Email    *TextCondition   `json:"email,omitempty"`
}

type TextCondition struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

type SelectCondition struct {
	Equals string `json:"equals,omitempty"`
}

func TitleContains(property, value string) *Filter {
	return &Filter{Property: property, Title: &TextCondition{Contains: value}}
}

func TitleEquals(property, value string) *Filter {
	return &Filter{Property: property, Title: &TextCondition{Equals: value}}
}

func RichTextContains(property, value string) *Filter {
	return &Filter{Property: property, RichText: &TextCondition{Contains: value}}
}

func RichTextEquals(property, value string) *Filter {
	return &Filter{Property: property, RichText: &TextCondition{Equals: value}}
}

func SelectEquals(property, value string) *Filter {
	return &Filter{Property: property, Select: &SelectCondition{Equals: value}}
}

func EmailEquals(property, value string) *Filter {
	return &Filter{Property: property, Email: &TextCondition{Equals: value}}
}

// Sort orders query results.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// SortByLastEditedDesc orders results most-recently-updated first, the
// standard ordering for lookup results.
var SortByLastEditedDesc = Sort{Timestamp: "last_edited_time", Direction: "descending"}
