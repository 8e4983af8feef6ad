package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/line"
)

// placeholder substitutes for empty fields in display contexts. API
// contexts keep "".
const placeholder = "—"

// InlineDigestLimit is how many entries a chat reply shows inline before
// the show-all affordance kicks in.
const InlineDigestLimit = 3

// NotFoundMessage is the user-facing message for an empty resolution. A
// normal outcome with its own message, not an error.
func NotFoundMessage(query string) string {
	return fmt.Sprintf("找不到[%s]的教材內容", strings.TrimSpace(query))
}

// EntryView is one knowledge entry in the API payload. The top-level keys
// are the legacy names older callers already parse; raw carries the current
// field names for newer ones.
type EntryView struct {
	Topic           string       `json:"主題"`
	Question        string       `json:"問題"`
	PatientReply    string       `json:"衛教版回覆"`
	ClinicalReply   string       `json:"專業版回覆"`
	SuggestedAction string       `json:"建議動作"`
	Cautions        string       `json:"禁忌與注意"`
	AINote          string       `json:"AI回覆,omitempty"`
	Raw             RawEntryView `json:"raw"`
}

// RawEntryView carries the current knowledge-base field names.
type RawEntryView struct {
	PrimaryAnswer      string `json:"教材版回覆"`
	ClinicalGuidance   string `json:"臨床流程建議"`
	SupplementaryNotes string `json:"經絡與補充"`
	MappedSegment      string `json:"對應脊椎分節"`
}

// AnswerResponse is the payload of the direct lookup API. On a miss,
// Answer is a guidance string and the provenance fields are null; on a
// hit, Answer mirrors the first result and Results carries all of them.
type AnswerResponse struct {
	Mode      string       `json:"mode"`
	Email     string       `json:"email"`
	Answer    interface{}  `json:"answer"`
	Results   []*EntryView `json:"results"`
	Matched   *string      `json:"matched"`
	Version   *string      `json:"version"`
	UpdatedAt *string      `json:"updated_at"`
}

// NewEntryView maps a resolved entry into the API shape.
func NewEntryView(e *domain.KnowledgeEntry) *EntryView {
	return &EntryView{
		Topic:           e.Topic,
		Question:        e.Question,
		PatientReply:    e.PrimaryAnswer,
		ClinicalReply:   e.ClinicalGuidance,
		SuggestedAction: e.MappedSegment,
		Cautions:        e.SupplementaryNotes,
		AINote:          e.AINote,
		Raw: RawEntryView{
			PrimaryAnswer:      e.PrimaryAnswer,
			ClinicalGuidance:   e.ClinicalGuidance,
			SupplementaryNotes: e.SupplementaryNotes,
			MappedSegment:      e.MappedSegment,
		},
	}
}

// BuildAnswerResponse assembles the direct API payload from a resolution.
func BuildAnswerResponse(email string, res *Resolution) *AnswerResponse {
	out := &AnswerResponse{Mode: "查詢", Email: email}

	if res == nil || len(res.Entries) == 0 {
		out.Answer = "查不到相符條目，請改用其它關鍵字（例：肩頸痠痛、手舉不起來）。"
		return out
	}

	for _, e := range res.Entries {
		out.Results = append(out.Results, NewEntryView(e))
	}

	first := res.Entries[0]
	out.Answer = out.Results[0]

	matched := first.DisplayQuestion(res.Query)
	out.Matched = &matched

	version := first.Version
	if version == "" {
		version = "v1.0.0"
	}
	out.Version = &version

	if !first.UpdatedAt.IsZero() {
		updated := first.UpdatedAt.Format(time.RFC3339)
		out.UpdatedAt = &updated
	}

	return out
}

// Digest is a chat-ready text rendering of a result list.
type Digest struct {
	Text string
	// MoreCount is how many entries were held back by the inline cap.
	MoreCount int
}

// BuildDigest renders up to showN entries as a text digest; entries beyond
// the cap are counted into MoreCount and the text tells the reader how to
// see them.
func BuildDigest(query string, entries []*domain.KnowledgeEntry, showN int) Digest {
	if len(entries) == 0 {
		return Digest{Text: NotFoundMessage(query)}
	}

	shown := entries
	if showN > 0 && len(shown) > showN {
		shown = shown[:showN]
	}
	moreCount := len(entries) - len(shown)

	text := digestText(query, shown)
	if moreCount > 0 {
		text += fmt.Sprintf("\n\n（還有 %d 筆。你可輸入「顯示全部 …」查看全部。）", moreCount)
	}
	return Digest{Text: text, MoreCount: moreCount}
}

// BuildFullDigest renders entries without the inline cap, bounded only by
// the show-all limit.
func BuildFullDigest(query string, entries []*domain.KnowledgeEntry) string {
	if len(entries) > ShowAllLimit {
		entries = entries[:ShowAllLimit]
	}
	if len(entries) == 0 {
		return NotFoundMessage(query)
	}
	return digestText(query, entries)
}

func digestText(query string, entries []*domain.KnowledgeEntry) string {
	lines := []string{fmt.Sprintf("🔎 查詢：「%s」", query)}
	for i, e := range entries {
		head := fmt.Sprintf("#%d 症狀對應", i+1)
		if i == 0 {
			head = "\n" + head
		}
		lines = append(lines,
			head,
			"・問題："+orPlaceholder(e.DisplayQuestion(query)),
			"・教材重點："+orPlaceholder(e.PrimaryAnswer),
			"・對應脊椎分節："+orPlaceholder(e.MappedSegment),
			"・臨床流程建議："+orPlaceholder(e.ClinicalGuidance),
			"・經絡與補充："+orPlaceholder(e.SupplementaryNotes),
			"・AI回覆："+orPlaceholder(e.AINote),
			"",
		)
	}
	return strings.Join(lines, "\n")
}

// BuildCarouselEntries maps entries into card contents for the flex
// rendering. Titles are numbered off titlePrefix; the transport caps the
// card count.
func BuildCarouselEntries(titlePrefix string, entries []*domain.KnowledgeEntry) []line.CarouselEntry {
	cards := make([]line.CarouselEntry, 0, len(entries))
	for i, e := range entries {
		cards = append(cards, line.CarouselEntry{
			Title: fmt.Sprintf("%s #%d", titlePrefix, i+1),
			Rows: []line.CarouselRow{
				{Label: "問題", Value: orPlaceholder(e.Question)},
				{Label: "教材重點", Value: orPlaceholder(e.PrimaryAnswer)},
				{Label: "對應脊椎分節", Value: orPlaceholder(e.MappedSegment)},
				{Label: "臨床流程建議", Value: orPlaceholder(e.ClinicalGuidance)},
				{Label: "經絡與補充", Value: orPlaceholder(e.SupplementaryNotes)},
				{Label: "AI回覆", Value: orPlaceholder(e.AINote)},
			},
		})
	}
	return cards
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
