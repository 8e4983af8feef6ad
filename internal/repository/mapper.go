package repository

import (
	"strings"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/notion"
)

// Canonical field alias chains. Property names have drifted across schema
// revisions; for each canonical field the first non-empty alias wins. The
// chains are resolved independently for every page — entries in one result
// list may use different aliasing.
var (
	topicAliases         = []string{"主題", "topic"}
	questionAliases      = []string{"問題", "question"}
	primaryAnswerAliases = []string{"教材版回覆", "教材重點", "臨床流程建議"}
	segmentAliases       = []string{"對應脊椎分節", "segments", "segment"}
	guidanceAliases      = []string{"臨床流程建議", "flow", "process"}
	notesAliases         = []string{"經絡與補充", "meridians", "meridian", "經絡"}
	aiNoteAliases        = []string{"AI回覆", "ai_reply", "answer"}
	versionAliases       = []string{"版本號", "version"}
)

// textByAlias returns the first non-empty value found along an alias chain,
// regardless of whether the property is stored as a title, rich text,
// select, or email.
func textByAlias(props map[string]notion.Property, aliases []string) string {
	for _, name := range aliases {
		prop, ok := props[name]
		if !ok {
			continue
		}
		if v := prop.PlainText(); v != "" {
			return v
		}
		if v := prop.SelectName(); v != "" {
			return v
		}
		if v := prop.EmailValue(); v != "" {
			return v
		}
	}
	return ""
}

// EntryFromPage maps a raw page onto the canonical entry shape. Missing or
// unrecognized fields map to "", never an error.
func EntryFromPage(page notion.Page) *domain.KnowledgeEntry {
	props := page.Properties
	return &domain.KnowledgeEntry{
		PageID:             page.ID,
		Topic:              textByAlias(props, topicAliases),
		Question:           textByAlias(props, questionAliases),
		PrimaryAnswer:      textByAlias(props, primaryAnswerAliases),
		ClinicalGuidance:   textByAlias(props, guidanceAliases),
		SupplementaryNotes: textByAlias(props, notesAliases),
		MappedSegment:      textByAlias(props, segmentAliases),
		AINote:             textByAlias(props, aiNoteAliases),
		Version:            textByAlias(props, versionAliases),
		UpdatedAt:          page.LastEditedTime,
	}
}

func entriesFromPages(pages []notion.Page) []*domain.KnowledgeEntry {
	entries := make([]*domain.KnowledgeEntry, 0, len(pages))
	for _, page := range pages {
		entries = append(entries, EntryFromPage(page))
	}
	return entries
}

// readEmail resolves the email field across its three storage shapes:
// typed-email, free text, or used-as-title. Values that fail the shape
// check are ignored.
func readEmail(props map[string]notion.Property, name string) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	if v := prop.EmailValue(); v != "" && domain.IsEmail(v) {
		return strings.TrimSpace(v)
	}
	if v := prop.PlainText(); v != "" && domain.IsEmail(v) {
		return v
	}
	return ""
}
