package domain

import "time"

// Topic labels used by the knowledge base's topic select. The topic-guess
// fallback in the resolver maps query keywords onto these.
const (
	TopicSymptomMapping = "症狀對應"
	TopicUpperLimb      = "上肢"
	TopicLowerBack      = "腰背"
	TopicLowerLimb      = "下肢"
)

// KnowledgeEntry represents one row of the knowledge base. Entries are
// authored out-of-band by content editors; this system only reads them.
// Free-text fields default to "" when the source page has no recognized
// property for them.
type KnowledgeEntry struct {
	PageID             string
	Topic              string
	Question           string
	PrimaryAnswer      string
	ClinicalGuidance   string
	SupplementaryNotes string
	MappedSegment      string
	AINote             string
	Version            string
	UpdatedAt          time.Time
}

// DisplayQuestion returns the question text, substituting a placeholder for
// entries where the title property is empty or missing.
func (e *KnowledgeEntry) DisplayQuestion(fallback string) string {
	if e.Question != "" {
		return e.Question
	}
	return fallback
}
