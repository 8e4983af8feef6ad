package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/telemetry"
)

// KnowledgeFinder defines the repository interface for knowledge search.
type KnowledgeFinder interface {
	SearchByTitle(ctx context.Context, key string, limit int) ([]*domain.KnowledgeEntry, error)
	SearchByText(ctx context.Context, key string, limit int) ([]*domain.KnowledgeEntry, error)
	ListByTopic(ctx context.Context, topic string, limit int) ([]*domain.KnowledgeEntry, error)
}

const (
	// DefaultLimit is the result cap for a regular lookup.
	DefaultLimit = 5
	// ShowAllLimit is the result cap for a show-all lookup.
	ShowAllLimit = 50

	// maxKeyRunes bounds the match key fed to containment filters; over-long
	// filter values cost the store disproportionately and never match
	// better.
	maxKeyRunes = 16
)

// Match strategies, in the order they are tried.
const (
	MatchedByTitle = "title"
	MatchedByText  = "text"
	MatchedByTopic = "topic"
)

// Resolution is the outcome of one lookup: the entries found and which
// strategy produced them. An empty Entries with a nil error is a normal
// not-found outcome, not a failure.
type Resolution struct {
	Query     string
	Entries   []*domain.KnowledgeEntry
	MatchedBy string
	Topic     string
}

// ResolverService turns a free-text query into knowledge entries by trying
// successive strategies until one yields results.
type ResolverService struct {
	knowledge KnowledgeFinder
}

// NewResolverService creates a new ResolverService instance.
func NewResolverService(knowledge KnowledgeFinder) *ResolverService {
	return &ResolverService{knowledge: knowledge}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeQuery maps fullwidth spaces to ASCII, collapses whitespace runs
// and trims. Queries differing only in whitespace resolve identically.
func NormalizeQuery(s string) string {
	s = strings.ReplaceAll(s, "　", " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var topicGuesses = []struct {
	pattern *regexp.Regexp
	topic   string
}{
	{regexp.MustCompile(`肩|頸`), domain.TopicSymptomMapping},
	{regexp.MustCompile(`手|臂|肘|上肢`), domain.TopicUpperLimb},
	{regexp.MustCompile(`腰|背|下背`), domain.TopicLowerBack},
	{regexp.MustCompile(`膝|腿|下肢`), domain.TopicLowerLimb},
}

// GuessTopic maps body-region keywords in q onto a topic label, for the
// last-resort lookup stage. Returns "" when nothing matches.
func GuessTopic(q string) string {
	for _, g := range topicGuesses {
		if g.pattern.MatchString(q) {
			return g.topic
		}
	}
	return ""
}

// Resolve runs the layered lookup: title containment, then free-text
// containment, then a topic guessed from the query. Each stage runs only if
// the previous one returned nothing. All stages empty is a normal
// not-found Resolution.
func (s *ResolverService) Resolve(ctx context.Context, query string, limit int) (*Resolution, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, domain.ErrMissingQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, span := telemetry.StartSpan(ctx, "ResolverService.Resolve", telemetry.SpanAttributes{
		Query:     normalized,
		Operation: "resolve",
	})
	defer span.End()

	key := truncateKey(normalized)

	entries, err := s.knowledge.SearchByTitle(ctx, key, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(entries) > 0 {
		return &Resolution{Query: normalized, Entries: entries, MatchedBy: MatchedByTitle}, nil
	}

	entries, err = s.knowledge.SearchByText(ctx, key, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(entries) > 0 {
		return &Resolution{Query: normalized, Entries: entries, MatchedBy: MatchedByText}, nil
	}

	topic := GuessTopic(normalized)
	if topic == "" {
		return &Resolution{Query: normalized}, nil
	}

	entries, err = s.knowledge.ListByTopic(ctx, topic, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(entries) == 0 {
		return &Resolution{Query: normalized}, nil
	}
	return &Resolution{Query: normalized, Entries: entries, MatchedBy: MatchedByTopic, Topic: topic}, nil
}

// ResolveTopic lists entries under an exact topic label, bypassing the
// keyword stages.
func (s *ResolverService) ResolveTopic(ctx context.Context, topic string, limit int) (*Resolution, error) {
	normalized := NormalizeQuery(topic)
	if normalized == "" {
		return nil, domain.ErrMissingTopic
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, span := telemetry.StartSpan(ctx, "ResolverService.ResolveTopic", telemetry.SpanAttributes{
		Topic:     normalized,
		Operation: "resolve_topic",
	})
	defer span.End()

	entries, err := s.knowledge.ListByTopic(ctx, normalized, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	res := &Resolution{Query: normalized, Topic: normalized, Entries: entries}
	if len(entries) > 0 {
		res.MatchedBy = MatchedByTopic
	}
	return res, nil
}

func truncateKey(s string) string {
	runes := []rune(s)
	if len(runes) <= maxKeyRunes {
		return s
	}
	return string(runes[:maxKeyRunes])
}
