package repository

import (
	"context"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/notion"
)

// Knowledge-base property names for the current schema revision. Reads are
// alias-tolerant (see mapper.go); these names are what queries filter on.
const (
	propQuestion = "問題"
	propTopic    = "主題"
)

// KnowledgeRepository reads the knowledge base. The store is externally
// edited; this repository never writes.
type KnowledgeRepository struct {
	client     *notion.Client
	databaseID string
}

func NewKnowledgeRepository(client *notion.Client, databaseID string) *KnowledgeRepository {
	return &KnowledgeRepository{client: client, databaseID: databaseID}
}

// SearchByTitle returns entries whose title-typed question field contains
// key, most-recently-updated first.
func (r *KnowledgeRepository) SearchByTitle(ctx context.Context, key string, limit int) ([]*domain.KnowledgeEntry, error) {
	return r.query(ctx, notion.TitleContains(propQuestion, key), limit)
}

// SearchByText runs the same containment test against a free-text storage
// of the question field, for schema revisions where the title drifted to
// rich text.
func (r *KnowledgeRepository) SearchByText(ctx context.Context, key string, limit int) ([]*domain.KnowledgeEntry, error) {
	return r.query(ctx, notion.RichTextContains(propQuestion, key), limit)
}

// ListByTopic returns entries whose topic select equals topic exactly.
func (r *KnowledgeRepository) ListByTopic(ctx context.Context, topic string, limit int) ([]*domain.KnowledgeEntry, error) {
	return r.query(ctx, notion.SelectEquals(propTopic, topic), limit)
}

func (r *KnowledgeRepository) query(ctx context.Context, filter *notion.Filter, limit int) ([]*domain.KnowledgeEntry, error) {
	pages, err := r.client.QueryDatabase(ctx, r.databaseID, notion.QueryRequest{
		Filter:   filter,
		Sorts:    []notion.Sort{notion.SortByLastEditedDesc},
		PageSize: limit,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ReasonRegistryUnavailable, "knowledge store query failed", err)
	}

	return entriesFromPages(pages), nil
}
