package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/notion"
)

// Record-database property names.
const (
	propRecTitle    = "標題"
	propRecEmail    = "Email"
	propRecUserID   = "UserId"
	propRecCategory = "類別"
	propRecContent  = "內容"
	propRecDate     = "日期"
	propRecSource   = "來源"
	propRecAINote   = "AI回覆"
	propRecSegment  = "對應脊椎分節"
)

// Record categories written by the chat/API surfaces.
const (
	CategoryLookup  = "症狀查詢"
	CategoryCheckIn = "簽到"
	CategoryNote    = "心得"
	CategoryAICopy  = "AI產文"
)

// RecordInput is one audit row: who asked, what they asked, and where the
// request came from.
type RecordInput struct {
	Email    string
	UserID   string
	Category string
	Content  string
	Source   string
	AINote   string
}

// RecordRepository appends audit rows to the record database. The rows are
// write-only from this system's perspective; nothing reads them back except
// the augmentation patch below.
type RecordRepository struct {
	client     *notion.Client
	databaseID string
	now        func() time.Time
}

func NewRecordRepository(client *notion.Client, databaseID string) *RecordRepository {
	return &RecordRepository{
		client:     client,
		databaseID: databaseID,
		now:        time.Now,
	}
}

// Create appends one audit row and returns the created page id.
func (r *RecordRepository) Create(ctx context.Context, input RecordInput) (string, error) {
	now := r.now()

	category := input.Category
	if category == "" {
		category = "記錄"
	}
	source := input.Source
	if source == "" {
		source = "LINE"
	}

	props := map[string]notion.Property{
		propRecTitle:    notion.NewTitleProperty(fmt.Sprintf("%s｜%s", category, now.In(taipeiLocation()).Format("2006-01-02 15:04:05"))),
		propRecUserID:   notion.NewRichTextProperty(input.UserID),
		propRecCategory: notion.NewSelectProperty(category),
		propRecContent:  notion.NewRichTextProperty(input.Content),
		propRecDate:     notion.NewDateProperty(now),
		propRecSource:   notion.NewSelectProperty(source),
	}
	if input.Email != "" {
		props[propRecEmail] = notion.NewEmailProperty(input.Email)
	}
	if input.AINote != "" {
		props[propRecAINote] = notion.NewRichTextProperty(truncateRunes(input.AINote, 2000))
	}

	id, err := r.client.CreatePage(ctx, r.databaseID, props)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record write failed", err)
	}
	return id, nil
}

// Augment backfills the first resolved result's segment and key point onto
// an existing record. Only properties the record page actually has are
// written, each in the page's own storage shape.
func (r *RecordRepository) Augment(ctx context.Context, pageID, segment, tip string) error {
	if pageID == "" {
		return nil
	}

	page, err := r.client.GetPage(ctx, pageID)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record read failed", err)
	}

	updates := map[string]notion.Property{}
	if segment != "" {
		if existing, ok := page.Properties[propRecSegment]; ok {
			updates[propRecSegment] = propertyInShape(existing, segment)
		}
	}
	if tip != "" {
		if existing, ok := page.Properties[propRecAINote]; ok {
			updates[propRecAINote] = propertyInShape(existing, truncateRunes(tip, 2000))
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := r.client.UpdatePage(ctx, pageID, updates); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "record update failed", err)
	}
	return nil
}

// propertyInShape builds a value matching the storage shape the page
// already uses for the property.
func propertyInShape(existing notion.Property, value string) notion.Property {
	switch existing.Type {
	case "title":
		return notion.NewTitleProperty(value)
	case "select":
		return notion.NewSelectProperty(value)
	default:
		return notion.NewRichTextProperty(value)
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func taipeiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("Asia/Taipei", 8*60*60)
	}
	return loc
}
