package repository

import (
	"context"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/notion"
)

// Member-registry property names.
const (
	propMemberEmail  = "Email"
	propMemberChatID = "LINE UserId"
	propMemberStatus = "狀態"
	propMemberTier   = "等級"
	propMemberExpiry = "有效日期"
)

// MemberRepository reads the externally managed member registry and binds
// chat ids. Records are never created or deleted here.
type MemberRepository struct {
	client     *notion.Client
	databaseID string
}

func NewMemberRepository(client *notion.Client, databaseID string) *MemberRepository {
	return &MemberRepository{client: client, databaseID: databaseID}
}

// FindByEmail locates a member by email, tolerating the email field being
// stored as typed-email, free text, or a title: each shape is tried in
// order and the first non-empty match wins.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*domain.MemberRecord, error) {
	filters := []*notion.Filter{
		notion.EmailEquals(propMemberEmail, email),
		notion.RichTextEquals(propMemberEmail, email),
		notion.TitleEquals(propMemberEmail, email),
	}

	for _, filter := range filters {
		pages, err := r.client.QueryDatabase(ctx, r.databaseID, notion.QueryRequest{
			Filter:   filter,
			PageSize: 1,
		})
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ReasonRegistryUnavailable, "member registry query failed", err)
		}
		if len(pages) > 0 {
			return memberFromPage(pages[0]), nil
		}
	}

	return nil, domain.ErrMemberNotFound
}

// FindByChatID locates a member by their bound chat-platform user id.
func (r *MemberRepository) FindByChatID(ctx context.Context, chatID string) (*domain.MemberRecord, error) {
	pages, err := r.client.QueryDatabase(ctx, r.databaseID, notion.QueryRequest{
		Filter:   notion.RichTextEquals(propMemberChatID, chatID),
		PageSize: 1,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ReasonRegistryUnavailable, "member registry query failed", err)
	}
	if len(pages) == 0 {
		return nil, domain.ErrMemberNotFound
	}

	return memberFromPage(pages[0]), nil
}

// SetChatID writes the chat-id binding onto a member record.
//
// The registry has no conditional-update primitive, so two concurrent first
// binds for the same record can both observe an empty binding and race;
// last write wins. Known accepted limitation.
func (r *MemberRepository) SetChatID(ctx context.Context, pageID, chatID string) error {
	err := r.client.UpdatePage(ctx, pageID, map[string]notion.Property{
		propMemberChatID: notion.NewRichTextProperty(chatID),
	})
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ReasonRegistryUnavailable, "member registry update failed", err)
	}
	return nil
}

func memberFromPage(page notion.Page) *domain.MemberRecord {
	props := page.Properties
	return &domain.MemberRecord{
		PageID:         page.ID,
		Email:          readEmail(props, propMemberEmail),
		ExternalChatID: props[propMemberChatID].PlainText(),
		Status:         props[propMemberStatus].SelectName(),
		Tier:           props[propMemberTier].SelectName(),
		ExpiresOn:      props[propMemberExpiry].DateStart(),
	}
}
