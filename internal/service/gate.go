package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/susankaotw/bulau/internal/domain"
	"github.com/susankaotw/bulau/internal/telemetry"
)

// MemberRegistry defines the repository interface for member lookup and
// chat-id binding.
type MemberRegistry interface {
	FindByEmail(ctx context.Context, email string) (*domain.MemberRecord, error)
	FindByChatID(ctx context.Context, chatID string) (*domain.MemberRecord, error)
	SetChatID(ctx context.Context, pageID, chatID string) error
}

// Identity is a claimed identity: an email address, a bound chat id, or
// both. Email takes precedence when both are set.
type Identity struct {
	Email  string
	ChatID string
}

// GateResult is the outcome of one eligibility check. Denials carry a
// reason code and a user-facing localized message; they are results, not
// errors.
type GateResult struct {
	Allowed bool
	Reason  string
	Message string
	Member  *domain.MemberRecord
}

// Clock abstracts time for expiry checks (for testing).
type Clock func() time.Time

// GateService decides whether a claimed identity may use the lookup. A nil
// registry means no member database is configured and every caller is
// allowed (open mode).
type GateService struct {
	members MemberRegistry
	// upgradeURL, when set, is appended as a call-to-action to denial
	// messages where renewal or signup would resolve the denial.
	upgradeURL string
	clock      Clock
}

// NewGateService creates a new GateService instance.
func NewGateService(members MemberRegistry, upgradeURL string) *GateService {
	return &GateService{
		members:    members,
		upgradeURL: upgradeURL,
		clock:      time.Now,
	}
}

// NewGateServiceWithClock creates a GateService with a custom clock (for testing).
func NewGateServiceWithClock(members MemberRegistry, upgradeURL string, clock Clock) *GateService {
	return &GateService{
		members:    members,
		upgradeURL: upgradeURL,
		clock:      clock,
	}
}

// CheckAccess runs the eligibility checks in order: identity presence,
// email shape, registry lookup, status block-list, expiry. The first
// failing check wins; later checks are not evaluated.
func (s *GateService) CheckAccess(ctx context.Context, identity Identity) GateResult {
	ctx, span := telemetry.StartSpan(ctx, "GateService.CheckAccess", telemetry.SpanAttributes{
		Email:     identity.Email,
		Operation: "check_access",
	})
	defer span.End()

	if s.members == nil {
		return GateResult{Allowed: true}
	}

	member, denied := s.lookup(ctx, identity)
	if denied != nil {
		return *denied
	}

	if member.IsBlocked() {
		msg := fmt.Sprintf("此帳號狀態為「%s」，暫停使用查詢/簽到/心得功能。", member.Status)
		if s.upgradeURL != "" {
			msg += "\n重新開通請見：" + s.upgradeURL
		}
		return GateResult{
			Reason:  domain.ReasonDisabled,
			Message: msg,
			Member:  member,
		}
	}

	if member.IsExpired(s.clock()) {
		msg := fmt.Sprintf("此帳號已過有效日期（%s）。", member.ExpiresOn.Format("2006-01-02"))
		if s.upgradeURL != "" {
			msg += "\n續約後即可繼續使用：" + s.upgradeURL
		}
		return GateResult{
			Reason:  domain.ReasonExpired,
			Message: msg,
			Member:  member,
		}
	}

	return GateResult{Allowed: true, Member: member}
}

func (s *GateService) lookup(ctx context.Context, identity Identity) (*domain.MemberRecord, *GateResult) {
	if identity.Email != "" {
		if !domain.IsEmail(identity.Email) {
			return nil, &GateResult{
				Reason:  domain.ReasonMalformedEmail,
				Message: "Email 格式不正確，請再確認一次。",
			}
		}

		member, err := s.members.FindByEmail(ctx, domain.NormalizeEmail(identity.Email))
		if err != nil {
			if errors.Is(err, domain.ErrMemberNotFound) {
				msg := "找不到此 Email 的會員資料，請確認後再試。"
				if s.upgradeURL != "" {
					msg += "\n加入會員：" + s.upgradeURL
				}
				return nil, &GateResult{Reason: domain.ReasonNotFound, Message: msg}
			}
			return nil, s.degraded(ctx, err)
		}
		return member, nil
	}

	if identity.ChatID == "" {
		return nil, &GateResult{
			Reason:  domain.ReasonMissingIdentity,
			Message: "請提供 Email，或先完成綁定（輸入「綁定 你的Email」）。",
		}
	}

	member, err := s.members.FindByChatID(ctx, identity.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, &GateResult{
				Reason:  domain.ReasonNotFound,
				Message: "尚未綁定 Email。請輸入「綁定 你的Email」，例如：綁定 test@example.com",
			}
		}
		return nil, s.degraded(ctx, err)
	}
	// A record bound to the chat id but without a usable email is treated
	// the same as unbound.
	if !domain.IsEmail(member.Email) {
		return nil, &GateResult{
			Reason:  domain.ReasonNotFound,
			Message: "尚未綁定 Email。請輸入「綁定 你的Email」，例如：綁定 test@example.com",
		}
	}
	return member, nil
}

func (s *GateService) degraded(ctx context.Context, err error) *GateResult {
	telemetry.CaptureError(ctx, err)
	return &GateResult{
		Reason:  domain.ReasonRegistryUnavailable,
		Message: "系統忙碌中，請稍後再試。",
	}
}

// Bind attaches a chat id to the member record matching email. Binding is
// idempotent for the same chat id; a record already bound to a different
// chat id is never overwritten.
//
// Two nearly simultaneous binds for the same email can both observe an
// unbound record and race to write. The registry has no concurrency
// primitive to close this; the race is accepted and the last write wins.
func (s *GateService) Bind(ctx context.Context, chatID, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "GateService.Bind", telemetry.SpanAttributes{
		Email:     email,
		Operation: "bind",
	})
	defer span.End()

	if s.members == nil {
		return domain.ErrRegistryUnavailable
	}
	if !domain.IsEmail(email) {
		return domain.ErrMalformedEmail
	}

	member, err := s.members.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}

	if member.ExternalChatID != "" {
		if member.ExternalChatID == chatID {
			return nil
		}
		return domain.ErrAlreadyBoundElsewhere
	}

	return s.members.SetChatID(ctx, member.PageID, chatID)
}

// Status returns the member record bound to chatID, for the status command.
func (s *GateService) Status(ctx context.Context, chatID string) (*domain.MemberRecord, error) {
	if s.members == nil {
		return nil, domain.ErrRegistryUnavailable
	}
	return s.members.FindByChatID(ctx, chatID)
}
