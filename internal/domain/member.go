package domain

import (
	"regexp"
	"strings"
	"time"
)

// emailPattern is the local@domain.tld shape check applied to claimed
// identities before any registry lookup.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s passes the email shape check.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail lowercases and trims an email for case-insensitive lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BlockedStatuses is the controlled vocabulary of member statuses that deny
// access. Any other status, including absence, is allowed (fail-open).
var BlockedStatuses = []string{"停用", "封鎖", "黑名單", "禁用"}

// MemberRecord represents a person authorized to use the lookup. Records are
// managed externally; this system only reads them and binds chat ids.
type MemberRecord struct {
	PageID         string
	Email          string
	ExternalChatID string
	Status         string
	Tier           string
	ExpiresOn      *time.Time
}

// IsBlocked reports whether the record's status is in the blocked vocabulary.
func (m *MemberRecord) IsBlocked() bool {
	status := strings.TrimSpace(m.Status)
	if status == "" {
		return false
	}
	for _, blocked := range BlockedStatuses {
		if status == blocked {
			return true
		}
	}
	return false
}

// IsExpired reports whether the record expired strictly before today.
// The comparison is date-only; time-of-day is ignored. Records without an
// expiry never expire.
func (m *MemberRecord) IsExpired(now time.Time) bool {
	if m.ExpiresOn == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	exp := *m.ExpiresOn
	expDay := time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, now.Location())
	return expDay.Before(today)
}
