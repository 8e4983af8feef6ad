package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain email", "test@example.com", true},
		{"subdomain", "a.b@mail.example.tw", true},
		{"plus tag", "user+tag@example.com", true},
		{"missing at", "example.com", false},
		{"missing dot after at", "user@example", false},
		{"empty", "", false},
		{"whitespace inside", "us er@example.com", false},
		{"double at", "a@@example.com", false},
		{"bare at", "@", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "test@example.com", NormalizeEmail("  Test@Example.COM "))
}

func TestMemberRecord_IsBlocked(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"no status is allowed", "", false},
		{"active status is allowed", "正式會員", false},
		{"disabled", "停用", true},
		{"blocked", "封鎖", true},
		{"blacklisted", "黑名單", true},
		{"forbidden", "禁用", true},
		{"padded blocked status", "  停用  ", true},
		{"unknown status is allowed", "體驗", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MemberRecord{Status: tt.status}
			assert.Equal(t, tt.want, m.IsBlocked())
		})
	}
}

func TestMemberRecord_IsExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)

	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	earlierToday := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresOn *time.Time
		want      bool
	}{
		{"no expiry never expires", nil, false},
		{"expired yesterday", &yesterday, true},
		{"expires tomorrow", &tomorrow, false},
		{"expires today is still valid", &earlierToday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MemberRecord{ExpiresOn: tt.expiresOn}
			assert.Equal(t, tt.want, m.IsExpired(now))
		})
	}
}

func TestMemberRecord_ExpiryIsMonotonic(t *testing.T) {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &MemberRecord{Email: "test@example.com", ExpiresOn: &exp, Status: "正式會員", Tier: "進階"}

	for _, day := range []time.Time{
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		assert.True(t, m.IsExpired(day), "expired record must stay expired at %s", day)
	}
}

func TestDomainError(t *testing.T) {
	err := NewDomainError(ReasonDisabled, "member disabled")
	assert.Equal(t, "[DISABLED] member disabled", err.Error())

	wrapped := NewDomainErrorWithCause(ReasonRegistryUnavailable, "registry query failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "REGISTRY_UNAVAILABLE")
	assert.ErrorIs(t, wrapped, assert.AnError)
}
