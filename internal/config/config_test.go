package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("BULAU_NOTION_TOKEN", "secret_test")
	os.Setenv("BULAU_QA_DB_ID", "qa-db")
	os.Setenv("BULAU_MEMBER_DB_ID", "member-db")
	os.Setenv("BULAU_RECORD_DB_ID", "record-db")
	os.Setenv("BULAU_PORT", "9090")
	os.Setenv("BULAU_DEBUG", "true")
	os.Setenv("BULAU_LINE_CHANNEL_TOKEN", "line-token")
	os.Setenv("BULAU_LINE_CHANNEL_SECRET", "line-secret")
	os.Setenv("BULAU_OPENAI_API_KEY", "sk-test")
	os.Setenv("BULAU_UPGRADE_URL", "https://example.com/renew")
	defer func() {
		os.Unsetenv("BULAU_NOTION_TOKEN")
		os.Unsetenv("BULAU_QA_DB_ID")
		os.Unsetenv("BULAU_MEMBER_DB_ID")
		os.Unsetenv("BULAU_RECORD_DB_ID")
		os.Unsetenv("BULAU_PORT")
		os.Unsetenv("BULAU_DEBUG")
		os.Unsetenv("BULAU_LINE_CHANNEL_TOKEN")
		os.Unsetenv("BULAU_LINE_CHANNEL_SECRET")
		os.Unsetenv("BULAU_OPENAI_API_KEY")
		os.Unsetenv("BULAU_UPGRADE_URL")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret_test", cfg.NotionToken)
	assert.Equal(t, "qa-db", cfg.QADBID)
	assert.Equal(t, "member-db", cfg.MemberDBID)
	assert.Equal(t, "record-db", cfg.RecordDBID)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "line-token", cfg.LineChannelToken)
	assert.Equal(t, "line-secret", cfg.LineChannelSecret)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "https://example.com/renew", cfg.UpgradeURL)

	assert.True(t, cfg.HasMemberDB())
	assert.True(t, cfg.HasRecordDB())
	assert.True(t, cfg.HasLine())
	assert.True(t, cfg.HasOpenAI())
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("BULAU_NOTION_TOKEN", "secret_test")
	os.Setenv("BULAU_QA_DB_ID", "qa-db")
	defer func() {
		os.Unsetenv("BULAU_NOTION_TOKEN")
		os.Unsetenv("BULAU_QA_DB_ID")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.HasMemberDB())
	assert.False(t, cfg.HasRecordDB())
	assert.False(t, cfg.HasLine())
	assert.False(t, cfg.HasOpenAI())
}

func TestLoad_RequiredNotionToken(t *testing.T) {
	os.Unsetenv("BULAU_NOTION_TOKEN")
	os.Setenv("BULAU_QA_DB_ID", "qa-db")
	defer os.Unsetenv("BULAU_QA_DB_ID")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NOTION_TOKEN")
}
