package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	NotionToken string `envconfig:"NOTION_TOKEN" required:"true"`
	QADBID      string `envconfig:"QA_DB_ID" required:"true"`
	MemberDBID  string `envconfig:"MEMBER_DB_ID"`
	RecordDBID  string `envconfig:"RECORD_DB_ID"`

	LineChannelToken  string `envconfig:"LINE_CHANNEL_TOKEN"`
	LineChannelSecret string `envconfig:"LINE_CHANNEL_SECRET"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// UpgradeURL is appended to disabled/expired denial messages as a
	// call-to-action link.
	UpgradeURL string `envconfig:"UPGRADE_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("BULAU", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasMemberDB() bool {
	return c.MemberDBID != ""
}

func (c *Config) HasRecordDB() bool {
	return c.RecordDBID != ""
}

func (c *Config) HasLine() bool {
	return c.LineChannelToken != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
