package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/giveabot/core/config"
	coredatabase "github.com/m3rciful/giveabot/core/database"
	coreredis "github.com/m3rciful/giveabot/core/redis"
)

// GiveawayConfig holds settings specific to the giveaway flows.
type GiveawayConfig struct {
	// BotURL is the public t.me link of the bot, used to build share
	// deep links after publishing. Optional.
	BotURL string `yaml:"bot_url" envconfig:"GIVEAWAY_BOT_URL"`
}

// Config aggregates core bot configuration with the infrastructure and
// giveaway sections this application adds.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Redis    coreredis.Config    `yaml:"redis"`
	Giveaway GiveawayConfig      `yaml:"giveaway"`
}

// LoadConfig reads configuration from a YAML file, overlays environment
// variables, and validates the core section.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}
