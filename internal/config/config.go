// Package config loads and validates the bot's startup configuration.
// Values come from an optional TOML file with environment variable
// overrides for secrets; everything is read once at startup and treated
// as immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath    = "config.toml"
	DefaultHTTPAddr      = ":8080"
	DefaultLedgerPath    = "results.db"
	DefaultTokenPath     = "token.json"
	DefaultS3Region      = "us-east-1"
	DefaultReindexSpec   = "0 4 * * *"
	DefaultMaxReplaySize = 25 * 1024 * 1024
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Discord DiscordConfig `toml:"discord"`
	Storage StorageConfig `toml:"storage"`
	Intake  IntakeConfig  `toml:"intake"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Google  GoogleConfig  `toml:"google"`
	Reindex ReindexConfig `toml:"reindex"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DiscordConfig authenticates the chat session and names the one admin.
type DiscordConfig struct {
	Token           string   `toml:"token" validate:"required"`
	AdminUserID     string   `toml:"admin_user_id" validate:"required"`
	ResultsChannels []string `toml:"results_channels"`
	IgnoredUsers    []string `toml:"ignored_users"`
}

// StorageConfig targets one logical bucket on an S3-compatible store.
type StorageConfig struct {
	Bucket    string `toml:"bucket" validate:"required"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Endpoint  string `toml:"endpoint"`
}

type IntakeConfig struct {
	MaxReplayBytes int64 `toml:"max_replay_bytes" validate:"gt=0"`
}

type LedgerConfig struct {
	Path string `toml:"path"`
}

// GoogleConfig locates the persisted OAuth token artifact consumed at startup.
type GoogleConfig struct {
	TokenPath string `toml:"token_path"`
}

type ReindexConfig struct {
	Schedule string `toml:"schedule"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Storage: StorageConfig{
			Region: DefaultS3Region,
		},
		Intake: IntakeConfig{
			MaxReplayBytes: DefaultMaxReplaySize,
		},
		Ledger: LedgerConfig{
			Path: DefaultLedgerPath,
		},
		Google: GoogleConfig{
			TokenPath: DefaultTokenPath,
		},
		Reindex: ReindexConfig{
			Schedule: DefaultReindexSpec,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with RECBOT_* environment variables so
// secrets never need to live in the config file.
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"RECBOT_DISCORD_TOKEN": &c.Discord.Token,
		"RECBOT_ADMIN_USER_ID": &c.Discord.AdminUserID,
		"RECBOT_S3_BUCKET":     &c.Storage.Bucket,
		"RECBOT_S3_REGION":     &c.Storage.Region,
		"RECBOT_S3_ACCESS_KEY": &c.Storage.AccessKey,
		"RECBOT_S3_SECRET_KEY": &c.Storage.SecretKey,
		"RECBOT_S3_ENDPOINT":   &c.Storage.Endpoint,
		"RECBOT_GOOGLE_TOKEN":  &c.Google.TokenPath,
		"RECBOT_LEDGER_PATH":   &c.Ledger.Path,
	}
	for name, target := range overrides {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			*target = value
		}
	}
}

// Validate reports the first missing or invalid required value. A failure
// here is fatal at startup.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		invalid = verrs
	}
	if len(invalid) > 0 {
		first := invalid[0]
		return fmt.Errorf("config field %s failed %q validation", first.Namespace(), first.Tag())
	}
	return err
}

// IsIgnoredUser reports whether the user ID is on the ignore list.
func (c DiscordConfig) IsIgnoredUser(userID string) bool {
	for _, ignored := range c.IgnoredUsers {
		if strings.TrimSpace(ignored) == userID {
			return true
		}
	}
	return false
}
