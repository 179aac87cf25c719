package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
)

// Config is the full environment surface of the registrar. Optional IDs left
// blank disable the matching feature (no GM overwrite, no audit message, no
// ops server) without error.
type Config struct {
	Token              string `env:"DISCORD_TOKEN"`
	GuildID            string `env:"GUILD_ID"`
	SubmissionsChannel string `env:"SUBMISSIONS_CHANNEL_ID"`
	CategoryID         string `env:"CATEGORY_ID"`
	ModeratorRoleID    string `env:"MODERATOR_ROLE_ID"`
	GameMasterRoleID   string `env:"GM_ROLE_ID"`
	LogChannelID       string `env:"LOG_CHANNEL_ID"`

	SheetID          string `env:"SHEET_ID"`
	SheetGID         string `env:"SHEET_GID" envDefault:"0"`
	RosterFailPolicy string `env:"ROSTER_FAIL_POLICY" envDefault:"empty"`

	RelayWebhookID string `env:"RELAY_WEBHOOK_ID"`
	SubmitCooldown int    `env:"SUBMIT_COOLDOWN_SECONDS" envDefault:"30"`

	RedisURL string `env:"REDIS_URL"`
	OpsAddr  string `env:"OPS_ADDR"`
	OpsToken string `env:"OPS_TOKEN"`
}

// Load parses the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	required := []struct {
		name  string
		value string
	}{
		{"DISCORD_TOKEN", cfg.Token},
		{"GUILD_ID", cfg.GuildID},
		{"SUBMISSIONS_CHANNEL_ID", cfg.SubmissionsChannel},
		{"CATEGORY_ID", cfg.CategoryID},
		{"MODERATOR_ROLE_ID", cfg.ModeratorRoleID},
		{"SHEET_ID", cfg.SheetID},
	}
	for _, r := range required {
		if r.value == "" {
			return cfg, fmt.Errorf("%s is required", r.name)
		}
	}

	if _, err := roster.ParsePolicy(cfg.RosterFailPolicy); err != nil {
		return cfg, err
	}
	if cfg.SubmitCooldown < 0 {
		return cfg, fmt.Errorf("SUBMIT_COOLDOWN_SECONDS must not be negative")
	}
	return cfg, nil
}

// RosterURL builds the published CSV export URL for the configured sheet.
func (c Config) RosterURL() string {
	return roster.ExportURL(c.SheetID, c.SheetGID)
}

// CooldownWindow converts the configured cooldown to a duration.
func (c Config) CooldownWindow() time.Duration {
	return time.Duration(c.SubmitCooldown) * time.Second
}
