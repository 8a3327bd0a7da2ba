package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Vycas/1000-online/internal/domain"
)

type GameConfig struct {
	TargetScore         int    `json:"target_score"`
	MaxBid              int    `json:"max_bid"`
	TurnDurationSeconds int    `json:"turn_duration_seconds"`
	InviteSecret        string `json:"invite_secret"`
	// InviteTTLMinutes configures how long a generated invite link stays valid.
	InviteTTLMinutes int `json:"invite_ttl_minutes"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// MarriageValues overrides the call value per suit code (S, D, C, H).
	MarriageValues map[string]int `json:"marriage_values"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBotAutoFillDelay returns the configured auto-fill delay in seconds.
// Safe on a nil receiver so callers can chain off GetGameConfig.
func (c *GameConfig) GetBotAutoFillDelay() int {
	if c == nil {
		return 0
	}
	return c.BotAutoFillDelaySeconds
}

// GetInviteTTL returns the configured invite lifetime in minutes.
func (c *GameConfig) GetInviteTTL() int {
	if c == nil {
		return 0
	}
	return c.InviteTTLMinutes
}

// GetRules returns the table rules, applying any configured overrides on top
// of the defaults.
func GetRules() domain.Rules {
	rules := domain.DefaultRules()
	if cfg == nil {
		return rules
	}

	if cfg.TargetScore > 0 {
		rules.TargetScore = cfg.TargetScore
	}
	if cfg.MaxBid > 0 {
		rules.MaxBid = cfg.MaxBid
	}
	for code, value := range cfg.MarriageValues {
		card, err := domain.ParseCard(code + "Q")
		if err != nil {
			continue
		}
		rules.Marriages[card.Suit] = value
	}
	return rules
}

// GetInviteSecret returns the secret used to sign invite tokens.
func GetInviteSecret() string {
	if cfg == nil || cfg.InviteSecret == "" {
		return "dev-only-invite-secret" // Safe default for local runs
	}
	return cfg.InviteSecret
}
