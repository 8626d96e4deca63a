// Package settings persists user preferences and credentials as a JSON file
// under the app data directory. Explicit Load/Save, no hot-reload.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dreamlens/internal/journal"
)

// Theme names a display theme.
type Theme string

const (
	ThemeLight          Theme = "light"
	ThemeDark           Theme = "dark"
	ThemeAggressiveDark Theme = "aggressive-dark"
)

// SubscriptionStatus mirrors the billing service's status string.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Settings is the persisted user configuration.
type Settings struct {
	Theme         Theme  `json:"theme"`
	AutoNightMode bool   `json:"autoNightMode"`
	NightStart    string `json:"nightStart"` // HH:mm
	NightEnd      string `json:"nightEnd"`   // HH:mm

	DefaultLens     journal.LensID     `json:"defaultLens"`
	DefaultProvider journal.ProviderID `json:"defaultProvider"`
	DefaultModel    string             `json:"defaultModel"`

	OpenAIAPIKey    string `json:"openaiApiKey,omitempty"`
	AnthropicAPIKey string `json:"anthropicApiKey,omitempty"`
	GeminiAPIKey    string `json:"geminiApiKey,omitempty"`

	SubscriptionEmail  string             `json:"subscriptionEmail,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	SessionToken       string             `json:"sessionToken,omitempty"`
	CurrentPeriodEnd   time.Time          `json:"currentPeriodEnd,omitempty"`
	ProxyBaseURL       string             `json:"proxyBaseUrl,omitempty"`

	DebugMode bool   `json:"debugMode"`
	LogLevel  string `json:"logLevel,omitempty"`

	path string
}

// Defaults returns the settings used before any file exists.
func Defaults() *Settings {
	return &Settings{
		Theme:           ThemeDark,
		AutoNightMode:   true,
		NightStart:      "21:00",
		NightEnd:        "07:00",
		DefaultLens:     journal.LensJung,
		DefaultProvider: journal.ProviderOpenAI,
		DefaultModel:    "gpt-4o-mini",
	}
}

// Load reads settings from path, falling back to defaults when the file does
// not exist yet. The rehydration hook, when set, runs once after a
// successful load.
func Load(path string, onRehydrate func(*Settings)) (*Settings, error) {
	s := Defaults()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if onRehydrate != nil {
				onRehydrate(s)
			}
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if onRehydrate != nil {
		onRehydrate(s)
	}
	return s, nil
}

// Save writes the settings back to the file they were loaded from.
func (s *Settings) Save() error {
	if s.path == "" {
		return fmt.Errorf("settings have no backing file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// APIKey returns the stored key for a provider, empty when unset.
func (s *Settings) APIKey(p journal.ProviderID) string {
	switch p {
	case journal.ProviderOpenAI:
		return s.OpenAIAPIKey
	case journal.ProviderAnthropic:
		return s.AnthropicAPIKey
	case journal.ProviderGoogle:
		return s.GeminiAPIKey
	}
	return ""
}

// IsSubscribed reports whether the subscription is usable: active status,
// a session token on hand, and the current period not yet expired.
func (s *Settings) IsSubscribed() bool {
	if s.SubscriptionStatus != SubscriptionActive || s.SessionToken == "" {
		return false
	}
	if !s.CurrentPeriodEnd.IsZero() && time.Now().After(s.CurrentPeriodEnd) {
		return false
	}
	return true
}

// ProxySession returns the proxy endpoint and session token pair.
func (s *Settings) ProxySession() (baseURL, token string) {
	return s.ProxyBaseURL, s.SessionToken
}

// EffectiveTheme returns the theme to display at the given time, switching
// to aggressive dark inside the night window when auto night mode is on.
// Overnight windows (start after end, e.g. 21:00-07:00) are supported.
func (s *Settings) EffectiveTheme(now time.Time) Theme {
	if !s.AutoNightMode {
		return s.Theme
	}
	start, err1 := parseClock(s.NightStart)
	end, err2 := parseClock(s.NightEnd)
	if err1 != nil || err2 != nil {
		return s.Theme
	}

	minutes := now.Hour()*60 + now.Minute()
	inWindow := false
	if start <= end {
		inWindow = minutes >= start && minutes < end
	} else {
		inWindow = minutes >= start || minutes < end
	}
	if inWindow {
		return ThemeAggressiveDark
	}
	return s.Theme
}

// parseClock converts "HH:mm" to minutes past midnight.
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
