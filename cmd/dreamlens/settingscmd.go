package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dreamlens/internal/journal"
	"dreamlens/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change settings",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.settings
			fmt.Printf("theme:            %s\n", s.Theme)
			fmt.Printf("auto-night-mode:  %v (%s-%s)\n", s.AutoNightMode, s.NightStart, s.NightEnd)
			fmt.Printf("default-lens:     %s\n", s.DefaultLens)
			fmt.Printf("default-provider: %s\n", s.DefaultProvider)
			fmt.Printf("default-model:    %s\n", s.DefaultModel)
			fmt.Printf("openai-key:       %s\n", maskKey(s.OpenAIAPIKey))
			fmt.Printf("anthropic-key:    %s\n", maskKey(s.AnthropicAPIKey))
			fmt.Printf("gemini-key:       %s\n", maskKey(s.GeminiAPIKey))
			fmt.Printf("subscribed:       %v\n", s.IsSubscribed())
			fmt.Printf("debug-mode:       %v\n", s.DebugMode)
			return nil
		},
	}
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting. Keys:
  theme, auto-night-mode, night-start, night-end,
  default-lens, default-provider, default-model,
  openai-key, anthropic-key, gemini-key,
  proxy-url, session-token, debug-mode, log-level`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			key, value := args[0], args[1]
			s := a.settings
			switch key {
			case "theme":
				s.Theme = settings.Theme(value)
			case "auto-night-mode":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid boolean %q", value)
				}
				s.AutoNightMode = b
			case "night-start":
				s.NightStart = value
			case "night-end":
				s.NightEnd = value
			case "default-lens":
				s.DefaultLens = journal.LensID(value)
			case "default-provider":
				s.DefaultProvider = journal.ProviderID(value)
			case "default-model":
				s.DefaultModel = value
			case "openai-key":
				s.OpenAIAPIKey = value
			case "anthropic-key":
				s.AnthropicAPIKey = value
			case "gemini-key":
				s.GeminiAPIKey = value
			case "proxy-url":
				s.ProxyBaseURL = value
			case "session-token":
				s.SessionToken = value
			case "debug-mode":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid boolean %q", value)
				}
				s.DebugMode = b
			case "log-level":
				s.LogLevel = value
			default:
				return fmt.Errorf("unknown setting %q", key)
			}
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Println("Saved.")
			return nil
		},
	}
}
