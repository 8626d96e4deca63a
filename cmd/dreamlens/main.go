// dreamlens is the journal client: capture entries, run interpretation
// sessions with live streaming output, manage the symbol glossary, and
// export the whole journal.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dreamlens/internal/logging"
	"dreamlens/internal/settings"
	"dreamlens/internal/store"
)

var dataDirFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:           "dreamlens",
		Short:         "A dream journal with multi-framework interpretation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.dreamlens)")

	rootCmd.AddCommand(
		newCaptureCmd(),
		newListCmd(),
		newShowCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newInterpretCmd(),
		newFollowupCmd(),
		newSymbolsCmd(),
		newSettingsCmd(),
		newExportCmd(),
		newStatsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the opened data layer for one command invocation.
type app struct {
	dataDir  string
	settings *settings.Settings
	store    *store.Store
}

func dataDir() (string, error) {
	if dataDirFlag != "" {
		return dataDirFlag, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".dreamlens"), nil
}

func openApp() (*app, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}

	cfg, err := settings.Load(filepath.Join(dir, "settings.json"), func(s *settings.Settings) {
		if err := logging.Initialize(dir, s.DebugMode, s.LogLevel); err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, "journal.db"))
	if err != nil {
		return nil, err
	}
	return &app{dataDir: dir, settings: cfg, store: st}, nil
}

func (a *app) Close() {
	a.store.Close()
	logging.CloseAll()
}
