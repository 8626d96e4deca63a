// Package export produces a full JSON snapshot of the journal: every
// collection plus counts, read-only, no import counterpart.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
	"dreamlens/internal/store"
)

// Version tags the snapshot format.
const Version = "1.0"

// Snapshot is the exported document.
type Snapshot struct {
	Version       string                 `json:"version"`
	ExportDate    time.Time              `json:"exportDate"`
	Entries       []journal.Entry        `json:"entries"`
	Analyses      []journal.Analysis     `json:"analyses"`
	Conversations []journal.Conversation `json:"conversations"`
	Symbols       []journal.Symbol       `json:"symbols"`
	Stats         store.Stats            `json:"stats"`
}

// Build gathers all four collections concurrently into one snapshot.
func Build(ctx context.Context, st *store.Store) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    Version,
		ExportDate: time.Now().UTC(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Entries, err = st.ListEntries()
		return err
	})
	g.Go(func() error {
		var err error
		snap.Analyses, err = st.ListAnalyses()
		return err
	})
	g.Go(func() error {
		var err error
		snap.Conversations, err = st.ListConversations()
		return err
	})
	g.Go(func() error {
		var err error
		snap.Symbols, err = st.ListSymbols()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to gather snapshot: %w", err)
	}

	stats, err := st.Stats()
	if err != nil {
		return nil, err
	}
	snap.Stats = stats

	if snap.Entries == nil {
		snap.Entries = []journal.Entry{}
	}
	if snap.Analyses == nil {
		snap.Analyses = []journal.Analysis{}
	}
	if snap.Conversations == nil {
		snap.Conversations = []journal.Conversation{}
	}
	if snap.Symbols == nil {
		snap.Symbols = []journal.Symbol{}
	}
	return snap, nil
}

// WriteFile serializes a snapshot to dir with a timestamped filename and
// returns the written path.
func WriteFile(snap *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("dreamlens-export-%s.json", snap.ExportDate.Format("2006-01-02-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	logging.Export("Wrote snapshot %s (%d entries, %d analyses)", path, len(snap.Entries), len(snap.Analyses))
	return path, nil
}
