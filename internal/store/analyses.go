package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// CreateAnalysis inserts an analysis row. Analyses are immutable; there is
// no update path.
func (s *Store) CreateAnalysis(a *journal.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO analyses (id, entry_id, lens, provider, model, content, token_count, cost_usd, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EntryID, a.Lens, a.Provider, a.Model, a.Content, a.TokenCount, a.CostUSD, a.CreatedAt,
	)
	if err != nil {
		return storageErr("create analysis", err)
	}
	logging.StoreDebug("Created analysis %s for entry %s (%s/%s)", a.ID, a.EntryID, a.Provider, a.Model)
	s.notifier.emit(CollectionAnalyses)
	return nil
}

// GetAnalysis returns one analysis, or (nil, nil) when absent.
func (s *Store) GetAnalysis(id string) (*journal.Analysis, error) {
	var a journal.Analysis
	err := s.db.QueryRow(
		`SELECT id, entry_id, lens, provider, model, content, token_count, cost_usd, created_at
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.EntryID, &a.Lens, &a.Provider, &a.Model, &a.Content, &a.TokenCount, &a.CostUSD, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get analysis", err)
	}
	return &a, nil
}

// GetAnalysesForEntry returns an entry's analyses, newest first.
func (s *Store) GetAnalysesForEntry(entryID string) ([]journal.Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, entry_id, lens, provider, model, content, token_count, cost_usd, created_at
		 FROM analyses WHERE entry_id = ? ORDER BY created_at DESC`, entryID,
	)
	if err != nil {
		return nil, storageErr("list analyses", err)
	}
	defer rows.Close()

	var out []journal.Analysis
	for rows.Next() {
		var a journal.Analysis
		if err := rows.Scan(&a.ID, &a.EntryID, &a.Lens, &a.Provider, &a.Model, &a.Content, &a.TokenCount, &a.CostUSD, &a.CreatedAt); err != nil {
			return nil, storageErr("scan analysis", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list analyses", err)
	}
	return out, nil
}

// ListAnalyses returns every analysis, newest first. Used by export.
func (s *Store) ListAnalyses() ([]journal.Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, entry_id, lens, provider, model, content, token_count, cost_usd, created_at
		 FROM analyses ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, storageErr("list analyses", err)
	}
	defer rows.Close()

	var out []journal.Analysis
	for rows.Next() {
		var a journal.Analysis
		if err := rows.Scan(&a.ID, &a.EntryID, &a.Lens, &a.Provider, &a.Model, &a.Content, &a.TokenCount, &a.CostUSD, &a.CreatedAt); err != nil {
			return nil, storageErr("scan analysis", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list analyses", err)
	}
	return out, nil
}
