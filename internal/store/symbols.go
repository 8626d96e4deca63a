package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// SymbolPatch carries the fields of a partial symbol update. Nil fields are
// left untouched.
type SymbolPatch struct {
	Name             *string
	Meaning          *string
	Context          *string
	Valence          *journal.Valence
	RelatedSymbolIDs *[]string
}

// CreateSymbol inserts a glossary symbol.
func (s *Store) CreateSymbol(sym *journal.Symbol) error {
	now := time.Now().UTC()
	if sym.ID == "" {
		sym.ID = uuid.NewString()
	}
	if sym.CreatedAt.IsZero() {
		sym.CreatedAt = now
	}
	sym.UpdatedAt = sym.CreatedAt

	related, err := json.Marshal(relatedOrEmpty(sym.RelatedSymbolIDs))
	if err != nil {
		return fmt.Errorf("marshal related symbol ids: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO symbols (id, name, meaning, context, valence, related_symbol_ids, frequency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.ID, sym.Name, sym.Meaning, sym.Context, sym.Valence, string(related), sym.Frequency, sym.CreatedAt, sym.UpdatedAt,
	)
	if err != nil {
		return storageErr("create symbol", err)
	}
	logging.StoreDebug("Created symbol %s (%q)", sym.ID, sym.Name)
	s.notifier.emit(CollectionSymbols)
	return nil
}

func relatedOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func scanSymbol(scan func(dest ...interface{}) error) (*journal.Symbol, error) {
	var sym journal.Symbol
	var related string
	err := scan(&sym.ID, &sym.Name, &sym.Meaning, &sym.Context, &sym.Valence, &related, &sym.Frequency, &sym.CreatedAt, &sym.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(related), &sym.RelatedSymbolIDs); err != nil {
		sym.RelatedSymbolIDs = []string{}
	}
	return &sym, nil
}

const symbolColumns = `id, name, meaning, context, valence, related_symbol_ids, frequency, created_at, updated_at`

// GetSymbol returns one symbol, or (nil, nil) when absent.
func (s *Store) GetSymbol(id string) (*journal.Symbol, error) {
	row := s.db.QueryRow(`SELECT `+symbolColumns+` FROM symbols WHERE id = ?`, id)
	sym, err := scanSymbol(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get symbol", err)
	}
	return sym, nil
}

// FindSymbolByName returns the symbol whose name matches case-insensitively,
// or (nil, nil) when absent.
func (s *Store) FindSymbolByName(name string) (*journal.Symbol, error) {
	row := s.db.QueryRow(`SELECT `+symbolColumns+` FROM symbols WHERE name = ? COLLATE NOCASE`, name)
	sym, err := scanSymbol(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find symbol", err)
	}
	return sym, nil
}

// ListSymbols returns all symbols ordered by descending frequency.
func (s *Store) ListSymbols() ([]journal.Symbol, error) {
	rows, err := s.db.Query(`SELECT ` + symbolColumns + ` FROM symbols ORDER BY frequency DESC, name`)
	if err != nil {
		return nil, storageErr("list symbols", err)
	}
	defer rows.Close()

	var out []journal.Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows.Scan)
		if err != nil {
			return nil, storageErr("scan symbol", err)
		}
		out = append(out, *sym)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list symbols", err)
	}
	return out, nil
}

// UpdateSymbol applies a partial update and bumps updated_at. Returns
// journal.ErrNotFound when the symbol does not exist.
func (s *Store) UpdateSymbol(id string, patch SymbolPatch) (*journal.Symbol, error) {
	current, err := s.GetSymbol(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("update symbol %s: %w", id, journal.ErrNotFound)
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Meaning != nil {
		current.Meaning = *patch.Meaning
	}
	if patch.Context != nil {
		current.Context = *patch.Context
	}
	if patch.Valence != nil {
		current.Valence = *patch.Valence
	}
	if patch.RelatedSymbolIDs != nil {
		current.RelatedSymbolIDs = *patch.RelatedSymbolIDs
	}
	current.UpdatedAt = time.Now().UTC()

	related, err := json.Marshal(relatedOrEmpty(current.RelatedSymbolIDs))
	if err != nil {
		return nil, fmt.Errorf("marshal related symbol ids: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE symbols SET name = ?, meaning = ?, context = ?, valence = ?, related_symbol_ids = ?, updated_at = ? WHERE id = ?`,
		current.Name, current.Meaning, current.Context, current.Valence, string(related), current.UpdatedAt, id,
	)
	if err != nil {
		return nil, storageErr("update symbol", err)
	}

	logging.StoreDebug("Updated symbol %s", id)
	s.notifier.emit(CollectionSymbols)
	return current, nil
}

// IncrementSymbolFrequency bumps a symbol's sighting counter. Atomic per row.
func (s *Store) IncrementSymbolFrequency(id string) error {
	res, err := s.db.Exec(
		`UPDATE symbols SET frequency = frequency + 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id,
	)
	if err != nil {
		return storageErr("increment symbol frequency", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("increment symbol %s: %w", id, journal.ErrNotFound)
	}
	s.notifier.emit(CollectionSymbols)
	return nil
}

// DeleteSymbol removes a glossary symbol. Deleting a missing symbol is a
// no-op; the glossary has an independent lifecycle from entries.
func (s *Store) DeleteSymbol(id string) error {
	if _, err := s.db.Exec(`DELETE FROM symbols WHERE id = ?`, id); err != nil {
		return storageErr("delete symbol", err)
	}
	logging.StoreDebug("Deleted symbol %s", id)
	s.notifier.emit(CollectionSymbols)
	return nil
}
