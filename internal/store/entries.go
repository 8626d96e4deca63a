package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// EntryPatch carries the fields of a partial entry update. Nil fields are
// left untouched. A non-nil Tags replaces the full tag set.
type EntryPatch struct {
	Title      *string
	Body       *string
	RecordedAt *time.Time
	Tags       *[]journal.Tag
}

// CreateEntry inserts an entry and its tags. A missing ID is generated;
// missing timestamps default to now.
func (s *Store) CreateEntry(e *journal.Entry) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = e.CreatedAt

	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("create entry", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO entries (id, title, body, recorded_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Body, e.RecordedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return storageErr("create entry", err)
	}
	if err := insertTags(tx, e.ID, e.Tags); err != nil {
		return storageErr("create entry tags", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("create entry", err)
	}

	logging.StoreDebug("Created entry %s (%d tags)", e.ID, len(e.Tags))
	s.notifier.emit(CollectionEntries)
	return nil
}

// insertTags is idempotent: the composite primary key plus INSERT OR IGNORE
// makes duplicate (category, value) pairs a no-op.
func insertTags(tx *sql.Tx, entryID string, tags []journal.Tag) error {
	for _, t := range tags {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO entry_tags (entry_id, category, value) VALUES (?, ?, ?)`,
			entryID, t.Category, t.Value,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetEntry returns an entry with its tags, or (nil, nil) when absent.
func (s *Store) GetEntry(id string) (*journal.Entry, error) {
	var e journal.Entry
	err := s.db.QueryRow(
		`SELECT id, title, body, recorded_at, created_at, updated_at FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.Body, &e.RecordedAt, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get entry", err)
	}
	tags, err := s.tagsForEntry(e.ID)
	if err != nil {
		return nil, err
	}
	e.Tags = tags
	return &e, nil
}

func (s *Store) tagsForEntry(entryID string) ([]journal.Tag, error) {
	rows, err := s.db.Query(
		`SELECT category, value FROM entry_tags WHERE entry_id = ? ORDER BY category, value`, entryID,
	)
	if err != nil {
		return nil, storageErr("load entry tags", err)
	}
	defer rows.Close()

	var tags []journal.Tag
	for rows.Next() {
		var t journal.Tag
		if err := rows.Scan(&t.Category, &t.Value); err != nil {
			return nil, storageErr("scan entry tag", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListEntries returns all entries, newest recorded first, tags included.
func (s *Store) ListEntries() ([]journal.Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, title, body, recorded_at, created_at, updated_at FROM entries ORDER BY recorded_at DESC`,
	)
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Body, &e.RecordedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, storageErr("scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list entries", err)
	}
	for i := range entries {
		tags, err := s.tagsForEntry(entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tags = tags
	}
	return entries, nil
}

// UpdateEntry applies a partial update and bumps updated_at. Returns
// journal.ErrNotFound when the entry does not exist.
func (s *Store) UpdateEntry(id string, patch EntryPatch) (*journal.Entry, error) {
	current, err := s.GetEntry(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("update entry %s: %w", id, journal.ErrNotFound)
	}

	if patch.Title != nil {
		current.Title = *patch.Title
	}
	if patch.Body != nil {
		current.Body = *patch.Body
	}
	if patch.RecordedAt != nil {
		current.RecordedAt = *patch.RecordedAt
	}
	current.UpdatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storageErr("update entry", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE entries SET title = ?, body = ?, recorded_at = ?, updated_at = ? WHERE id = ?`,
		current.Title, current.Body, current.RecordedAt, current.UpdatedAt, id,
	)
	if err != nil {
		return nil, storageErr("update entry", err)
	}
	if patch.Tags != nil {
		if _, err := tx.Exec(`DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
			return nil, storageErr("replace entry tags", err)
		}
		if err := insertTags(tx, id, *patch.Tags); err != nil {
			return nil, storageErr("replace entry tags", err)
		}
		current.Tags = *patch.Tags
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("update entry", err)
	}

	logging.StoreDebug("Updated entry %s", id)
	s.notifier.emit(CollectionEntries)
	return current, nil
}

// DeleteEntry removes an entry and everything hanging off it in one
// transaction, children first so a partial failure can never orphan rows.
func (s *Store) DeleteEntry(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("delete entry", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM messages WHERE conversation_id IN (
			SELECT c.id FROM conversations c
			JOIN analyses a ON a.id = c.analysis_id
			WHERE a.entry_id = ?)`, id,
	)
	if err != nil {
		return storageErr("delete entry messages", err)
	}
	_, err = tx.Exec(
		`DELETE FROM conversations WHERE analysis_id IN (
			SELECT id FROM analyses WHERE entry_id = ?)`, id,
	)
	if err != nil {
		return storageErr("delete entry conversations", err)
	}
	if _, err := tx.Exec(`DELETE FROM analyses WHERE entry_id = ?`, id); err != nil {
		return storageErr("delete entry analyses", err)
	}
	if _, err := tx.Exec(`DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
		return storageErr("delete entry tags", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return storageErr("delete entry", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("delete entry", err)
	}

	logging.Store("Deleted entry %s (cascade)", id)
	s.notifier.emit(CollectionEntries)
	s.notifier.emit(CollectionAnalyses)
	s.notifier.emit(CollectionConversations)
	return nil
}
