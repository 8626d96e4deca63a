package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dreamlens/internal/journal"
	"dreamlens/internal/logging"
)

// CreateConversation inserts an empty conversation anchored to an analysis.
func (s *Store) CreateConversation(c *journal.Conversation) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.Exec(
		`INSERT INTO conversations (id, analysis_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.AnalysisID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return storageErr("create conversation", err)
	}

	// Seed messages are allowed on create (LoadConversation writes none).
	for i, m := range c.Messages {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = now
		}
		if _, err := s.db.Exec(
			`INSERT INTO messages (conversation_id, seq, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
			c.ID, i, m.Role, m.Content, ts,
		); err != nil {
			return storageErr("seed conversation message", err)
		}
	}

	logging.StoreDebug("Created conversation %s for analysis %s", c.ID, c.AnalysisID)
	s.notifier.emit(CollectionConversations)
	return nil
}

// GetConversationForAnalysis returns the conversation anchored to an
// analysis with its messages in order, or (nil, nil) when none exists.
func (s *Store) GetConversationForAnalysis(analysisID string) (*journal.Conversation, error) {
	var c journal.Conversation
	err := s.db.QueryRow(
		`SELECT id, analysis_id, created_at, updated_at FROM conversations WHERE analysis_id = ?`, analysisID,
	).Scan(&c.ID, &c.AnalysisID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get conversation", err)
	}

	msgs, err := s.messagesFor(c.ID)
	if err != nil {
		return nil, err
	}
	c.Messages = msgs
	return &c, nil
}

func (s *Store) messagesFor(conversationID string) ([]journal.Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content, timestamp FROM messages WHERE conversation_id = ? ORDER BY seq`, conversationID,
	)
	if err != nil {
		return nil, storageErr("load messages", err)
	}
	defer rows.Close()

	var out []journal.Message
	for rows.Next() {
		var m journal.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, storageErr("scan message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load messages", err)
	}
	return out, nil
}

// AppendMessage appends one message to a conversation, stamping it with the
// current time and bumping the conversation's updated_at. Returns
// journal.ErrNotFound when the conversation does not exist.
func (s *Store) AppendMessage(conversationID string, role journal.Role, content string) error {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("append message", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err != nil {
		return storageErr("append message", err)
	}
	if exists == 0 {
		return fmt.Errorf("append to conversation %s: %w", conversationID, journal.ErrNotFound)
	}

	var nextSeq int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM messages WHERE conversation_id = ?`, conversationID,
	).Scan(&nextSeq)
	if err != nil {
		return storageErr("append message", err)
	}

	_, err = tx.Exec(
		`INSERT INTO messages (conversation_id, seq, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
		conversationID, nextSeq, role, content, now,
	)
	if err != nil {
		return storageErr("append message", err)
	}
	_, err = tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID)
	if err != nil {
		return storageErr("append message", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("append message", err)
	}

	logging.StoreDebug("Appended %s message to conversation %s (seq %d)", role, conversationID, nextSeq)
	s.notifier.emit(CollectionConversations)
	return nil
}

// ListConversations returns every conversation with messages. Used by export.
func (s *Store) ListConversations() ([]journal.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, analysis_id, created_at, updated_at FROM conversations ORDER BY created_at`,
	)
	if err != nil {
		return nil, storageErr("list conversations", err)
	}
	defer rows.Close()

	var out []journal.Conversation
	for rows.Next() {
		var c journal.Conversation
		if err := rows.Scan(&c.ID, &c.AnalysisID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storageErr("scan conversation", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list conversations", err)
	}
	for i := range out {
		msgs, err := s.messagesFor(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Messages = msgs
	}
	return out, nil
}
