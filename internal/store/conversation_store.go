package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Conversation kinds. Direct conversations are client-facing threads,
// team conversations are internal chats; both share one table.
const (
	ConversationKindDirect = "direct"
	ConversationKindTeam   = "team"
)

// Conversation is one chat thread together with the requesting viewer's
// unread counter from the participants table.
type Conversation struct {
	ID              string
	Kind            string
	Title           string
	JobID           string
	LastMessageBody string
	LastMessageAt   time.Time
	UnreadCount     int
}

// NativeID returns the conversation's identifier within its own store.
func (c Conversation) NativeID() string { return c.ID }

// Message is a single message within a conversation.
type Message struct {
	ID             string
	ConversationID string
	AuthorID       string
	Body           string
	CreatedAt      time.Time
}

// CreateConversation inserts a conversation and its participant rows in a
// single transaction. A missing ID is filled with a new UUID.
func (s *SQLiteStore) CreateConversation(
	ctx context.Context,
	c Conversation,
	participantIDs []string,
) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, kind, title, job_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Kind, c.Title, c.JobID, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting conversation: %w", err)
	}

	for _, viewerID := range participantIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conversation_participants (conversation_id, viewer_id)
			VALUES (?, ?)
			ON CONFLICT (conversation_id, viewer_id) DO NOTHING`,
			c.ID, viewerID,
		)
		if err != nil {
			return "", fmt.Errorf("inserting participant %s: %w", viewerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing conversation: %w", err)
	}

	s.notify(ChangeEvent{Table: TableConversations, Op: "insert"})
	return c.ID, nil
}

// AppendMessage inserts a message, stamps the conversation's last-activity
// fields, and bumps the unread counter of every participant other than
// the author, all in one transaction.
func (s *SQLiteStore) AppendMessage(ctx context.Context, m Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.AuthorID, m.Body, m.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message_body = ?, last_message_at = ?
		WHERE id = ?`,
		m.Body, m.CreatedAt.UTC(), m.ConversationID,
	)
	if err != nil {
		return fmt.Errorf("updating conversation activity: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversation_participants
		SET unread_count = unread_count + 1
		WHERE conversation_id = ? AND viewer_id != ?`,
		m.ConversationID, m.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("bumping unread counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing message: %w", err)
	}

	s.notify(ChangeEvent{Table: TableMessages, Op: "insert"})
	return nil
}

// ListConversations retrieves up to limit conversations of the given kind
// that the viewer participates in, ordered by last activity descending.
// A viewer with no conversations gets an empty slice, not an error.
func (s *SQLiteStore) ListConversations(
	ctx context.Context,
	viewerID string,
	kind string,
	limit int,
) ([]Conversation, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT c.id, c.kind, c.title, c.job_id, c.last_message_body,
		       COALESCE(c.last_message_at, c.created_at), p.unread_count
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE p.viewer_id = ? AND c.kind = ?
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
		LIMIT ?`,
		viewerID, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}

	return conversations, rows.Err()
}

// MarkConversationsRead zeroes the viewer's unread counters and stamps
// last_read_at for the given conversations in a single statement.
// Marking an already-read conversation is a no-op.
func (s *SQLiteStore) MarkConversationsRead(
	ctx context.Context,
	viewerID string,
	conversationIDs []string,
) error {
	if len(conversationIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE conversation_participants
		SET unread_count = 0, last_read_at = ?
		WHERE viewer_id = ? AND conversation_id IN (?)`,
		time.Now().UTC(), viewerID, conversationIDs,
	)
	if err != nil {
		return fmt.Errorf("building mark-read query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking conversations read: %w", err)
	}

	s.notify(ChangeEvent{Table: TableConversations, ViewerID: viewerID, Op: "update"})
	return nil
}

// CountUnreadConversations counts the viewer's conversations of the given
// kind with a positive unread counter, excluding dismissed ones. The
// sourceType is the dismissal namespace for that kind.
func (s *SQLiteStore) CountUnreadConversations(
	ctx context.Context,
	viewerID string,
	kind string,
	sourceType string,
) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM conversations c
		JOIN conversation_participants p ON p.conversation_id = c.id
		WHERE p.viewer_id = ? AND c.kind = ? AND p.unread_count > 0
		  AND NOT EXISTS (
			SELECT 1 FROM dismissals d
			WHERE d.viewer_id = p.viewer_id
			  AND d.source_type = ?
			  AND d.native_id = c.id
		  )`,
		viewerID, kind, sourceType,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread conversations: %w", err)
	}
	return count, nil
}

// scanConversation scans a conversation row from a sqlx.Rows result set.
func scanConversation(rows *sqlx.Rows) (Conversation, error) {
	var (
		c      Conversation
		lastAt sql.NullTime
	)

	err := rows.Scan(
		&c.ID, &c.Kind, &c.Title, &c.JobID, &c.LastMessageBody,
		&lastAt, &c.UnreadCount,
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("scanning conversation row: %w", err)
	}

	if lastAt.Valid {
		c.LastMessageAt = lastAt.Time
	}

	return c, nil
}
