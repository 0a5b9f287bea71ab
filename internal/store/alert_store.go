package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Alert is one system-generated notification addressed to a single viewer.
// An alert with a null read_at is unread.
type Alert struct {
	ID         string
	ViewerID   string
	Title      string
	Body       string
	ActionType string
	ActionID   string
	CreatedAt  time.Time
	ReadAt     time.Time
	HasRead    bool
}

// NativeID returns the alert's identifier within its own store.
func (a Alert) NativeID() string { return a.ID }

// CreateAlert inserts an alert addressed to a viewer. A missing ID is
// filled with a new UUID.
func (s *SQLiteStore) CreateAlert(ctx context.Context, a Alert) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, viewer_id, title, body, action_type, action_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ViewerID, a.Title, a.Body, a.ActionType, a.ActionID,
		a.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting alert: %w", err)
	}

	s.notify(ChangeEvent{Table: TableAlerts, ViewerID: a.ViewerID, Op: "insert"})
	return a.ID, nil
}

// ListAlerts retrieves up to limit alerts addressed to the viewer, ordered
// by creation time descending.
func (s *SQLiteStore) ListAlerts(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]Alert, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, viewer_id, title, body, action_type, action_id,
		       created_at, read_at
		FROM alerts
		WHERE viewer_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		viewerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// MarkAlertsRead stamps read_at on the viewer's given alerts in a single
// statement, leaving already-read alerts untouched.
func (s *SQLiteStore) MarkAlertsRead(
	ctx context.Context,
	viewerID string,
	alertIDs []string,
) error {
	if len(alertIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`
		UPDATE alerts
		SET read_at = ?
		WHERE viewer_id = ? AND read_at IS NULL AND id IN (?)`,
		time.Now().UTC(), viewerID, alertIDs,
	)
	if err != nil {
		return fmt.Errorf("building mark-read query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking alerts read: %w", err)
	}

	s.notify(ChangeEvent{Table: TableAlerts, ViewerID: viewerID, Op: "update"})
	return nil
}

// CountUnreadAlerts counts the viewer's unread alerts, excluding
// dismissed ones.
func (s *SQLiteStore) CountUnreadAlerts(
	ctx context.Context,
	viewerID string,
	sourceType string,
) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM alerts a
		WHERE a.viewer_id = ? AND a.read_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM dismissals d
			WHERE d.viewer_id = a.viewer_id
			  AND d.source_type = ?
			  AND d.native_id = a.id
		  )`,
		viewerID, sourceType,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread alerts: %w", err)
	}
	return count, nil
}

// scanAlert scans an alert row from a sqlx.Rows result set.
func scanAlert(rows *sqlx.Rows) (Alert, error) {
	var (
		a      Alert
		readAt sql.NullTime
	)

	err := rows.Scan(
		&a.ID, &a.ViewerID, &a.Title, &a.Body, &a.ActionType, &a.ActionID,
		&a.CreatedAt, &readAt,
	)
	if err != nil {
		return Alert{}, fmt.Errorf("scanning alert row: %w", err)
	}

	if readAt.Valid {
		a.ReadAt = readAt.Time
		a.HasRead = true
	}

	return a, nil
}
