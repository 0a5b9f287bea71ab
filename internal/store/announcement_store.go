package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Announcement is one broadcast record together with the requesting
// viewer's read state. HasRead is derived from the announcement_reads
// table: an announcement with no read row for the viewer is unread.
type Announcement struct {
	ID          string
	Title       string
	Body        string
	PublishedAt time.Time
	HasRead     bool
}

// NativeID returns the announcement's identifier within its own store.
func (a Announcement) NativeID() string { return a.ID }

// PublishAnnouncement inserts a published announcement. A missing ID is
// filled with a new UUID.
func (s *SQLiteStore) PublishAnnouncement(
	ctx context.Context,
	a Announcement,
) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (id, title, body, published, published_at)
		VALUES (?, ?, ?, 1, ?)`,
		a.ID, a.Title, a.Body, a.PublishedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting announcement: %w", err)
	}

	s.notify(ChangeEvent{Table: TableAnnouncements, Op: "insert"})
	return a.ID, nil
}

// ListPublishedAnnouncements retrieves up to limit published announcements
// ordered by publish time descending, each annotated with whether the
// viewer has a read marker for it.
func (s *SQLiteStore) ListPublishedAnnouncements(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]Announcement, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT a.id, a.title, a.body, a.published_at,
		       EXISTS (
			SELECT 1 FROM announcement_reads r
			WHERE r.announcement_id = a.id AND r.viewer_id = ?
		       )
		FROM announcements a
		WHERE a.published = 1
		ORDER BY a.published_at DESC
		LIMIT ?`,
		viewerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying announcements: %w", err)
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}

// MarkAnnouncementsRead upserts read markers for the viewer on the given
// announcements in a single statement. Re-marking keeps the original
// read_at timestamp, so the operation is idempotent.
func (s *SQLiteStore) MarkAnnouncementsRead(
	ctx context.Context,
	viewerID string,
	announcementIDs []string,
) error {
	if len(announcementIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	args := make([]interface{}, 0, len(announcementIDs)*3)
	values := ""
	for i, id := range announcementIDs {
		if i > 0 {
			values += ", "
		}
		values += "(?, ?, ?)"
		args = append(args, id, viewerID, now)
	}

	query := `
		INSERT INTO announcement_reads (announcement_id, viewer_id, read_at)
		VALUES ` + values + `
		ON CONFLICT (announcement_id, viewer_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking announcements read: %w", err)
	}

	s.notify(ChangeEvent{Table: TableAnnouncementReads, ViewerID: viewerID, Op: "upsert"})
	return nil
}

// CountUnreadAnnouncements counts published announcements with no read
// marker for the viewer, excluding dismissed ones.
func (s *SQLiteStore) CountUnreadAnnouncements(
	ctx context.Context,
	viewerID string,
	sourceType string,
) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM announcements a
		WHERE a.published = 1
		  AND NOT EXISTS (
			SELECT 1 FROM announcement_reads r
			WHERE r.announcement_id = a.id AND r.viewer_id = ?
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM dismissals d
			WHERE d.viewer_id = ?
			  AND d.source_type = ?
			  AND d.native_id = a.id
		  )`,
		viewerID, viewerID, sourceType,
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread announcements: %w", err)
	}
	return count, nil
}

// scanAnnouncement scans an announcement row from a sqlx.Rows result set.
func scanAnnouncement(rows *sqlx.Rows) (Announcement, error) {
	var (
		a       Announcement
		hasRead int
	)

	err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.PublishedAt, &hasRead)
	if err != nil {
		return Announcement{}, fmt.Errorf("scanning announcement row: %w", err)
	}

	a.HasRead = hasRead != 0
	return a, nil
}
