package store

import (
	"context"
	"fmt"
	"time"
)

// DismissalKey identifies one dismissed native record for one viewer.
type DismissalKey struct {
	SourceType string
	NativeID   string
}

// Dismiss upserts a dismissal marker for the viewer. Dismissing an
// already-dismissed record keeps the original timestamp and succeeds.
func (s *SQLiteStore) Dismiss(
	ctx context.Context,
	viewerID string,
	sourceType string,
	nativeID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dismissals (viewer_id, source_type, native_id, dismissed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (viewer_id, source_type, native_id) DO NOTHING`,
		viewerID, sourceType, nativeID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("dismissing %s/%s: %w", sourceType, nativeID, err)
	}

	s.notify(ChangeEvent{Table: TableDismissals, ViewerID: viewerID, Op: "upsert"})
	return nil
}

// Restore deletes a dismissal marker. Restoring a record that was never
// dismissed is a no-op success.
func (s *SQLiteStore) Restore(
	ctx context.Context,
	viewerID string,
	sourceType string,
	nativeID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM dismissals
		WHERE viewer_id = ? AND source_type = ? AND native_id = ?`,
		viewerID, sourceType, nativeID,
	)
	if err != nil {
		return fmt.Errorf("restoring %s/%s: %w", sourceType, nativeID, err)
	}

	s.notify(ChangeEvent{Table: TableDismissals, ViewerID: viewerID, Op: "delete"})
	return nil
}

// DismissedSet returns every active dismissal marker for the viewer as a
// lookup set keyed by (source type, native id).
func (s *SQLiteStore) DismissedSet(
	ctx context.Context,
	viewerID string,
) (map[DismissalKey]struct{}, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT source_type, native_id FROM dismissals WHERE viewer_id = ?`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying dismissals: %w", err)
	}
	defer rows.Close()

	set := make(map[DismissalKey]struct{})
	for rows.Next() {
		var key DismissalKey
		if err := rows.Scan(&key.SourceType, &key.NativeID); err != nil {
			return nil, fmt.Errorf("scanning dismissal row: %w", err)
		}
		set[key] = struct{}{}
	}

	return set, rows.Err()
}
