package announcement

import (
	"context"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// idPrefix namespaces announcement ids within the merged feed.
const idPrefix = "ann"

// Store is the slice of the record store the announcement adapter needs.
type Store interface {
	ListPublishedAnnouncements(ctx context.Context, viewerID string, limit int) ([]store.Announcement, error)
	MarkAnnouncementsRead(ctx context.Context, viewerID string, announcementIDs []string) error
}

// Adapter implements source.Adapter for broadcast announcements. Unread
// state is the absence of a per-viewer read marker.
type Adapter struct {
	store Store
}

// NewAdapter creates an announcement source adapter.
func NewAdapter(s Store) *Adapter {
	return &Adapter{store: s}
}

// Type returns the source type identifier for announcements.
func (a *Adapter) Type() model.SourceType {
	return model.SourceTypeAnnouncement
}

// FetchRecent returns published announcements ordered by publish time
// descending. Announcements are broadcast, so every viewer sees the same
// records; only the read annotation is viewer-specific.
func (a *Adapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	announcements, err := a.store.ListPublishedAnnouncements(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	records := make([]source.Record, 0, len(announcements))
	for _, ann := range announcements {
		records = append(records, ann)
	}
	return records, nil
}

// IsUnread reports whether the viewer has no read marker for the record.
func (a *Adapter) IsUnread(r source.Record, viewerID string) bool {
	ann, ok := r.(store.Announcement)
	if !ok {
		return false
	}
	return !ann.HasRead
}

// Project builds the unified item for an announcement.
func (a *Adapter) Project(r source.Record) model.UnifiedItem {
	ann, _ := r.(store.Announcement)

	title := ann.Title
	if title == "" {
		title = source.TitleUnknown
	}

	return model.UnifiedItem{
		ID:         source.ItemID(idPrefix, ann.ID),
		SourceType: model.SourceTypeAnnouncement,
		NativeID:   ann.ID,
		Title:      title,
		Preview:    source.TruncatePreview(ann.Body),
		Timestamp:  ann.PublishedAt,
		ActionType: "announcement",
		ActionID:   ann.ID,
		Raw:        ann,
	}
}

// MarkRead upserts the viewer's read marker for one announcement.
func (a *Adapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return a.store.MarkAnnouncementsRead(ctx, viewerID, []string{nativeID})
}

// MarkReadBulk upserts the viewer's read markers for the given
// announcements in one batched write.
func (a *Adapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	return a.store.MarkAnnouncementsRead(ctx, viewerID, nativeIDs)
}
