package ticket

import (
	"context"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// idPrefix namespaces ticket-thread ids within the merged feed.
const idPrefix = "ticket"

// Store is the slice of the record store the ticket adapter needs.
type Store interface {
	ListTickets(ctx context.Context, viewerID string, limit int) ([]store.Ticket, error)
	MarkTicketsSeen(ctx context.Context, viewerID string, ticketIDs []string) error
}

// Adapter implements source.Adapter for support-ticket threads. Unread
// state is a heuristic: a ticket is unread when its latest comment was
// written by someone other than the viewer. A ticket with no comments
// yet has no discussion to catch up on and reads as seen.
type Adapter struct {
	store Store
}

// NewAdapter creates a ticket-thread source adapter.
func NewAdapter(s Store) *Adapter {
	return &Adapter{store: s}
}

// Type returns the source type identifier for ticket threads.
func (a *Adapter) Type() model.SourceType {
	return model.SourceTypeTicketThread
}

// FetchRecent returns tickets where the viewer is submitter, assignee, or
// watcher, ordered by last activity descending.
func (a *Adapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	tickets, err := a.store.ListTickets(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	records := make([]source.Record, 0, len(tickets))
	for _, t := range tickets {
		records = append(records, t)
	}
	return records, nil
}

// IsUnread applies the latest-author heuristic.
func (a *Adapter) IsUnread(r source.Record, viewerID string) bool {
	t, ok := r.(store.Ticket)
	if !ok {
		return false
	}
	return t.LastCommentAuthor != "" && t.LastCommentAuthor != viewerID
}

// Project builds the unified item for a ticket thread.
func (a *Adapter) Project(r source.Record) model.UnifiedItem {
	t, _ := r.(store.Ticket)

	title := t.Subject
	if title == "" {
		title = source.TitleUnknown
	}

	preview := t.LastCommentBody
	if preview == "" {
		preview = source.TitleNoMessages
	}

	return model.UnifiedItem{
		ID:         source.ItemID(idPrefix, t.ID),
		SourceType: model.SourceTypeTicketThread,
		NativeID:   t.ID,
		Title:      title,
		Preview:    source.TruncatePreview(preview),
		Timestamp:  t.UpdatedAt,
		ActionType: "ticket",
		ActionID:   t.ID,
		Raw:        t,
	}
}

// MarkRead records the viewer as a watcher of the ticket. The source has
// no per-viewer read marker; see IsUnread for the heuristic this pairs
// with.
func (a *Adapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return a.store.MarkTicketsSeen(ctx, viewerID, []string{nativeID})
}

// MarkReadBulk records the viewer as a watcher of the given tickets in
// one batched write.
func (a *Adapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	return a.store.MarkTicketsSeen(ctx, viewerID, nativeIDs)
}
