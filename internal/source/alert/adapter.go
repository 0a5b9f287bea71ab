package alert

import (
	"context"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// idPrefix namespaces system-alert ids within the merged feed.
const idPrefix = "alert"

// Store is the slice of the record store the alert adapter needs.
type Store interface {
	ListAlerts(ctx context.Context, viewerID string, limit int) ([]store.Alert, error)
	MarkAlertsRead(ctx context.Context, viewerID string, alertIDs []string) error
}

// Adapter implements source.Adapter for system-generated alerts. Alerts
// are addressed to a single viewer; unread state is a null read_at.
type Adapter struct {
	store Store
}

// NewAdapter creates a system-alert source adapter.
func NewAdapter(s Store) *Adapter {
	return &Adapter{store: s}
}

// Type returns the source type identifier for system alerts.
func (a *Adapter) Type() model.SourceType {
	return model.SourceTypeSystemAlert
}

// FetchRecent returns the viewer's alerts ordered by creation time
// descending.
func (a *Adapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	alerts, err := a.store.ListAlerts(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	records := make([]source.Record, 0, len(alerts))
	for _, al := range alerts {
		records = append(records, al)
	}
	return records, nil
}

// IsUnread reports whether the alert has not been stamped read.
func (a *Adapter) IsUnread(r source.Record, viewerID string) bool {
	al, ok := r.(store.Alert)
	if !ok {
		return false
	}
	return !al.HasRead
}

// Project builds the unified item for an alert. Alerts carry their own
// deep-link target; records without one link back to the alert itself.
func (a *Adapter) Project(r source.Record) model.UnifiedItem {
	al, _ := r.(store.Alert)

	title := al.Title
	if title == "" {
		title = source.TitleUnknown
	}

	actionType, actionID := al.ActionType, al.ActionID
	if actionType == "" {
		actionType, actionID = "alert", al.ID
	}

	return model.UnifiedItem{
		ID:         source.ItemID(idPrefix, al.ID),
		SourceType: model.SourceTypeSystemAlert,
		NativeID:   al.ID,
		Title:      title,
		Preview:    source.TruncatePreview(al.Body),
		Timestamp:  al.CreatedAt,
		ActionType: actionType,
		ActionID:   actionID,
		Raw:        al,
	}
}

// MarkRead stamps read_at on one alert.
func (a *Adapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return a.store.MarkAlertsRead(ctx, viewerID, []string{nativeID})
}

// MarkReadBulk stamps read_at on the given alerts in one batched write.
func (a *Adapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	return a.store.MarkAlertsRead(ctx, viewerID, nativeIDs)
}
