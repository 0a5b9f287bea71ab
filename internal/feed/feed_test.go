package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// testLogger discards output; tests assert behavior, not log lines.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRecord is a minimal native record for stub adapters.
type stubRecord struct {
	id     string
	ts     time.Time
	unread bool
}

func (r stubRecord) NativeID() string { return r.id }

// stubAdapter is a scriptable source adapter for aggregator and
// dispatcher tests.
type stubAdapter struct {
	sourceType model.SourceType
	records    []source.Record
	fetchErr   error

	mu        sync.Mutex
	bulkCalls [][]string
	bulkErr   error
}

func (a *stubAdapter) Type() model.SourceType { return a.sourceType }

func (a *stubAdapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	if len(a.records) > limit {
		return a.records[:limit], nil
	}
	return a.records, nil
}

func (a *stubAdapter) IsUnread(r source.Record, viewerID string) bool {
	return r.(stubRecord).unread
}

func (a *stubAdapter) Project(r source.Record) model.UnifiedItem {
	rec := r.(stubRecord)
	return model.UnifiedItem{
		ID:         source.ItemID(string(a.sourceType), rec.id),
		SourceType: a.sourceType,
		NativeID:   rec.id,
		Title:      "stub",
		Timestamp:  rec.ts,
		Raw:        rec,
	}
}

func (a *stubAdapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return a.MarkReadBulk(ctx, viewerID, []string{nativeID})
}

func (a *stubAdapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bulkCalls = append(a.bulkCalls, nativeIDs)
	return a.bulkErr
}

func (a *stubAdapter) bulkCallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.bulkCalls)
}

// emptyOverlay is a dismissal overlay with nothing dismissed.
type emptyOverlay struct{}

func (emptyOverlay) DismissedSet(
	ctx context.Context,
	viewerID string,
) (map[store.DismissalKey]struct{}, error) {
	return map[store.DismissalKey]struct{}{}, nil
}

func (emptyOverlay) Dismiss(ctx context.Context, viewerID, sourceType, nativeID string) error {
	return nil
}

func (emptyOverlay) Restore(ctx context.Context, viewerID, sourceType, nativeID string) error {
	return nil
}
