package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dpham/unified-inbox/internal/model"
)

// UnknownTypeError indicates that a feed item carried a source type no
// registered adapter handles. The source-type enum is closed, so this is
// a programming-time invariant violation; callers log it and keep going.
type UnknownTypeError struct {
	SourceType model.SourceType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown source type: %s", e.SourceType)
}

// IsUnknownType reports whether err (or any error in its chain) is an
// UnknownTypeError.
func IsUnknownType(err error) bool {
	var unknownErr *UnknownTypeError
	return errors.As(err, &unknownErr)
}

// Record is one native record from a source store. Adapters project their
// own concrete record types; the aggregator only needs the native id for
// dismissal filtering.
type Record interface {
	NativeID() string
}

// Adapter isolates all source-specific knowledge behind a small contract.
// One adapter exists per source type.
type Adapter interface {
	// Type returns the source type this adapter serves.
	Type() model.SourceType

	// FetchRecent returns up to limit records relevant to the viewer,
	// ordered by last-activity time descending. A viewer with no data
	// gets an empty slice, not an error.
	FetchRecent(ctx context.Context, viewerID string, limit int) ([]Record, error)

	// IsUnread derives the record's unread state for the viewer from
	// the source's own read-tracking convention.
	IsUnread(r Record, viewerID string) bool

	// Project builds the unified item from the native shape. Title
	// fallbacks and preview truncation happen here, not downstream.
	Project(r Record) model.UnifiedItem

	// MarkRead upserts the source's read marker for one record.
	MarkRead(ctx context.Context, viewerID string, nativeID string) error

	// MarkReadBulk upserts read markers for many records in a single
	// batched write, never N individual ones.
	MarkReadBulk(ctx context.Context, viewerID string, nativeIDs []string) error
}

// Display fallbacks applied during projection.
const (
	TitleUnknown    = "Unknown"
	TitleNoMessages = "No messages yet"
)

// PreviewBudget is the maximum preview length in runes.
const PreviewBudget = 80

// TruncatePreview shortens s to the preview budget, appending "..." when
// trimmed. The budget is counted in runes so multibyte text is not split.
func TruncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewBudget {
		return s
	}
	return string(runes[:PreviewBudget]) + "..."
}

// ItemID builds the namespaced feed id from a source prefix and the
// record's native id. Native ids are unique only within their source.
func ItemID(prefix string, nativeID string) string {
	return prefix + "-" + nativeID
}
