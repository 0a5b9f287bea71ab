package feed

import (
	"context"
	"log/slog"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/store"
)

// CountStore is the slice of the record store the badge-count fast path
// needs: per-source existence counts, never full records.
type CountStore interface {
	CountUnreadConversations(ctx context.Context, viewerID string, kind string, sourceType string) (int, error)
	CountUnreadAnnouncements(ctx context.Context, viewerID string, sourceType string) (int, error)
	CountUnreadAlerts(ctx context.Context, viewerID string, sourceType string) (int, error)
	CountUnreadTickets(ctx context.Context, viewerID string, sourceType string) (int, error)
}

// Counter computes unread counts without fetching or projecting records.
// Its output must agree with the aggregator's counts under the all
// filter: both paths apply the same dismissal filtering.
type Counter struct {
	store   CountStore
	enabled func(model.SourceType) bool
	logger  *slog.Logger
}

// NewCounter creates a badge counter. The enabled predicate mirrors the
// adapter set the aggregator runs with; nil enables every source.
func NewCounter(
	cs CountStore,
	enabled func(model.SourceType) bool,
	logger *slog.Logger,
) *Counter {
	if enabled == nil {
		enabled = func(model.SourceType) bool { return true }
	}
	return &Counter{store: cs, enabled: enabled, logger: logger}
}

// CountsFor computes per-source and total unread counts for the viewer.
// A failing source counts as zero; badges briefly under-count rather
// than error.
func (c *Counter) CountsFor(ctx context.Context, viewerID string) (model.Counts, error) {
	counts := model.NewCounts()

	for _, st := range model.SourceTypes {
		if !c.enabled(st) {
			continue
		}

		n, err := c.countSource(ctx, viewerID, st)
		if err != nil {
			c.logger.Error("counting unread failed",
				"source_type", st, "viewer_id", viewerID, "error", err)
			continue
		}

		counts.PerSource[st] = n
		counts.Total += n
	}

	return counts, nil
}

func (c *Counter) countSource(
	ctx context.Context,
	viewerID string,
	st model.SourceType,
) (int, error) {
	switch st {
	case model.SourceTypeDirectMessage:
		return c.store.CountUnreadConversations(
			ctx, viewerID, store.ConversationKindDirect, string(st))
	case model.SourceTypeTeamChat:
		return c.store.CountUnreadConversations(
			ctx, viewerID, store.ConversationKindTeam, string(st))
	case model.SourceTypeAnnouncement:
		return c.store.CountUnreadAnnouncements(ctx, viewerID, string(st))
	case model.SourceTypeSystemAlert:
		return c.store.CountUnreadAlerts(ctx, viewerID, string(st))
	case model.SourceTypeTicketThread:
		return c.store.CountUnreadTickets(ctx, viewerID, string(st))
	default:
		return 0, nil
	}
}
