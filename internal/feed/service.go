package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/source/alert"
	"github.com/dpham/unified-inbox/internal/source/announcement"
	"github.com/dpham/unified-inbox/internal/source/directmsg"
	"github.com/dpham/unified-inbox/internal/source/teamchat"
	"github.com/dpham/unified-inbox/internal/source/ticket"
	"github.com/dpham/unified-inbox/internal/store"
)

// Service is the unified-inbox facade exposed to the surrounding
// application. It wires the aggregator, read-state dispatcher, dismissal
// overlay, and both caches behind a handful of operations.
type Service struct {
	aggregator  *Aggregator
	dispatcher  *Dispatcher
	counter     *Counter
	overlay     Overlay
	cache       *Cache
	countsCache *CountsCache
	logger      *slog.Logger
}

// NewService builds the full aggregation stack on top of the given store.
// Sources disabled in the configuration get no adapter at all, so they
// neither fetch nor count.
func NewService(
	st *store.SQLiteStore,
	cfg *model.AppConfig,
	logger *slog.Logger,
) *Service {
	var adapters []source.Adapter
	for _, candidate := range []source.Adapter{
		directmsg.NewAdapter(st),
		teamchat.NewAdapter(st),
		announcement.NewAdapter(st),
		alert.NewAdapter(st),
		ticket.NewAdapter(st),
	} {
		if cfg.SourceEnabled(candidate.Type()) {
			adapters = append(adapters, candidate)
		}
	}

	enabled := func(t model.SourceType) bool { return cfg.SourceEnabled(t) }

	ttl := time.Duration(cfg.Feed.CacheTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Second
	}

	return &Service{
		aggregator:  NewAggregator(adapters, st, cfg.Feed, logger),
		dispatcher:  NewDispatcher(adapters, logger),
		counter:     NewCounter(st, enabled, logger),
		overlay:     st,
		cache:       NewCache(ttl),
		countsCache: NewCountsCache(ttl),
		logger:      logger,
	}
}

// GetFeed returns the feed snapshot for (viewer, filter), serving a fresh
// cached copy when one exists and recomputing otherwise.
func (s *Service) GetFeed(
	ctx context.Context,
	viewerID string,
	filter model.Filter,
) (*model.FeedSnapshot, error) {
	if snapshot, ok := s.cache.Get(viewerID, filter); ok {
		return snapshot, nil
	}

	snapshot, err := s.aggregator.Compute(ctx, viewerID, filter)
	if err != nil {
		return nil, fmt.Errorf("computing feed for %s: %w", viewerID, err)
	}

	s.cache.Put(viewerID, filter, snapshot)
	return snapshot, nil
}

// GetUnreadCounts returns badge counts for the viewer via the count-only
// fast path, independently cached from the full feed.
func (s *Service) GetUnreadCounts(
	ctx context.Context,
	viewerID string,
) (model.Counts, error) {
	if counts, ok := s.countsCache.Get(viewerID); ok {
		return counts, nil
	}

	counts, err := s.counter.CountsFor(ctx, viewerID)
	if err != nil {
		return model.Counts{}, fmt.Errorf("counting unread for %s: %w", viewerID, err)
	}

	s.countsCache.Put(viewerID, counts)
	return counts, nil
}

// Dismiss hides one item from the viewer's feed without touching source
// data. Dismissing twice is a no-op success.
func (s *Service) Dismiss(
	ctx context.Context,
	item model.UnifiedItem,
	viewerID string,
) error {
	err := s.overlay.Dismiss(ctx, viewerID, string(item.SourceType), item.NativeID)
	if err != nil {
		return err
	}
	s.Invalidate(viewerID)
	return nil
}

// Restore undoes a dismissal. Restoring a never-dismissed item is a
// no-op success.
func (s *Service) Restore(
	ctx context.Context,
	item model.UnifiedItem,
	viewerID string,
) error {
	err := s.overlay.Restore(ctx, viewerID, string(item.SourceType), item.NativeID)
	if err != nil {
		return err
	}
	s.Invalidate(viewerID)
	return nil
}

// MarkRead marks a single item read through its source's own mechanism.
func (s *Service) MarkRead(
	ctx context.Context,
	item model.UnifiedItem,
	viewerID string,
) error {
	if err := s.dispatcher.MarkOne(ctx, item, viewerID); err != nil {
		return err
	}
	s.Invalidate(viewerID)
	return nil
}

// MarkAllRead marks every unread item in the set as read with one bulk
// write per source. Sibling sources complete even when one fails; the
// returned error aggregates the failures.
func (s *Service) MarkAllRead(
	ctx context.Context,
	items []model.UnifiedItem,
	viewerID string,
) error {
	err := s.dispatcher.MarkAllVisible(ctx, items, viewerID)
	// Some sources may have succeeded even on error; their caches are
	// stale either way.
	s.Invalidate(viewerID)
	return err
}

// Invalidate drops the viewer's cached feed snapshots and badge counts.
// The change-notification bridge calls this on matching events.
func (s *Service) Invalidate(viewerID string) {
	s.cache.Invalidate(viewerID)
	s.countsCache.Invalidate(viewerID)
}

// InvalidateAll drops every cached snapshot and count, for writes whose
// affected viewers are unknown and for the periodic fallback refresh.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
	s.countsCache.InvalidateAll()
}
