package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// Overlay is the dismissal overlay consulted during aggregation and
// mutated by the service facade.
type Overlay interface {
	DismissedSet(ctx context.Context, viewerID string) (map[store.DismissalKey]struct{}, error)
	Dismiss(ctx context.Context, viewerID string, sourceType string, nativeID string) error
	Restore(ctx context.Context, viewerID string, sourceType string, nativeID string) error
}

// Aggregator merges all enabled sources into one recency-sorted feed.
// It holds no mutable state: a computation is a pure function of the
// stores at call time, so callers can cache and recompute freely.
type Aggregator struct {
	adapters   []source.Adapter
	overlay    Overlay
	fetchLimit int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAggregator creates an aggregator over the given adapters.
func NewAggregator(
	adapters []source.Adapter,
	overlay Overlay,
	cfg model.FeedConfig,
	logger *slog.Logger,
) *Aggregator {
	fetchLimit := cfg.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	timeout := time.Duration(cfg.AdapterTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Aggregator{
		adapters:   adapters,
		overlay:    overlay,
		fetchLimit: fetchLimit,
		timeout:    timeout,
		logger:     logger,
	}
}

// fetchResult pairs an adapter with its fetched records so projection can
// dispatch back to the right adapter after the fan-out completes.
type fetchResult struct {
	adapter source.Adapter
	records []source.Record
}

// Compute produces a fresh feed snapshot for the viewer under the given
// filter. One failing or slow source contributes zero records; it never
// fails the whole feed.
func (g *Aggregator) Compute(
	ctx context.Context,
	viewerID string,
	filter model.Filter,
) (*model.FeedSnapshot, error) {
	var enabled []source.Adapter
	for _, adapter := range g.adapters {
		if filter.Enables(adapter.Type()) {
			enabled = append(enabled, adapter)
		}
	}

	dismissed, err := g.overlay.DismissedSet(ctx, viewerID)
	if err != nil {
		// A broken overlay must not take the feed down; dismissed items
		// may briefly reappear instead.
		g.logger.Error("loading dismissal overlay failed",
			"viewer_id", viewerID, "error", err)
		dismissed = map[store.DismissalKey]struct{}{}
	}

	results := make([]fetchResult, len(enabled))
	var wg sync.WaitGroup
	for i, adapter := range enabled {
		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()
			results[i] = fetchResult{
				adapter: adapter,
				records: g.fetchRecent(ctx, adapter, viewerID),
			}
		}(i, adapter)
	}
	wg.Wait()

	counts := model.NewCounts()
	var items []model.UnifiedItem
	for _, result := range results {
		st := result.adapter.Type()
		for _, record := range result.records {
			key := store.DismissalKey{
				SourceType: string(st),
				NativeID:   record.NativeID(),
			}
			if _, ok := dismissed[key]; ok {
				continue
			}

			item := result.adapter.Project(record)
			item.IsUnread = result.adapter.IsUnread(record, viewerID)
			item.SourceType = st

			if item.IsUnread {
				counts.PerSource[st]++
				counts.Total++
			}
			items = append(items, item)
		}
	}

	// Total order: timestamp descending, id ascending on ties.
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID < items[j].ID
	})

	return &model.FeedSnapshot{
		Items:      items,
		Counts:     counts,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// fetchRecent runs one adapter's fetch under its own timeout, recovering
// from errors and panics so a bad source is isolated to itself.
func (g *Aggregator) fetchRecent(
	ctx context.Context,
	adapter source.Adapter,
	viewerID string,
) (records []source.Record) {
	fetchCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("source fetch panicked",
				"source_type", adapter.Type(),
				"viewer_id", viewerID,
				"panic", fmt.Sprint(r),
			)
			records = nil
		}
	}()

	records, err := adapter.FetchRecent(fetchCtx, viewerID, g.fetchLimit)
	if err != nil {
		g.logger.Error("source fetch failed",
			"source_type", adapter.Type(),
			"viewer_id", viewerID,
			"error", err,
		)
		return nil
	}
	return records
}
