package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
)

// Dispatcher routes mark-read intents to the correct source adapter so
// callers never touch source internals.
type Dispatcher struct {
	adapters map[model.SourceType]source.Adapter
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given adapters.
func NewDispatcher(adapters []source.Adapter, logger *slog.Logger) *Dispatcher {
	byType := make(map[model.SourceType]source.Adapter, len(adapters))
	for _, adapter := range adapters {
		byType[adapter.Type()] = adapter
	}
	return &Dispatcher{adapters: byType, logger: logger}
}

// MarkOne routes a single mark-read intent to the item's source adapter.
// Team-chat items are a documented no-op: that read state belongs to the
// team conversation view and is not duplicated here. An unknown source
// type is logged and swallowed so a misconfigured adapter cannot crash
// the feed.
func (d *Dispatcher) MarkOne(
	ctx context.Context,
	item model.UnifiedItem,
	viewerID string,
) error {
	if item.SourceType == model.SourceTypeTeamChat {
		return nil
	}

	adapter, ok := d.adapters[item.SourceType]
	if !ok {
		d.logger.Warn("mark-read for unknown source type",
			"item_id", item.ID,
			"error", &source.UnknownTypeError{SourceType: item.SourceType})
		return nil
	}

	if err := adapter.MarkRead(ctx, viewerID, item.NativeID); err != nil {
		return fmt.Errorf("marking %s read: %w", item.ID, err)
	}
	return nil
}

// MarkAllVisible marks every unread item in the set as read, issuing one
// bulk write per source present rather than one write per item. Source
// groups proceed independently: one group's failure never blocks the
// others, and partial progress is kept since every source's write is
// idempotent.
func (d *Dispatcher) MarkAllVisible(
	ctx context.Context,
	items []model.UnifiedItem,
	viewerID string,
) error {
	groups := make(map[model.SourceType][]string)
	for _, item := range items {
		if !item.IsUnread {
			continue
		}
		groups[item.SourceType] = append(groups[item.SourceType], item.NativeID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for st, nativeIDs := range groups {
		adapter, ok := d.adapters[st]
		if !ok {
			d.logger.Warn("bulk mark-read for unknown source type",
				"count", len(nativeIDs),
				"error", &source.UnknownTypeError{SourceType: st})
			continue
		}

		wg.Add(1)
		go func(st model.SourceType, adapter source.Adapter, nativeIDs []string) {
			defer wg.Done()
			if err := adapter.MarkReadBulk(ctx, viewerID, nativeIDs); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("bulk mark-read %s: %w", st, err))
				mu.Unlock()
			}
		}(st, adapter, nativeIDs)
	}
	wg.Wait()

	return errors.Join(errs...)
}
