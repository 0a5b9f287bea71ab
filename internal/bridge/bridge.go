package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/dpham/unified-inbox/internal/store"
)

// Invalidator is the cache surface the bridge drives. The feed service
// implements it for both the snapshot cache and the badge-count cache.
type Invalidator interface {
	Invalidate(viewerID string)
	InvalidateAll()
}

// watchedTables is the set of underlying stores whose writes can change a
// feed. Events for anything else are ignored.
var watchedTables = map[string]struct{}{
	store.TableConversations:     {},
	store.TableMessages:          {},
	store.TableAnnouncements:     {},
	store.TableAnnouncementReads: {},
	store.TableAlerts:            {},
	store.TableTickets:           {},
	store.TableTicketComments:    {},
	store.TableDismissals:        {},
}

// Bridge keeps cached feed snapshots fresh without per-render polling. It
// consumes change events from the local store and from an optional
// realtime subscriber, and invalidates coarsely: a matching event drops
// the affected viewer's caches and the next read recomputes. Delivery is
// a hint, not a guarantee, so a periodic fallback bounds staleness when
// events are delayed or dropped.
type Bridge struct {
	events          chan store.ChangeEvent
	invalidator     Invalidator
	refreshInterval time.Duration
	logger          *slog.Logger
}

// New creates a bridge driving the given invalidator. refreshInterval is
// the fallback invalidation period; zero disables the fallback.
func New(
	invalidator Invalidator,
	refreshInterval time.Duration,
	logger *slog.Logger,
) *Bridge {
	return &Bridge{
		events:          make(chan store.ChangeEvent, 64),
		invalidator:     invalidator,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Notify accepts a change event without blocking. Events arriving faster
// than the bridge drains them are dropped; the fallback refresh covers
// the loss.
func (b *Bridge) Notify(ev store.ChangeEvent) {
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("change event dropped", "table", ev.Table)
	}
}

// Notifier exposes the bridge as a store.Notifier so it can be attached
// to the local store's write hook.
func (b *Bridge) Notifier() store.Notifier {
	return store.NotifierFunc(b.Notify)
}

// Start consumes events until the context is cancelled. The lifecycle is
// scoped to the viewer session: cancelling the context tears the bridge
// down so subscriptions never leak across viewer switches.
func (b *Bridge) Start(ctx context.Context) {
	var fallback <-chan time.Time
	if b.refreshInterval > 0 {
		ticker := time.NewTicker(b.refreshInterval)
		defer ticker.Stop()
		fallback = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			b.handle(ev)
		case <-fallback:
			b.invalidator.InvalidateAll()
		}
	}
}

// handle applies one change event. Writes that cannot be pinned to a
// single viewer (broadcasts, message fan-out) invalidate everyone.
func (b *Bridge) handle(ev store.ChangeEvent) {
	if _, ok := watchedTables[ev.Table]; !ok {
		return
	}

	if ev.ViewerID == "" {
		b.invalidator.InvalidateAll()
		return
	}
	b.invalidator.Invalidate(ev.ViewerID)
}
