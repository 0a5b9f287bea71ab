package model

import "time"

// SourceType identifies the origin stream of a feed item.
type SourceType string

const (
	SourceTypeDirectMessage SourceType = "direct_message"
	SourceTypeTeamChat      SourceType = "team_chat"
	SourceTypeAnnouncement  SourceType = "announcement"
	SourceTypeSystemAlert   SourceType = "system_alert"
	SourceTypeTicketThread  SourceType = "ticket_thread"
)

// SourceTypes lists every known source type. The set is closed: adapters
// exist for exactly these streams and the dispatcher treats anything else
// as a configuration error.
var SourceTypes = []SourceType{
	SourceTypeDirectMessage,
	SourceTypeTeamChat,
	SourceTypeAnnouncement,
	SourceTypeSystemAlert,
	SourceTypeTicketThread,
}

// Filter is the viewer-selected feed category. "team" is a UX grouping
// over two source types (team chat and announcements), not a sixth source.
type Filter string

const (
	FilterAll           Filter = "all"
	FilterDirectMessage Filter = "direct_message"
	FilterTeam          Filter = "team"
	FilterTickets       Filter = "tickets"
	FilterAlerts        Filter = "alerts"
)

// SourceTypes expands a filter into the set of source types it enables.
// Unknown filters expand to nothing rather than everything, so a typo in
// a caller narrows the feed instead of widening it.
func (f Filter) SourceTypes() []SourceType {
	switch f {
	case FilterAll:
		return SourceTypes
	case FilterDirectMessage:
		return []SourceType{SourceTypeDirectMessage}
	case FilterTeam:
		return []SourceType{SourceTypeTeamChat, SourceTypeAnnouncement}
	case FilterTickets:
		return []SourceType{SourceTypeTicketThread}
	case FilterAlerts:
		return []SourceType{SourceTypeSystemAlert}
	default:
		return nil
	}
}

// Enables reports whether the filter includes the given source type.
func (f Filter) Enables(st SourceType) bool {
	for _, enabled := range f.SourceTypes() {
		if enabled == st {
			return true
		}
	}
	return false
}

// UnifiedItem is the common projection of one activity-stream entry,
// regardless of which source produced it.
type UnifiedItem struct {
	// ID is globally unique within a feed: the source's id prefix plus
	// the native record id (e.g. "sms-42"). Native ids alone are not
	// unique across sources.
	ID string `json:"id"`

	// SourceType identifies which stream produced this item.
	SourceType SourceType `json:"source_type"`

	// NativeID is the record's identifier within its own source store.
	NativeID string `json:"native_id"`

	// Title is the display heading; adapters supply a fallback when the
	// native record has none.
	Title string `json:"title"`

	// Preview is the body excerpt, truncated to a fixed budget by the
	// projecting adapter.
	Preview string `json:"preview"`

	// Timestamp is the native record's last-activity time. It drives
	// sort order and is never the fetch time.
	Timestamp time.Time `json:"timestamp"`

	// IsUnread is derived from the source's own read markers at fetch
	// time, never from UI state.
	IsUnread bool `json:"is_unread"`

	// ActionType and ActionID form a deep-link target the UI can
	// navigate to without knowing source internals.
	ActionType string `json:"action_type"`
	ActionID   string `json:"action_id"`

	// Raw is an opaque reference back to the native record for
	// source-specific rendering.
	Raw any `json:"-"`
}

// Counts holds unread totals for a feed computation. Total is the sum of
// the per-source counts for the enabled sources.
type Counts struct {
	Total     int                `json:"total"`
	PerSource map[SourceType]int `json:"per_source"`
}

// NewCounts returns a Counts with every known source type zeroed, so
// callers can index PerSource without nil checks.
func NewCounts() Counts {
	per := make(map[SourceType]int, len(SourceTypes))
	for _, st := range SourceTypes {
		per[st] = 0
	}
	return Counts{PerSource: per}
}

// FeedSnapshot is the cached result of one aggregation pass for a given
// viewer and filter. Snapshots are replaced wholesale on recomputation,
// never patched in place.
type FeedSnapshot struct {
	Items      []UnifiedItem `json:"items"`
	Counts     Counts        `json:"counts"`
	ComputedAt time.Time     `json:"computed_at"`
}
