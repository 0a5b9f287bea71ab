package store

// Table names used in change events. The bridge watches exactly these.
const (
	TableConversations     = "conversations"
	TableMessages          = "messages"
	TableAnnouncements     = "announcements"
	TableAnnouncementReads = "announcement_reads"
	TableAlerts            = "alerts"
	TableTickets           = "tickets"
	TableTicketComments    = "ticket_comments"
	TableDismissals        = "dismissals"
)

// ChangeEvent describes one committed write to an underlying table.
// ViewerID identifies the affected viewer when the write is viewer-scoped;
// an empty ViewerID means the write may affect any viewer (e.g. a new
// announcement or a message fanned out to all participants).
type ChangeEvent struct {
	Table    string `json:"table"`
	ViewerID string `json:"viewer_id"`
	Op       string `json:"op"`
}

// Notifier receives change events after committed writes. Implementations
// must not block: events are hints for cache invalidation, and a slow
// consumer must not slow down writes.
type Notifier interface {
	Notify(ev ChangeEvent)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ev ChangeEvent)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev ChangeEvent) {
	f(ev)
}
