package directmsg

import (
	"context"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// idPrefix namespaces direct-conversation ids within the merged feed.
const idPrefix = "sms"

// Store is the slice of the record store the direct-message adapter needs.
type Store interface {
	ListConversations(ctx context.Context, viewerID string, kind string, limit int) ([]store.Conversation, error)
	MarkConversationsRead(ctx context.Context, viewerID string, conversationIDs []string) error
}

// Adapter implements source.Adapter for direct client conversations.
// Unread state is the viewer's per-conversation unread counter.
type Adapter struct {
	store Store
}

// NewAdapter creates a direct-message source adapter.
func NewAdapter(s Store) *Adapter {
	return &Adapter{store: s}
}

// Type returns the source type identifier for direct conversations.
func (a *Adapter) Type() model.SourceType {
	return model.SourceTypeDirectMessage
}

// FetchRecent returns the viewer's direct conversations ordered by last
// activity descending.
func (a *Adapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	conversations, err := a.store.ListConversations(
		ctx, viewerID, store.ConversationKindDirect, limit,
	)
	if err != nil {
		return nil, err
	}

	records := make([]source.Record, 0, len(conversations))
	for _, c := range conversations {
		records = append(records, c)
	}
	return records, nil
}

// IsUnread reports whether the viewer's unread counter is positive.
func (a *Adapter) IsUnread(r source.Record, viewerID string) bool {
	c, ok := r.(store.Conversation)
	if !ok {
		return false
	}
	return c.UnreadCount > 0
}

// Project builds the unified item for a direct conversation.
func (a *Adapter) Project(r source.Record) model.UnifiedItem {
	c, _ := r.(store.Conversation)

	title := c.Title
	if title == "" {
		title = source.TitleUnknown
	}

	preview := c.LastMessageBody
	if preview == "" {
		preview = source.TitleNoMessages
	}

	actionType, actionID := "conversation", c.ID
	if c.JobID != "" {
		actionType, actionID = "job", c.JobID
	}

	return model.UnifiedItem{
		ID:         source.ItemID(idPrefix, c.ID),
		SourceType: model.SourceTypeDirectMessage,
		NativeID:   c.ID,
		Title:      title,
		Preview:    source.TruncatePreview(preview),
		Timestamp:  c.LastMessageAt,
		ActionType: actionType,
		ActionID:   actionID,
		Raw:        c,
	}
}

// MarkRead zeroes the viewer's unread counter for one conversation.
func (a *Adapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return a.store.MarkConversationsRead(ctx, viewerID, []string{nativeID})
}

// MarkReadBulk zeroes the viewer's unread counters for the given
// conversations in one batched write.
func (a *Adapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	return a.store.MarkConversationsRead(ctx, viewerID, nativeIDs)
}
