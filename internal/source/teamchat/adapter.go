package teamchat

import (
	"context"

	"github.com/dpham/unified-inbox/internal/model"
	"github.com/dpham/unified-inbox/internal/source"
	"github.com/dpham/unified-inbox/internal/store"
)

// idPrefix namespaces team-chat ids within the merged feed.
const idPrefix = "team"

// Store is the slice of the record store the team-chat adapter needs.
type Store interface {
	ListConversations(ctx context.Context, viewerID string, kind string, limit int) ([]store.Conversation, error)
}

// Adapter implements source.Adapter for internal team chats. Team-chat
// read state is maintained by the conversation view itself, so the
// mark-read operations here are deliberate no-ops rather than a second
// write path to the same counters.
type Adapter struct {
	store Store
}

// NewAdapter creates a team-chat source adapter.
func NewAdapter(s Store) *Adapter {
	return &Adapter{store: s}
}

// Type returns the source type identifier for team chats.
func (a *Adapter) Type() model.SourceType {
	return model.SourceTypeTeamChat
}

// FetchRecent returns the viewer's team conversations ordered by last
// activity descending.
func (a *Adapter) FetchRecent(
	ctx context.Context,
	viewerID string,
	limit int,
) ([]source.Record, error) {
	conversations, err := a.store.ListConversations(
		ctx, viewerID, store.ConversationKindTeam, limit,
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

// Project builds the unified item for a team conversation.
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

	return model.UnifiedItem{
		ID:         source.ItemID(idPrefix, c.ID),
		SourceType: model.SourceTypeTeamChat,
		NativeID:   c.ID,
		Title:      title,
		Preview:    source.TruncatePreview(preview),
		Timestamp:  c.LastMessageAt,
		ActionType: "conversation",
		ActionID:   c.ID,
		Raw:        c,
	}
}

// MarkRead is a no-op: the team conversation view owns this read state.
func (a *Adapter) MarkRead(
	ctx context.Context,
	viewerID string,
	nativeID string,
) error {
	return nil
}

// MarkReadBulk is a no-op for the same reason as MarkRead.
func (a *Adapter) MarkReadBulk(
	ctx context.Context,
	viewerID string,
	nativeIDs []string,
) error {
	return nil
}
