package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/dpham/unified-inbox/internal/store"
	"github.com/dpham/unified-inbox/tests/testutil"
)

func TestAnnouncementReadMarkers(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	annID, err := s.PublishAnnouncement(ctx, store.Announcement{
		Title: "Holiday hours",
		Body:  "Closed on Friday.",
	})
	if err != nil {
		t.Fatalf("publishing announcement: %v", err)
	}

	announcements, err := s.ListPublishedAnnouncements(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing announcements: %v", err)
	}
	if len(announcements) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(announcements))
	}
	if announcements[0].HasRead {
		t.Error("announcement should be unread before marking")
	}

	if err := s.MarkAnnouncementsRead(ctx, "viewer-1", []string{annID}); err != nil {
		t.Fatalf("marking announcement read: %v", err)
	}

	announcements, err = s.ListPublishedAnnouncements(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing announcements: %v", err)
	}
	if !announcements[0].HasRead {
		t.Error("announcement should be read after marking")
	}

	// Read markers are per viewer.
	others, err := s.ListPublishedAnnouncements(ctx, "viewer-2", 10)
	if err != nil {
		t.Fatalf("listing announcements for viewer-2: %v", err)
	}
	if others[0].HasRead {
		t.Error("viewer-2 should still see the announcement as unread")
	}

	// Re-marking is idempotent.
	if err := s.MarkAnnouncementsRead(ctx, "viewer-1", []string{annID}); err != nil {
		t.Fatalf("re-marking announcement read: %v", err)
	}
}

func TestCountUnreadAnnouncements(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.PublishAnnouncement(ctx, store.Announcement{
			Title:       "Update",
			PublishedAt: time.Date(2026, 3, 1+i, 9, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("publishing announcement: %v", err)
		}
		ids = append(ids, id)
	}

	if err := s.MarkAnnouncementsRead(ctx, "viewer-1", ids[:1]); err != nil {
		t.Fatalf("marking announcement read: %v", err)
	}
	if err := s.Dismiss(ctx, "viewer-1", "announcement", ids[1]); err != nil {
		t.Fatalf("dismissing announcement: %v", err)
	}

	count, err := s.CountUnreadAnnouncements(ctx, "viewer-1", "announcement")
	if err != nil {
		t.Fatalf("counting unread announcements: %v", err)
	}
	if count != 1 {
		t.Errorf("unread count = %d, want 1", count)
	}
}

func TestAlertReadLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	alertID, err := s.CreateAlert(ctx, store.Alert{
		ViewerID:   "viewer-1",
		Title:      "Payment failed",
		ActionType: "invoice",
		ActionID:   "inv-9",
	})
	if err != nil {
		t.Fatalf("creating alert: %v", err)
	}
	if _, err := s.CreateAlert(ctx, store.Alert{
		ViewerID: "viewer-2",
		Title:    "Someone else's alert",
	}); err != nil {
		t.Fatalf("creating alert: %v", err)
	}

	alerts, err := s.ListAlerts(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert for viewer-1, got %d", len(alerts))
	}
	if alerts[0].HasRead {
		t.Error("alert should start unread")
	}

	if err := s.MarkAlertsRead(ctx, "viewer-1", []string{alertID}); err != nil {
		t.Fatalf("marking alert read: %v", err)
	}

	alerts, err = s.ListAlerts(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing alerts: %v", err)
	}
	if !alerts[0].HasRead {
		t.Error("alert should be read after marking")
	}

	count, err := s.CountUnreadAlerts(ctx, "viewer-1", "system_alert")
	if err != nil {
		t.Fatalf("counting unread alerts: %v", err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}
