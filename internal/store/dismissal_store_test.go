package store_test

import (
	"context"
	"testing"

	"github.com/dpham/unified-inbox/internal/store"
	"github.com/dpham/unified-inbox/tests/testutil"
)

func TestDismissRestoreLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.Dismiss(ctx, "viewer-1", "system_alert", "alert-1"); err != nil {
		t.Fatalf("dismissing: %v", err)
	}

	set, err := s.DismissedSet(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("loading dismissed set: %v", err)
	}
	key := store.DismissalKey{SourceType: "system_alert", NativeID: "alert-1"}
	if _, ok := set[key]; !ok {
		t.Error("dismissal marker missing after dismiss")
	}

	// Dismissing again is a no-op success.
	if err := s.Dismiss(ctx, "viewer-1", "system_alert", "alert-1"); err != nil {
		t.Fatalf("re-dismissing: %v", err)
	}

	if err := s.Restore(ctx, "viewer-1", "system_alert", "alert-1"); err != nil {
		t.Fatalf("restoring: %v", err)
	}
	set, err = s.DismissedSet(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("loading dismissed set: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("dismissed set should be empty after restore, got %d entries", len(set))
	}

	// Restoring a never-dismissed record is a no-op success.
	if err := s.Restore(ctx, "viewer-1", "system_alert", "alert-2"); err != nil {
		t.Fatalf("restoring non-dismissed: %v", err)
	}
}

func TestDismissalsAreScopedPerViewer(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.Dismiss(ctx, "viewer-1", "announcement", "ann-1"); err != nil {
		t.Fatalf("dismissing: %v", err)
	}

	set, err := s.DismissedSet(ctx, "viewer-2")
	if err != nil {
		t.Fatalf("loading dismissed set: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("viewer-2 should have no dismissals, got %d", len(set))
	}
}

func TestNotifierReceivesChangeEvents(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	var events []store.ChangeEvent
	s.SetNotifier(store.NotifierFunc(func(ev store.ChangeEvent) {
		events = append(events, ev)
	}))

	if _, err := s.CreateAlert(ctx, store.Alert{ViewerID: "viewer-1"}); err != nil {
		t.Fatalf("creating alert: %v", err)
	}
	if err := s.Dismiss(ctx, "viewer-1", "system_alert", "x"); err != nil {
		t.Fatalf("dismissing: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 change events, got %d", len(events))
	}
	if events[0].Table != store.TableAlerts || events[0].ViewerID != "viewer-1" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Table != store.TableDismissals {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}
