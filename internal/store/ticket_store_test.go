package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/dpham/unified-inbox/internal/store"
	"github.com/dpham/unified-inbox/tests/testutil"
)

func TestListTicketsVisibility(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	submitted, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "Broken faucet", SubmitterID: "viewer-1",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	assigned, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "Leaky roof", SubmitterID: "client-2", AssigneeID: "viewer-1",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	watched, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "Paint job", SubmitterID: "client-3",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	if err := s.AddTicketWatcher(ctx, watched, "viewer-1"); err != nil {
		t.Fatalf("adding watcher: %v", err)
	}
	if _, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "Invisible", SubmitterID: "client-4",
	}); err != nil {
		t.Fatalf("creating ticket: %v", err)
	}

	tickets, err := s.ListTickets(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing tickets: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 visible tickets, got %d", len(tickets))
	}

	seen := map[string]bool{}
	for _, ticket := range tickets {
		seen[ticket.ID] = true
	}
	for _, id := range []string{submitted, assigned, watched} {
		if !seen[id] {
			t.Errorf("ticket %s missing from viewer's list", id)
		}
	}
}

func TestTicketLatestCommentAnnotation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ticketID, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "Broken faucet", SubmitterID: "viewer-1",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, c := range []store.TicketComment{
		{TicketID: ticketID, AuthorID: "viewer-1", Body: "It drips", CreatedAt: base},
		{TicketID: ticketID, AuthorID: "tech-1", Body: "On my way", CreatedAt: base.Add(time.Hour)},
	} {
		if err := s.AppendTicketComment(ctx, c); err != nil {
			t.Fatalf("appending comment: %v", err)
		}
	}

	tickets, err := s.ListTickets(ctx, "viewer-1", 10)
	if err != nil {
		t.Fatalf("listing tickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	if tickets[0].LastCommentAuthor != "tech-1" {
		t.Errorf("last comment author = %q, want tech-1", tickets[0].LastCommentAuthor)
	}
	if tickets[0].LastCommentBody != "On my way" {
		t.Errorf("last comment body = %q", tickets[0].LastCommentBody)
	}
	if !tickets[0].UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("ticket updated_at = %v, want comment time", tickets[0].UpdatedAt)
	}
}

func TestCountUnreadTickets(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Latest comment by someone else: unread.
	unreadID, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "A", SubmitterID: "viewer-1",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	if err := s.AppendTicketComment(ctx, store.TicketComment{
		TicketID: unreadID, AuthorID: "tech-1", Body: "done",
	}); err != nil {
		t.Fatalf("appending comment: %v", err)
	}

	// Latest comment by the viewer: read.
	readID, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "B", SubmitterID: "viewer-1",
	})
	if err != nil {
		t.Fatalf("creating ticket: %v", err)
	}
	if err := s.AppendTicketComment(ctx, store.TicketComment{
		TicketID: readID, AuthorID: "viewer-1", Body: "thanks",
	}); err != nil {
		t.Fatalf("appending comment: %v", err)
	}

	// No comments at all: nothing to catch up on.
	if _, err := s.CreateTicket(ctx, store.Ticket{
		Subject: "C", SubmitterID: "viewer-1",
	}); err != nil {
		t.Fatalf("creating ticket: %v", err)
	}

	count, err := s.CountUnreadTickets(ctx, "viewer-1", "ticket_thread")
	if err != nil {
		t.Fatalf("counting unread tickets: %v", err)
	}
	if count != 1 {
		t.Errorf("unread count = %d, want 1", count)
	}
}
