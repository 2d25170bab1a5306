package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

type lifecycleFixture struct {
	service       *LifecycleService
	tickets       *fakeTicketRepo
	history       *fakeHistoryRepo
	notifications *fakeNotificationRepo
	now           time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2026-04-10T09:00:00Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	notifications := &fakeNotificationRepo{}
	svc := NewLifecycleService(LifecycleDependencies{
		TicketRepo:   tickets,
		HistoryRepo:  history,
		Notification: NewNotificationService(notifications, zap.NewNop(), config.NotificationConfig{}),
		Tx:           fakeTx{},
		Clock:        fakeClock{now: now},
	})
	return &lifecycleFixture{service: svc, tickets: tickets, history: history, notifications: notifications, now: now}
}

func (f *lifecycleFixture) seed(id string, status domain.TicketStatus) *domain.Ticket {
	agent := "agent-1"
	ticket := &domain.Ticket{
		ID:           id,
		Title:        "Printer on fire",
		Description:  "Smoke coming out of tray 2",
		Status:       status,
		Priority:     domain.TicketPriorityMedium,
		CategoryID:   "category-1",
		CreatedByID:  "enduser-1",
		AssignedToID: &agent,
	}
	f.tickets.put(ticket)
	return ticket
}

func TestStartWorkFromAssigned(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusAssigned)

	ticket, err := f.service.StartWork(context.Background(), "t1", "agent-1")
	if err != nil {
		t.Fatalf("StartWork: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", ticket.Status)
	}
	entry := f.history.last()
	if entry == nil || entry.Action != domain.HistoryActionStatusChanged {
		t.Fatalf("expected StatusChanged history entry, got %+v", entry)
	}
	if *entry.OldValue != "ASSIGNED" || *entry.NewValue != "IN_PROGRESS" {
		t.Errorf("history values = %s -> %s", *entry.OldValue, *entry.NewValue)
	}
	if len(f.notifications.forUser("enduser-1")) != 1 {
		t.Error("creator should be notified")
	}
}

func TestStartWorkFromCreatedRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusCreated)

	_, err := f.service.StartWork(context.Background(), "t1", "agent-1")
	if !util.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
	if len(f.history.entries) != 0 {
		t.Error("failed transition must not write history")
	}
}

func TestResolveRequiresNotes(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusInProgress)

	for _, notes := range []string{"", "   "} {
		if _, err := f.service.Resolve(context.Background(), "t1", notes, "agent-1"); !util.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("notes %q: expected VALIDATION_FAILED, got %v", notes, err)
		}
	}
}

func TestResolveSetsTimestampAndNotes(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusInProgress)

	ticket, err := f.service.Resolve(context.Background(), "t1", "replaced fuser", "agent-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ticket.Status != domain.TicketStatusResolved {
		t.Errorf("status = %s", ticket.Status)
	}
	if ticket.ResolvedAt == nil || !ticket.ResolvedAt.Equal(f.now) {
		t.Errorf("ResolvedAt = %v, want %v", ticket.ResolvedAt, f.now)
	}
	if ticket.ResolutionNotes == nil || *ticket.ResolutionNotes != "replaced fuser" {
		t.Errorf("ResolutionNotes = %v", ticket.ResolutionNotes)
	}
}

func TestCloseFromResolved(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusResolved)

	ticket, err := f.service.Close(context.Background(), "t1", "agent-1")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ticket.Status != domain.TicketStatusClosed {
		t.Errorf("status = %s", ticket.Status)
	}
	if ticket.ClosedAt == nil || !ticket.ClosedAt.Equal(f.now) {
		t.Errorf("ClosedAt = %v", ticket.ClosedAt)
	}
}

func TestReopenClearsTimestamps(t *testing.T) {
	for _, from := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed} {
		f := newLifecycleFixture(t)
		ticket := f.seed("t1", from)
		resolved := f.now.Add(-2 * time.Hour)
		closed := f.now.Add(-time.Hour)
		ticket.ResolvedAt = &resolved
		ticket.ClosedAt = &closed
		f.tickets.put(ticket)

		reopened, err := f.service.Reopen(context.Background(), "t1", "issue came back", "enduser-1")
		if err != nil {
			t.Fatalf("Reopen from %s: %v", from, err)
		}
		if reopened.Status != domain.TicketStatusInProgress {
			t.Errorf("from %s: status = %s, want IN_PROGRESS", from, reopened.Status)
		}
		if reopened.ResolvedAt != nil || reopened.ClosedAt != nil {
			t.Errorf("from %s: timestamps not cleared", from)
		}
		// Creator and assignee both hear about a reopen.
		if len(f.notifications.forUser("enduser-1")) != 1 || len(f.notifications.forUser("agent-1")) != 1 {
			t.Errorf("from %s: expected creator and assignee notifications", from)
		}
	}
}

func TestReopenRequiresReason(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusResolved)

	if _, err := f.service.Reopen(context.Background(), "t1", " ", "enduser-1"); !util.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestReopenFromInProgressRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusInProgress)

	if _, err := f.service.Reopen(context.Background(), "t1", "still broken", "enduser-1"); !util.IsCode(err, "INVALID_TRANSITION") {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestCancelGuards(t *testing.T) {
	cases := []struct {
		from     domain.TicketStatus
		reason   string
		wantCode string
	}{
		{domain.TicketStatusCancelled, "dup", "INVALID_TRANSITION"},
		{domain.TicketStatusClosed, "dup", "INVALID_TRANSITION"},
		{domain.TicketStatusCreated, "", "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		f := newLifecycleFixture(t)
		f.seed("t1", tc.from)
		_, err := f.service.Cancel(context.Background(), "t1", tc.reason, "enduser-1")
		if !util.IsCode(err, tc.wantCode) {
			t.Errorf("cancel from %s with reason %q: expected %s, got %v", tc.from, tc.reason, tc.wantCode, err)
		}
	}
}

func TestCancelNotifiesCreator(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusInProgress)

	ticket, err := f.service.Cancel(context.Background(), "t1", "no longer needed", "enduser-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ticket.Status != domain.TicketStatusCancelled {
		t.Errorf("status = %s", ticket.Status)
	}
	notifications := f.notifications.forUser("enduser-1")
	if len(notifications) != 1 || notifications[0].Title != "Ticket Cancelled" {
		t.Errorf("expected cancel notification for creator, got %+v", notifications)
	}
}

func TestTransitionVersionConflict(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seed("t1", domain.TicketStatusAssigned)
	// Another writer bumps the stored row between the read and the write.
	bumped := false
	f.tickets.updateHook = func(ticket *domain.Ticket) {
		if !bumped {
			bumped = true
			stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
			stored.Version++
			f.tickets.put(stored)
		}
	}

	_, err := f.service.StartWork(context.Background(), "t1", "agent-1")
	if !util.IsCode(err, "CONFLICT") {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestAllowedNextStatuses(t *testing.T) {
	f := newLifecycleFixture(t)
	got := f.service.AllowedNextStatuses(domain.TicketStatusResolved)
	want := map[domain.TicketStatus]bool{domain.TicketStatusClosed: true, domain.TicketStatusInProgress: true}
	if len(got) != len(want) {
		t.Fatalf("AllowedNextStatuses = %v", got)
	}
	for _, status := range got {
		if !want[status] {
			t.Errorf("unexpected status %s", status)
		}
	}
}
