package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

type escalationFixture struct {
	service       *EscalationService
	tickets       *fakeTicketRepo
	history       *fakeHistoryRepo
	notifications *fakeNotificationRepo
	now           time.Time
}

func newEscalationFixture(t *testing.T) *escalationFixture {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2026-04-10T09:00:00Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	notifications := &fakeNotificationRepo{}
	svc := NewEscalationService(EscalationDependencies{
		TicketRepo:   tickets,
		HistoryRepo:  history,
		Notification: NewNotificationService(notifications, zap.NewNop(), config.NotificationConfig{}),
		Tx:           fakeTx{},
		Clock:        fakeClock{now: now},
	})
	return &escalationFixture{service: svc, tickets: tickets, history: history, notifications: notifications, now: now}
}

func (f *escalationFixture) seedOverdue(id string, priority domain.TicketPriority, assignee *string) {
	due := f.now.Add(-time.Hour)
	f.tickets.put(&domain.Ticket{
		ID:           id,
		Title:        "Ticket " + id,
		Status:       domain.TicketStatusInProgress,
		Priority:     priority,
		CreatedByID:  "enduser-1",
		AssignedToID: assignee,
		DueDate:      &due,
	})
}

func TestSweepOverdueEscalatesOneBand(t *testing.T) {
	f := newEscalationFixture(t)
	agent := "agent-1"
	f.seedOverdue("t1", domain.TicketPriorityHigh, &agent)

	escalated, err := f.service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if len(escalated) != 1 {
		t.Fatalf("escalated %d tickets, want 1", len(escalated))
	}
	if escalated[0].Priority != domain.TicketPriorityCritical {
		t.Errorf("priority = %s, want CRITICAL", escalated[0].Priority)
	}
	stored, err := f.tickets.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Priority != domain.TicketPriorityCritical {
		t.Errorf("stored priority = %s, want CRITICAL", stored.Priority)
	}

	entries := f.history.byAction(domain.HistoryActionEscalated)
	if len(entries) != 1 {
		t.Fatalf("expected one Escalated entry, got %d", len(entries))
	}
	if *entries[0].OldValue != "HIGH" || *entries[0].NewValue != "CRITICAL" {
		t.Errorf("history values = %s -> %s", *entries[0].OldValue, *entries[0].NewValue)
	}
	if len(f.notifications.forUser("agent-1")) != 1 {
		t.Error("assignee should be notified of the SLA breach")
	}
}

func TestSweepOverdueSkipsCritical(t *testing.T) {
	f := newEscalationFixture(t)
	agent := "agent-1"
	f.seedOverdue("t1", domain.TicketPriorityCritical, &agent)

	escalated, err := f.service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	// A Critical ticket cannot go higher; the sweep must not touch it at
	// all, or every run would append history and re-notify.
	if len(escalated) != 0 {
		t.Errorf("escalated %d tickets, want 0", len(escalated))
	}
	if len(f.history.entries) != 0 {
		t.Errorf("expected no history entries, got %d", len(f.history.entries))
	}
	if len(f.notifications.notifications) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.notifications.notifications))
	}
}

func TestSweepOverdueUnassignedTicketNoNotification(t *testing.T) {
	f := newEscalationFixture(t)
	f.seedOverdue("t1", domain.TicketPriorityLow, nil)

	escalated, err := f.service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if len(escalated) != 1 || escalated[0].Priority != domain.TicketPriorityMedium {
		t.Fatalf("escalated = %+v", escalated)
	}
	if len(f.notifications.notifications) != 0 {
		t.Error("no assignee means nobody to notify")
	}
}

func TestSweepOverdueSkipsConflictedTicket(t *testing.T) {
	f := newEscalationFixture(t)
	agentA := "agent-1"
	agentB := "agent-2"
	f.seedOverdue("t1", domain.TicketPriorityHigh, &agentA)
	f.seedOverdue("t2", domain.TicketPriorityMedium, &agentB)
	// t1 is modified concurrently mid-sweep; the sweep skips it and still
	// escalates t2.
	f.tickets.updateHook = func(ticket *domain.Ticket) {
		if ticket.ID == "t1" {
			stored, _ := f.tickets.GetByID(context.Background(), "t1")
			if stored.Version == ticket.Version {
				stored.Version++
				f.tickets.put(stored)
			}
		}
	}

	escalated, err := f.service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if len(escalated) != 1 || escalated[0].ID != "t2" {
		t.Fatalf("escalated = %+v, want only t2", escalated)
	}
	if escalated[0].Priority != domain.TicketPriorityHigh {
		t.Errorf("t2 priority = %s, want HIGH", escalated[0].Priority)
	}
}

func TestSweepOverdueNothingDue(t *testing.T) {
	f := newEscalationFixture(t)
	due := f.now.Add(time.Hour)
	f.tickets.put(&domain.Ticket{
		ID:          "t1",
		Status:      domain.TicketStatusInProgress,
		Priority:    domain.TicketPriorityLow,
		CreatedByID: "enduser-1",
		DueDate:     &due,
	})

	escalated, err := f.service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if len(escalated) != 0 {
		t.Errorf("escalated = %+v, want none", escalated)
	}
}

func TestSlaBreached(t *testing.T) {
	f := newEscalationFixture(t)
	past := f.now.Add(-time.Minute)
	ticket := &domain.Ticket{Status: domain.TicketStatusAssigned, DueDate: &past}
	if !f.service.SlaBreached(ticket) {
		t.Error("past-due open ticket should report a breach")
	}
	ticket.Status = domain.TicketStatusResolved
	if f.service.SlaBreached(ticket) {
		t.Error("resolved ticket should not report a breach")
	}
}
