package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

type assignmentFixture struct {
	service       *AssignmentService
	tickets       *fakeTicketRepo
	users         *fakeUserRepo
	history       *fakeHistoryRepo
	notifications *fakeNotificationRepo
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2026-04-10T09:00:00Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	tickets := newFakeTicketRepo()
	users := &fakeUserRepo{}
	history := &fakeHistoryRepo{}
	notifications := &fakeNotificationRepo{}
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:   tickets,
		UserRepo:     users,
		HistoryRepo:  history,
		Notification: NewNotificationService(notifications, zap.NewNop(), config.NotificationConfig{}),
		Tx:           fakeTx{},
		Clock:        fakeClock{now: now},
	})
	return &assignmentFixture{service: svc, tickets: tickets, users: users, history: history, notifications: notifications}
}

func (f *assignmentFixture) addAgent(id string, active bool) {
	f.users.add(&domain.User{
		ID:       id,
		FullName: "Agent " + id,
		Email:    id + "@example.com",
		Role:     domain.UserRoleSupportAgent,
		Active:   active,
	})
}

func (f *assignmentFixture) addAssigned(agentID string, count int, status domain.TicketStatus) {
	for i := 0; i < count; i++ {
		agent := agentID
		f.tickets.put(&domain.Ticket{
			ID:           fmt.Sprintf("%s-load-%s-%d", agentID, status, i),
			Status:       status,
			Priority:     domain.TicketPriorityMedium,
			CreatedByID:  "enduser-1",
			AssignedToID: &agent,
		})
	}
}

func TestAssignAutomaticallyPicksLeastLoaded(t *testing.T) {
	f := newAssignmentFixture(t)
	f.addAgent("agent-a", true)
	f.addAgent("agent-b", true)
	f.addAgent("agent-c", true)
	f.addAssigned("agent-a", 3, domain.TicketStatusInProgress)
	f.addAssigned("agent-b", 1, domain.TicketStatusAssigned)
	f.addAssigned("agent-c", 1, domain.TicketStatusAssigned)
	f.tickets.put(&domain.Ticket{ID: "t1", Status: domain.TicketStatusCreated, Priority: domain.TicketPriorityHigh, CreatedByID: "enduser-1"})

	ticket, err := f.service.AssignAutomatically(context.Background(), "t1")
	if err != nil {
		t.Fatalf("AssignAutomatically: %v", err)
	}
	// agent-b and agent-c tie at 1; the earlier-created agent wins.
	if ticket.AssignedToID == nil || *ticket.AssignedToID != "agent-b" {
		t.Errorf("assigned to %v, want agent-b", ticket.AssignedToID)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", ticket.Status)
	}
	entries := f.history.byAction(domain.HistoryActionAutoAssigned)
	if len(entries) != 1 {
		t.Fatalf("expected one AutoAssigned entry, got %d", len(entries))
	}
	if entries[0].UserID != events.SystemActorID {
		t.Errorf("auto-assignment actor = %s, want %s", entries[0].UserID, events.SystemActorID)
	}
}

func TestAssignAutomaticallyExcludesResolvedAndClosedFromWorkload(t *testing.T) {
	f := newAssignmentFixture(t)
	f.addAgent("agent-a", true)
	f.addAgent("agent-b", true)
	// agent-a has many finished tickets and one open; agent-b has two open.
	f.addAssigned("agent-a", 5, domain.TicketStatusResolved)
	f.addAssigned("agent-a", 3, domain.TicketStatusClosed)
	f.addAssigned("agent-a", 1, domain.TicketStatusInProgress)
	f.addAssigned("agent-b", 2, domain.TicketStatusInProgress)
	f.tickets.put(&domain.Ticket{ID: "t1", Status: domain.TicketStatusCreated, Priority: domain.TicketPriorityLow, CreatedByID: "enduser-1"})

	ticket, err := f.service.AssignAutomatically(context.Background(), "t1")
	if err != nil {
		t.Fatalf("AssignAutomatically: %v", err)
	}
	if *ticket.AssignedToID != "agent-a" {
		t.Errorf("assigned to %s, want agent-a", *ticket.AssignedToID)
	}
}

func TestAssignAutomaticallyNoCandidates(t *testing.T) {
	f := newAssignmentFixture(t)
	f.addAgent("agent-a", false)
	f.users.add(&domain.User{ID: "manager-1", Role: domain.UserRoleSupportManager, Active: true})
	f.tickets.put(&domain.Ticket{ID: "t1", Status: domain.TicketStatusCreated, CreatedByID: "enduser-1", Priority: domain.TicketPriorityLow})

	_, err := f.service.AssignAutomatically(context.Background(), "t1")
	if !util.IsCode(err, "NO_CANDIDATES") {
		t.Fatalf("expected NO_CANDIDATES, got %v", err)
	}
}

func TestAssignAutomaticallyTicketNotFound(t *testing.T) {
	f := newAssignmentFixture(t)
	f.addAgent("agent-a", true)

	_, err := f.service.AssignAutomatically(context.Background(), "missing")
	if !util.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAssignManuallyOverridesStatusFromInProgress(t *testing.T) {
	f := newAssignmentFixture(t)
	f.addAgent("agent-a", true)
	f.addAgent("agent-b", true)
	agentA := "agent-a"
	f.tickets.put(&domain.Ticket{
		ID:           "t1",
		Status:       domain.TicketStatusInProgress,
		Priority:     domain.TicketPriorityHigh,
		CreatedByID:  "enduser-1",
		AssignedToID: &agentA,
	})

	ticket, err := f.service.AssignManually(context.Background(), "t1", "agent-b", "manager-1")
	if err != nil {
		t.Fatalf("AssignManually: %v", err)
	}
	// Reassignment always pins the status back to Assigned, even from a
	// later state.
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", ticket.Status)
	}
	if *ticket.AssignedToID != "agent-b" {
		t.Errorf("assignee = %s, want agent-b", *ticket.AssignedToID)
	}
	entries := f.history.byAction(domain.HistoryActionAssigned)
	if len(entries) != 1 || entries[0].UserID != "manager-1" {
		t.Fatalf("expected Assigned entry by manager-1, got %+v", entries)
	}
}

func TestAssignManuallyInvalidTarget(t *testing.T) {
	f := newAssignmentFixture(t)
	f.users.add(&domain.User{ID: "enduser-2", Role: domain.UserRoleEndUser, Active: true})
	f.tickets.put(&domain.Ticket{ID: "t1", Status: domain.TicketStatusCreated, CreatedByID: "enduser-1", Priority: domain.TicketPriorityLow})

	if _, err := f.service.AssignManually(context.Background(), "t1", "missing", "manager-1"); !util.IsCode(err, "INVALID_TARGET") {
		t.Errorf("missing agent: expected INVALID_TARGET, got %v", err)
	}
	if _, err := f.service.AssignManually(context.Background(), "t1", "enduser-2", "manager-1"); !util.IsCode(err, "INVALID_TARGET") {
		t.Errorf("end-user target: expected INVALID_TARGET, got %v", err)
	}
}

func TestUnassignedTicketsOrdering(t *testing.T) {
	f := newAssignmentFixture(t)
	base, err := time.Parse(time.RFC3339, "2026-04-10T00:00:00Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	add := func(id string, priority domain.TicketPriority, minute int) {
		f.tickets.put(&domain.Ticket{
			ID:          id,
			Status:      domain.TicketStatusCreated,
			Priority:    priority,
			CreatedByID: "enduser-1",
			CreatedAt:   base.Add(time.Duration(minute) * time.Minute),
		})
	}
	add("critical-late", domain.TicketPriorityCritical, 10)
	add("low-mid", domain.TicketPriorityLow, 5)
	add("critical-early", domain.TicketPriorityCritical, 3)

	queue, err := f.service.UnassignedTickets(context.Background())
	if err != nil {
		t.Fatalf("UnassignedTickets: %v", err)
	}
	want := []string{"critical-early", "critical-late", "low-mid"}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i, id := range want {
		if queue[i].ID != id {
			t.Errorf("queue[%d] = %s, want %s", i, queue[i].ID, id)
		}
	}
}

func TestUnassignedTicketsExcludesAssigned(t *testing.T) {
	f := newAssignmentFixture(t)
	agent := "agent-a"
	f.tickets.put(&domain.Ticket{ID: "t1", Status: domain.TicketStatusCreated, Priority: domain.TicketPriorityLow, CreatedByID: "u"})
	f.tickets.put(&domain.Ticket{ID: "t2", Status: domain.TicketStatusAssigned, Priority: domain.TicketPriorityHigh, CreatedByID: "u", AssignedToID: &agent})

	queue, err := f.service.UnassignedTickets(context.Background())
	if err != nil {
		t.Fatalf("UnassignedTickets: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != "t1" {
		t.Errorf("queue = %+v, want only t1", queue)
	}
}
