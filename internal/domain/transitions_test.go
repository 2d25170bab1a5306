package domain

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{TicketStatusCreated, TicketStatusAssigned, true},
		{TicketStatusCreated, TicketStatusCancelled, true},
		{TicketStatusCreated, TicketStatusInProgress, false},
		{TicketStatusCreated, TicketStatusResolved, false},
		{TicketStatusCreated, TicketStatusClosed, false},

		{TicketStatusAssigned, TicketStatusInProgress, true},
		{TicketStatusAssigned, TicketStatusCancelled, true},
		{TicketStatusAssigned, TicketStatusResolved, false},
		{TicketStatusAssigned, TicketStatusCreated, false},

		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusAssigned, true},
		{TicketStatusInProgress, TicketStatusCancelled, true},
		{TicketStatusInProgress, TicketStatusClosed, false},
		{TicketStatusInProgress, TicketStatusCreated, false},

		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusInProgress, true},
		{TicketStatusResolved, TicketStatusCancelled, false},
		{TicketStatusResolved, TicketStatusAssigned, false},

		{TicketStatusClosed, TicketStatusInProgress, true},
		{TicketStatusClosed, TicketStatusCancelled, false},
		{TicketStatusClosed, TicketStatusResolved, false},

		{TicketStatusCancelled, TicketStatusCreated, false},
		{TicketStatusCancelled, TicketStatusAssigned, false},
		{TicketStatusCancelled, TicketStatusInProgress, false},
		{TicketStatusCancelled, TicketStatusResolved, false},
		{TicketStatusCancelled, TicketStatusClosed, false},
		{TicketStatusCancelled, TicketStatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionSelfLoopsForbidden(t *testing.T) {
	statuses := []TicketStatus{
		TicketStatusCreated, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled,
	}
	for _, status := range statuses {
		if CanTransition(status, status) {
			t.Errorf("self transition allowed for %s", status)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("ARCHIVED", TicketStatusClosed) {
		t.Error("unknown from-status should have no outgoing transitions")
	}
	if CanTransition(TicketStatusCreated, "ARCHIVED") {
		t.Error("unknown to-status should never be reachable")
	}
}

func TestAllowedNextReturnsCopy(t *testing.T) {
	first := AllowedNext(TicketStatusInProgress)
	if len(first) != 3 {
		t.Fatalf("expected 3 transitions from IN_PROGRESS, got %d", len(first))
	}
	first[0] = "MUTATED"
	second := AllowedNext(TicketStatusInProgress)
	if second[0] == "MUTATED" {
		t.Error("AllowedNext must not expose the internal table")
	}
}

func TestAllowedNextTerminal(t *testing.T) {
	if got := AllowedNext(TicketStatusCancelled); len(got) != 0 {
		t.Errorf("CANCELLED should be terminal, got %v", got)
	}
}

func TestPriorityEscalated(t *testing.T) {
	cases := map[TicketPriority]TicketPriority{
		TicketPriorityLow:      TicketPriorityMedium,
		TicketPriorityMedium:   TicketPriorityHigh,
		TicketPriorityHigh:     TicketPriorityCritical,
		TicketPriorityCritical: TicketPriorityCritical,
	}
	for from, want := range cases {
		if got := from.Escalated(); got != want {
			t.Errorf("%s.Escalated() = %s, want %s", from, got, want)
		}
	}
}

func TestTicketOverdue(t *testing.T) {
	now := mustTime(t, "2026-03-01T12:00:00Z")
	past := mustTime(t, "2026-03-01T11:00:00Z")
	future := mustTime(t, "2026-03-01T13:00:00Z")

	cases := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{"past due and open", Ticket{Status: TicketStatusInProgress, DueDate: &past}, true},
		{"past due but resolved", Ticket{Status: TicketStatusResolved, DueDate: &past}, false},
		{"past due but closed", Ticket{Status: TicketStatusClosed, DueDate: &past}, false},
		{"past due and cancelled", Ticket{Status: TicketStatusCancelled, DueDate: &past}, true},
		{"not yet due", Ticket{Status: TicketStatusInProgress, DueDate: &future}, false},
		{"no due date", Ticket{Status: TicketStatusInProgress}, false},
	}
	for _, tc := range cases {
		if got := tc.ticket.Overdue(now); got != tc.want {
			t.Errorf("%s: Overdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCountsTowardWorkload(t *testing.T) {
	counted := []TicketStatus{TicketStatusCreated, TicketStatusAssigned, TicketStatusInProgress, TicketStatusCancelled}
	for _, status := range counted {
		if !(&Ticket{Status: status}).CountsTowardWorkload() {
			t.Errorf("%s should count toward workload", status)
		}
	}
	for _, status := range []TicketStatus{TicketStatusResolved, TicketStatusClosed} {
		if (&Ticket{Status: status}).CountsTowardWorkload() {
			t.Errorf("%s should not count toward workload", status)
		}
	}
}
