package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusCreated    TicketStatus = "CREATED"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Rank orders priorities for queue discipline. Higher is more urgent.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityCritical:
		return 4
	case TicketPriorityHigh:
		return 3
	case TicketPriorityMedium:
		return 2
	case TicketPriorityLow:
		return 1
	default:
		return 0
	}
}

// Escalated returns the next priority up the escalation ladder.
// Critical is absorbing.
func (p TicketPriority) Escalated() TicketPriority {
	switch p {
	case TicketPriorityLow:
		return TicketPriorityMedium
	case TicketPriorityMedium:
		return TicketPriorityHigh
	case TicketPriorityHigh:
		return TicketPriorityCritical
	default:
		return p
	}
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CategoryID      string
	CreatedByID     string
	AssignedToID    *string
	DueDate         *time.Time
	ResolutionNotes *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	// Version implements optimistic concurrency; every status-affecting
	// update must match the version it read.
	Version int64
}

// CountsTowardWorkload reports whether the ticket still counts toward its
// assignee's workload. Resolved and Closed tickets do not; Cancelled does.
func (t *Ticket) CountsTowardWorkload() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusClosed
}

// Overdue reports whether the ticket has breached its SLA due date.
func (t *Ticket) Overdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) &&
		t.Status != TicketStatusResolved &&
		t.Status != TicketStatusClosed
}
