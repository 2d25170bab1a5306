package domain

import "time"

// SlaConfiguration holds the time budgets for a priority level. At most one
// active row may exist per priority.
type SlaConfiguration struct {
	ID                  string
	Priority            TicketPriority
	ResponseTimeHours   int
	ResolutionTimeHours int
	IsActive            bool
	CreatedAt           time.Time
}
