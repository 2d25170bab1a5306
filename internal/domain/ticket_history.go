package domain

import "time"

// HistoryAction tags what happened in an audit entry.
type HistoryAction string

const (
	HistoryActionCreated       HistoryAction = "Created"
	HistoryActionStatusChanged HistoryAction = "StatusChanged"
	HistoryActionAssigned      HistoryAction = "Assigned"
	HistoryActionAutoAssigned  HistoryAction = "AutoAssigned"
	HistoryActionEscalated     HistoryAction = "Escalated"
	HistoryActionUpdated       HistoryAction = "Updated"
	HistoryActionCommentAdded  HistoryAction = "CommentAdded"
)

// TicketHistory is an append-only audit trail entry. Entries are never
// mutated or deleted; their lifetime is tied to the ticket.
type TicketHistory struct {
	ID        string
	TicketID  string
	UserID    string
	Action    HistoryAction
	OldValue  *string
	NewValue  *string
	Notes     *string
	CreatedAt time.Time
}
