package domain

import "time"

// TicketComment is a discussion entry on a ticket. Internal comments are
// visible to staff only.
type TicketComment struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
