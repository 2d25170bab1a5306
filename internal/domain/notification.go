package domain

import "time"

// Notification is a per-user message record. The core only writes these;
// delivery is a concern of the surrounding system.
type Notification struct {
	ID        string
	UserID    string
	TicketID  *string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
