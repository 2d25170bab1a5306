package domain

import "time"

// Category groups tickets and may carry its own SLA budget which takes
// precedence over the priority-level SLA configuration.
type Category struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	SlaHours    *int
	CreatedAt   time.Time
}
