package dto

import (
	"time"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

// CategoryRequest is the payload for category create and update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SlaHours    *int   `json:"sla_hours"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryResponse is the wire form of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	SlaHours    *int      `json:"sla_hours,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SlaConfigurationRequest is the payload for SLA administration.
type SlaConfigurationRequest struct {
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   int                   `json:"response_time_hours"`
	ResolutionTimeHours int                   `json:"resolution_time_hours"`
}

// SlaConfigurationResponse is the wire form of an SLA row.
type SlaConfigurationResponse struct {
	ID                  string                `json:"id"`
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   int                   `json:"response_time_hours"`
	ResolutionTimeHours int                   `json:"resolution_time_hours"`
	IsActive            bool                  `json:"is_active"`
	CreatedAt           time.Time             `json:"created_at"`
}

// CommentRequest is the payload for adding a comment.
type CommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// CommentResponse is the wire form of a comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationResponse is the wire form of an inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	TicketID  *string   `json:"ticket_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkloadResponse maps agent ids to open ticket counts.
type WorkloadResponse struct {
	Workload map[string]int `json:"workload"`
}
