package dto

import (
	"time"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

// CreateTicketRequest is the payload for POST /tickets.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	CategoryID  string                `json:"category_id"`
}

// UpdateTicketRequest is the payload for PATCH /tickets/:id.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	CategoryID  *string                `json:"category_id"`
}

// ResolveRequest carries mandatory resolution notes.
type ResolveRequest struct {
	ResolutionNotes string `json:"resolution_notes"`
}

// ReasonRequest carries the mandatory reason for reopen and cancel.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// AssignRequest is the payload for manual assignment.
type AssignRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CategoryID      string                `json:"category_id"`
	CreatedByID     string                `json:"created_by_id"`
	AssignedToID    *string               `json:"assigned_to_id,omitempty"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	ResolutionNotes *string               `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ResolvedAt      *time.Time            `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time            `json:"closed_at,omitempty"`
}

// TicketPageResponse is a page of tickets.
type TicketPageResponse struct {
	Items       []TicketResponse `json:"items"`
	TotalCount  int              `json:"total_count"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
	HasPrevious bool             `json:"has_previous"`
	HasNext     bool             `json:"has_next"`
}

// HistoryResponse is the wire form of an audit entry.
type HistoryResponse struct {
	ID        string               `json:"id"`
	TicketID  string               `json:"ticket_id"`
	UserID    string               `json:"user_id"`
	Action    domain.HistoryAction `json:"action"`
	OldValue  *string              `json:"old_value,omitempty"`
	NewValue  *string              `json:"new_value,omitempty"`
	Notes     *string              `json:"notes,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// AllowedTransitionsResponse lists legal next statuses.
type AllowedTransitionsResponse struct {
	Status      domain.TicketStatus   `json:"status"`
	AllowedNext []domain.TicketStatus `json:"allowed_next"`
}
