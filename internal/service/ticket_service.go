package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// TicketService coordinates ticket CRUD workflows around the lifecycle
// orchestrator: creation with SLA due dates, listing, field updates and the
// admin delete.
type TicketService struct {
	tickets       repository.TicketRepository
	categories    repository.CategoryRepository
	history       repository.TicketHistoryRepository
	notifications *NotificationService
	sla           *SlaService
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	clock         domain.Clock
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	HistoryRepo  repository.TicketHistoryRepository
	Notification *NotificationService
	Sla          *SlaService
	Tx           repository.TxManager
	Dispatcher   events.Dispatcher
	Clock        domain.Clock
}

// TicketCreateInput describes a ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CategoryID  string
}

// TicketUpdateInput describes an edit payload. Nil fields are unchanged.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	CategoryID  *string
}

// PagedTickets is a page of tickets plus paging metadata.
type PagedTickets struct {
	Items       []domain.Ticket
	TotalCount  int
	Page        int
	PageSize    int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		categories:    deps.CategoryRepo,
		history:       deps.HistoryRepo,
		notifications: deps.Notification,
		sla:           deps.Sla,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		clock:         clock,
	}
}

// CreateTicket creates a ticket in the Created status with its SLA due date
// computed from the category or priority budget.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description are required", nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, util.MapError(err)
	}
	if !category.IsActive {
		return nil, util.NewValidationError("category is inactive", map[string]any{"category_id": category.ID})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if priority.Rank() == 0 {
		return nil, util.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	now := s.clock.Now()
	dueDate, err := s.sla.DueDateForTicket(ctx, category, priority, now)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusCreated,
		Priority:    priority,
		CategoryID:  category.ID,
		CreatedByID: userID,
		DueDate:     &dueDate,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		notes := "Ticket created"
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   userID,
			Action:   domain.HistoryActionCreated,
			Notes:    &notes,
		}); err != nil {
			return err
		}
		return s.notifications.Notify(ctx, userID, &ticket.ID,
			"Ticket Created",
			fmt.Sprintf("Your ticket %q has been created", ticket.Title))
	})
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishCreated(ctx, ticket, userID)
	return ticket, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns a page of tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter, page, pageSize int) (*PagedTickets, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	items, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &PagedTickets{
		Items:       items,
		TotalCount:  total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page*pageSize < total,
	}, nil
}

// UpdateTicket edits ticket fields and records an audit entry.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, input TicketUpdateInput, actorID string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var changes []string
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		ticket.Title = strings.TrimSpace(*input.Title)
		changes = append(changes, "title")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
		ticket.Description = strings.TrimSpace(*input.Description)
		changes = append(changes, "description")
	}
	if input.Priority != nil {
		if input.Priority.Rank() == 0 {
			return nil, util.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
		changes = append(changes, "priority")
	}
	if input.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewNotFound("category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, util.MapError(err)
		}
		if !category.IsActive {
			return nil, util.NewValidationError("category is inactive", map[string]any{"category_id": category.ID})
		}
		ticket.CategoryID = category.ID
		changes = append(changes, "category")
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	ticket.UpdatedAt = s.clock.Now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return util.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
			}
			return err
		}
		notes := fmt.Sprintf("Ticket updated: %s", strings.Join(changes, ", "))
		return s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   actorID,
			Action:   domain.HistoryActionUpdated,
			Notes:    &notes,
		})
	})
	if err != nil {
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// DeleteTicket removes a ticket permanently. Reserved for administrators;
// history rows go with the ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return util.MapError(err)
	}
	return nil
}

// ListHistory returns the audit trail for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, util.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) publishCreated(ctx context.Context, ticket *domain.Ticket, userID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: userID},
		Timestamp: s.clock.Now(),
		Payload: events.TicketCreatedPayload{
			CategoryID: ticket.CategoryID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
			DueDate:    ticket.DueDate,
		},
	})
}
