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

// LifecycleService orchestrates ticket status transitions: it validates the
// move against the transition table, applies field mutations, and persists
// the ticket, its history entry and the notification as one transaction.
// Who may invoke an operation is decided by the caller; this service only
// enforces structural legality.
type LifecycleService struct {
	tickets       repository.TicketRepository
	history       repository.TicketHistoryRepository
	notifications *NotificationService
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	clock         domain.Clock
}

// LifecycleDependencies bundles requirements for the orchestrator.
type LifecycleDependencies struct {
	TicketRepo   repository.TicketRepository
	HistoryRepo  repository.TicketHistoryRepository
	Notification *NotificationService
	Tx           repository.TxManager
	Dispatcher   events.Dispatcher
	Clock        domain.Clock
}

// NewLifecycleService constructs the orchestrator.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &LifecycleService{
		tickets:       deps.TicketRepo,
		history:       deps.HistoryRepo,
		notifications: deps.Notification,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		clock:         clock,
	}
}

// AllowedNextStatuses returns the legal moves from the given status.
func (s *LifecycleService) AllowedNextStatuses(status domain.TicketStatus) []domain.TicketStatus {
	return domain.AllowedNext(status)
}

// StartWork moves a ticket to InProgress.
func (s *LifecycleService) StartWork(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusInProgress) {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusInProgress))
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusInProgress
	ticket.UpdatedAt = s.clock.Now()

	err = s.commitTransition(ctx, ticket, actorID, oldStatus,
		"Ticket moved to In Progress",
		ticket.CreatedByID,
		"Ticket Status Updated",
		fmt.Sprintf("Your ticket %q is now being worked on", ticket.Title))
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, ticket, actorID, oldStatus, "")
	return ticket, nil
}

// Resolve marks a ticket resolved. Resolution notes are mandatory.
func (s *LifecycleService) Resolve(ctx context.Context, ticketID, notes, actorID string) (*domain.Ticket, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, util.NewValidationError("resolution notes are required", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusResolved) {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusResolved))
	}

	now := s.clock.Now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolutionNotes = &notes
	ticket.ResolvedAt = &now
	ticket.UpdatedAt = now

	err = s.commitTransition(ctx, ticket, actorID, oldStatus,
		fmt.Sprintf("Ticket resolved: %s", notes),
		ticket.CreatedByID,
		"Ticket Resolved",
		fmt.Sprintf("Your ticket %q has been resolved", ticket.Title))
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, ticket, actorID, oldStatus, notes)
	return ticket, nil
}

// Close closes a resolved ticket.
func (s *LifecycleService) Close(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusClosed) {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusClosed))
	}

	now := s.clock.Now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now

	err = s.commitTransition(ctx, ticket, actorID, oldStatus,
		"Ticket closed",
		ticket.CreatedByID,
		"Ticket Closed",
		fmt.Sprintf("Your ticket %q has been closed", ticket.Title))
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, ticket, actorID, oldStatus, "")
	return ticket, nil
}

// Reopen moves a Resolved or Closed ticket back to InProgress, clearing the
// resolution timestamps. A reason is mandatory.
func (s *LifecycleService) Reopen(ctx context.Context, ticketID, reason, actorID string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, util.NewValidationError("reason for reopening is required", nil)
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusInProgress))
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusInProgress
	ticket.ResolvedAt = nil
	ticket.ClosedAt = nil
	ticket.UpdatedAt = s.clock.Now()

	assignee := ticket.AssignedToID
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateTicket(ctx, ticket); err != nil {
			return err
		}
		if err := s.recordStatusChange(ctx, ticket, actorID, oldStatus, fmt.Sprintf("Ticket reopened: %s", reason)); err != nil {
			return err
		}
		if err := s.notifications.Notify(ctx, ticket.CreatedByID, &ticket.ID,
			"Ticket Reopened",
			fmt.Sprintf("Your ticket %q has been reopened: %s", ticket.Title, reason)); err != nil {
			return err
		}
		if assignee != nil {
			return s.notifications.Notify(ctx, *assignee, &ticket.ID,
				"Ticket Reopened",
				fmt.Sprintf("Ticket %q has been reopened: %s", ticket.Title, reason))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, ticket, actorID, oldStatus, reason)
	return ticket, nil
}

// Cancel cancels a ticket. Cancelled and Closed tickets cannot be cancelled;
// a reason is mandatory.
func (s *LifecycleService) Cancel(ctx context.Context, ticketID, reason, actorID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusCancelled {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusCancelled))
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, util.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusCancelled))
	}
	if strings.TrimSpace(reason) == "" {
		return nil, util.NewValidationError("reason for cancellation is required", nil)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusCancelled
	ticket.UpdatedAt = s.clock.Now()

	err = s.commitTransition(ctx, ticket, actorID, oldStatus,
		fmt.Sprintf("Ticket cancelled: %s", reason),
		ticket.CreatedByID,
		"Ticket Cancelled",
		fmt.Sprintf("Your ticket %q has been cancelled: %s", ticket.Title, reason))
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, ticket, actorID, oldStatus, reason)
	return ticket, nil
}

func (s *LifecycleService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// commitTransition persists the mutated ticket, its audit entry and the
// creator notification atomically.
func (s *LifecycleService) commitTransition(ctx context.Context, ticket *domain.Ticket, actorID string, oldStatus domain.TicketStatus, historyNotes, notifyUserID, notifyTitle, notifyMessage string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateTicket(ctx, ticket); err != nil {
			return err
		}
		if err := s.recordStatusChange(ctx, ticket, actorID, oldStatus, historyNotes); err != nil {
			return err
		}
		return s.notifications.Notify(ctx, notifyUserID, &ticket.ID, notifyTitle, notifyMessage)
	})
}

func (s *LifecycleService) updateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return util.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return util.MapError(err)
	}
	return nil
}

func (s *LifecycleService) recordStatusChange(ctx context.Context, ticket *domain.Ticket, actorID string, oldStatus domain.TicketStatus, notes string) error {
	oldValue := string(oldStatus)
	newValue := string(ticket.Status)
	entry := &domain.TicketHistory{
		TicketID: ticket.ID,
		UserID:   actorID,
		Action:   domain.HistoryActionStatusChanged,
		OldValue: &oldValue,
		NewValue: &newValue,
		Notes:    &notes,
	}
	return s.history.Create(ctx, entry)
}

func (s *LifecycleService) publishStatusChange(ctx context.Context, ticket *domain.Ticket, actorID string, oldStatus domain.TicketStatus, notes string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: actorID},
		Timestamp: s.clock.Now(),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Notes:     notes,
		},
	})
}
