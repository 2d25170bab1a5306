package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// EscalationService promotes the priority of tickets that breached their SLA
// due date. A sweep runs as one transaction: every escalated ticket, its
// history entry and its assignee notification commit together or not at all.
type EscalationService struct {
	tickets       repository.TicketRepository
	history       repository.TicketHistoryRepository
	notifications *NotificationService
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	clock         domain.Clock
	logger        *zap.Logger
}

// EscalationDependencies bundles requirements for the sweep.
type EscalationDependencies struct {
	TicketRepo   repository.TicketRepository
	HistoryRepo  repository.TicketHistoryRepository
	Notification *NotificationService
	Tx           repository.TxManager
	Dispatcher   events.Dispatcher
	Clock        domain.Clock
	Logger       *zap.Logger
}

// NewEscalationService creates the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationService{
		tickets:       deps.TicketRepo,
		history:       deps.HistoryRepo,
		notifications: deps.Notification,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		clock:         clock,
		logger:        logger,
	}
}

// SweepOverdue escalates every overdue non-terminal ticket one priority band
// and returns the tickets it changed. Tickets already at Critical are left
// untouched: re-recording an escalation that cannot promote anything would
// re-fire on every sweep. A ticket modified concurrently (version conflict)
// is skipped and picked up again next interval.
type escalationResult struct {
	ticket      domain.Ticket
	oldPriority domain.TicketPriority
}

func (s *EscalationService) SweepOverdue(ctx context.Context) ([]domain.Ticket, error) {
	now := s.clock.Now()
	var escalated []escalationResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		overdue, err := s.tickets.ListOverdue(ctx, now)
		if err != nil {
			return err
		}
		for i := range overdue {
			ticket := &overdue[i]
			// The listing already filtered, but the state is re-validated per
			// ticket so a ticket resolved between the read and this mutation
			// is never escalated.
			if !ticket.Overdue(now) {
				continue
			}
			newPriority := ticket.Priority.Escalated()
			if newPriority == ticket.Priority {
				continue
			}

			oldPriority := ticket.Priority
			ticket.Priority = newPriority
			ticket.UpdatedAt = now
			if err := s.tickets.Update(ctx, ticket); err != nil {
				if errors.Is(err, repository.ErrVersionConflict) {
					s.logger.Debug("skipping concurrently modified ticket",
						zap.String("ticket_id", ticket.ID))
					ticket.Priority = oldPriority
					continue
				}
				return err
			}

			if err := s.recordEscalation(ctx, ticket, oldPriority); err != nil {
				return err
			}
			if ticket.AssignedToID != nil {
				err := s.notifications.Notify(ctx, *ticket.AssignedToID, &ticket.ID,
					"SLA Breach - Ticket Escalated",
					fmt.Sprintf("Ticket %q has breached SLA and been escalated to %s", ticket.Title, ticket.Priority))
				if err != nil {
					return err
				}
			}
			escalated = append(escalated, escalationResult{ticket: *ticket, oldPriority: oldPriority})
		}
		return nil
	})
	if err != nil {
		return nil, util.MapError(err)
	}

	tickets := make([]domain.Ticket, 0, len(escalated))
	for _, result := range escalated {
		s.publishEscalated(ctx, &result.ticket, result.oldPriority)
		tickets = append(tickets, result.ticket)
	}
	return tickets, nil
}

// SlaBreached reports whether the ticket is currently past its due date and
// still open.
func (s *EscalationService) SlaBreached(ticket *domain.Ticket) bool {
	return ticket.Overdue(s.clock.Now())
}

func (s *EscalationService) recordEscalation(ctx context.Context, ticket *domain.Ticket, oldPriority domain.TicketPriority) error {
	oldValue := string(oldPriority)
	newValue := string(ticket.Priority)
	notes := fmt.Sprintf("Ticket escalated to %s due to SLA breach", ticket.Priority)
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID: ticket.ID,
		UserID:   events.SystemActorID,
		Action:   domain.HistoryActionEscalated,
		OldValue: &oldValue,
		NewValue: &newValue,
		Notes:    &notes,
	})
}

func (s *EscalationService) publishEscalated(ctx context.Context, ticket *domain.Ticket, oldPriority domain.TicketPriority) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: events.SystemActorID},
		Timestamp: s.clock.Now(),
		Payload: events.TicketEscalatedPayload{
			OldPriority: oldPriority,
			NewPriority: ticket.Priority,
			DueDate:     ticket.DueDate,
		},
	})
}
