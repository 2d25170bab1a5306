package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/events"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// WorkloadCache caches the agent-workload snapshot between sweeps of the
// ticket table. Implemented by persistence.WorkloadCache; nil-safe.
type WorkloadCache interface {
	Get(ctx context.Context) (map[string]int, bool)
	Set(ctx context.Context, workload map[string]int)
	Invalidate(ctx context.Context)
}

// AssignmentService implements the assignment policy: manual assignment with
// an unconditional status override, and automatic least-workload assignment.
type AssignmentService struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	history       repository.TicketHistoryRepository
	notifications *NotificationService
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	clock         domain.Clock
	cache         WorkloadCache
}

// AssignmentDependencies bundles requirements for the service.
type AssignmentDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	HistoryRepo  repository.TicketHistoryRepository
	Notification *NotificationService
	Tx           repository.TxManager
	Dispatcher   events.Dispatcher
	Clock        domain.Clock
	Cache        WorkloadCache
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AssignmentService{
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		history:       deps.HistoryRepo,
		notifications: deps.Notification,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		clock:         clock,
		cache:         deps.Cache,
	}
}

// AssignManually assigns the ticket to the named agent. The status is forced
// to Assigned regardless of the current one; this administrative override
// deliberately bypasses the transition table.
func (s *AssignmentService) AssignManually(ctx context.Context, ticketID, agentID, actorID string) (*domain.Ticket, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewInvalidTarget("assignment target does not exist", map[string]any{"agent_id": agentID})
		}
		return nil, util.MapError(err)
	}
	if !agent.Role.CanBeAssignee() {
		return nil, util.NewInvalidTarget("assignment target lacks an eligible role", map[string]any{
			"agent_id": agentID,
			"role":     agent.Role,
		})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedToID = &agent.ID
	ticket.Status = domain.TicketStatusAssigned
	ticket.UpdatedAt = s.clock.Now()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateTicket(ctx, ticket); err != nil {
			return err
		}
		notes := fmt.Sprintf("Ticket manually assigned to %s", agent.FullName)
		return s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   actorID,
			Action:   domain.HistoryActionAssigned,
			NewValue: &agent.FullName,
			Notes:    &notes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWorkload(ctx)
	s.publishAssigned(ctx, ticket, actorID, agent.ID, false)
	return ticket, nil
}

// AssignAutomatically picks the active support agent with the fewest open
// tickets. Agents are enumerated in creation order and ties keep the first
// minimum, so the choice is deterministic for a given snapshot.
func (s *AssignmentService) AssignAutomatically(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	agents, err := s.users.ListByRole(ctx, domain.UserRoleSupportAgent, true)
	if err != nil {
		return nil, util.MapError(err)
	}
	if len(agents) == 0 {
		return nil, util.NewNoCandidates("no active support agents available")
	}

	workload, err := s.AgentWorkload(ctx)
	if err != nil {
		return nil, err
	}

	selected := agents[0]
	for _, agent := range agents[1:] {
		if workload[agent.ID] < workload[selected.ID] {
			selected = agent
		}
	}

	ticket.AssignedToID = &selected.ID
	ticket.Status = domain.TicketStatusAssigned
	ticket.UpdatedAt = s.clock.Now()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateTicket(ctx, ticket); err != nil {
			return err
		}
		notes := fmt.Sprintf("Ticket automatically assigned to %s based on workload", selected.FullName)
		return s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   events.SystemActorID,
			Action:   domain.HistoryActionAutoAssigned,
			NewValue: &selected.FullName,
			Notes:    &notes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWorkload(ctx)
	s.publishAssigned(ctx, ticket, events.SystemActorID, selected.ID, true)
	return ticket, nil
}

// UnassignedTickets returns the queue of Created tickets without an
// assignee: priority descending, then oldest first within a priority band so
// low-priority tickets cannot starve behind a steady stream of newer
// high-priority ones.
func (s *AssignmentService) UnassignedTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListUnassigned(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	// Repository orders by creation time; the stable sort layers priority on
	// top and keeps FIFO inside each band.
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Priority.Rank() > tickets[j].Priority.Rank()
	})
	return tickets, nil
}

// AgentWorkload maps agent id to the count of assigned tickets that are not
// Resolved or Closed. The snapshot is cached briefly; assignment tolerates a
// point-in-time view.
func (s *AssignmentService) AgentWorkload(ctx context.Context) (map[string]int, error) {
	if s.cache != nil {
		if workload, ok := s.cache.Get(ctx); ok {
			return workload, nil
		}
	}
	workload, err := s.tickets.CountActiveByAssignee(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, workload)
	}
	return workload, nil
}

func (s *AssignmentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) updateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return util.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return util.MapError(err)
	}
	return nil
}

func (s *AssignmentService) invalidateWorkload(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *AssignmentService) publishAssigned(ctx context.Context, ticket *domain.Ticket, actorID, assigneeID string, automatic bool) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: actorID},
		Timestamp: s.clock.Now(),
		Payload: events.TicketAssignedPayload{
			AssignedToID: assigneeID,
			Automatic:    automatic,
		},
	})
}
