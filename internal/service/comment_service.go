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

// CommentService manages the discussion thread on a ticket. Internal
// comments stay within the support organization; the other party on the
// ticket is notified about public ones.
type CommentService struct {
	comments      repository.CommentRepository
	tickets       repository.TicketRepository
	history       repository.TicketHistoryRepository
	notifications *NotificationService
	tx            repository.TxManager
	dispatcher    events.Dispatcher
	clock         domain.Clock
}

// CommentDependencies bundles requirements for the service.
type CommentDependencies struct {
	CommentRepo  repository.CommentRepository
	TicketRepo   repository.TicketRepository
	HistoryRepo  repository.TicketHistoryRepository
	Notification *NotificationService
	Tx           repository.TxManager
	Dispatcher   events.Dispatcher
	Clock        domain.Clock
}

// NewCommentService creates the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &CommentService{
		comments:      deps.CommentRepo,
		tickets:       deps.TicketRepo,
		history:       deps.HistoryRepo,
		notifications: deps.Notification,
		tx:            deps.Tx,
		dispatcher:    deps.Dispatcher,
		clock:         clock,
	}
}

// AddComment appends a comment to the ticket. Only staff may post internal
// comments; that check belongs to the caller, which passes the author.
func (s *CommentService) AddComment(ctx context.Context, ticketID string, author *domain.User, content string, internal bool) (*domain.TicketComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("comment content is required", nil)
	}
	if internal && !author.Role.IsStaff() {
		return nil, util.NewForbidden("internal comments are restricted to support staff")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}

	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		UserID:     author.ID,
		Content:    content,
		IsInternal: internal,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		notes := "Comment added"
		if internal {
			notes = "Internal comment added"
		}
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   author.ID,
			Action:   domain.HistoryActionCommentAdded,
			Notes:    &notes,
		}); err != nil {
			return err
		}
		if internal {
			return nil
		}
		return s.notifyCounterparty(ctx, ticket, author)
	})
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishCommentAdded(ctx, ticket, comment)
	return comment, nil
}

// ListComments returns the ticket's thread. Non-staff callers never see
// internal comments.
func (s *CommentService) ListComments(ctx context.Context, ticketID string, viewer *domain.User) ([]domain.TicketComment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.MapError(err)
	}
	list, err := s.comments.ListByTicket(ctx, ticketID, viewer.Role.IsStaff())
	if err != nil {
		return nil, util.MapError(err)
	}
	return list, nil
}

// notifyCounterparty tells the other side of the conversation: the assignee
// when the creator comments, the creator when anyone else does.
func (s *CommentService) notifyCounterparty(ctx context.Context, ticket *domain.Ticket, author *domain.User) error {
	recipient := ticket.CreatedByID
	if author.ID == ticket.CreatedByID {
		if ticket.AssignedToID == nil {
			return nil
		}
		recipient = *ticket.AssignedToID
	}
	return s.notifications.Notify(ctx, recipient, &ticket.ID,
		"New Comment",
		fmt.Sprintf("New comment on ticket %q", ticket.Title))
}

func (s *CommentService) publishCommentAdded(ctx context.Context, ticket *domain.Ticket, comment *domain.TicketComment) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCommentAdded,
		TicketID:  ticket.ID,
		Actor:     events.Actor{UserID: comment.UserID},
		Timestamp: s.clock.Now(),
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
}
