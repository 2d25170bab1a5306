package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/api/dto"
	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// CommentsHandler serves the ticket discussion thread.
type CommentsHandler struct {
	comments *service.CommentService
	tickets  *service.TicketService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService, ticketService *service.TicketService) *CommentsHandler {
	return &CommentsHandler{comments: commentService, tickets: ticketService}
}

// Add POST /tickets/:id/comments.
func (h *CommentsHandler) Add(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := CanViewTicket(principal.User, ticket); err != nil {
		return err
	}
	comment, err := h.comments.AddComment(c.UserContext(), ticket.ID, principal.User, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// List GET /tickets/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := CanViewTicket(principal.User, ticket); err != nil {
		return err
	}
	comments, err := h.comments.ListComments(c.UserContext(), ticket.ID, principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func commentResponse(comment *domain.TicketComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		UserID:     comment.UserID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
