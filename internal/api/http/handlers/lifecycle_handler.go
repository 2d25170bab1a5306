package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/api/dto"
	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// LifecycleHandler serves the status-transition endpoints. Each endpoint
// checks the caller's policy against the ticket before delegating to the
// lifecycle service, which enforces the transition table itself.
type LifecycleHandler struct {
	lifecycle *service.LifecycleService
	tickets   *service.TicketService
}

// NewLifecycleHandler constructs handler.
func NewLifecycleHandler(lifecycleService *service.LifecycleService, ticketService *service.TicketService) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycleService, tickets: ticketService}
}

// StartWork POST /tickets/:id/start.
func (h *LifecycleHandler) StartWork(c *fiber.Ctx) error {
	principal, ticket, err := h.authorize(c, OpStartWork)
	if err != nil {
		return err
	}
	updated, err := h.lifecycle.StartWork(c.UserContext(), ticket.ID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// Resolve POST /tickets/:id/resolve.
func (h *LifecycleHandler) Resolve(c *fiber.Ctx) error {
	principal, ticket, err := h.authorize(c, OpResolve)
	if err != nil {
		return err
	}
	var req dto.ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	updated, err := h.lifecycle.Resolve(c.UserContext(), ticket.ID, req.ResolutionNotes, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// Close POST /tickets/:id/close.
func (h *LifecycleHandler) Close(c *fiber.Ctx) error {
	principal, ticket, err := h.authorize(c, OpClose)
	if err != nil {
		return err
	}
	updated, err := h.lifecycle.Close(c.UserContext(), ticket.ID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// Reopen POST /tickets/:id/reopen.
func (h *LifecycleHandler) Reopen(c *fiber.Ctx) error {
	principal, ticket, err := h.authorize(c, OpReopen)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	updated, err := h.lifecycle.Reopen(c.UserContext(), ticket.ID, req.Reason, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// Cancel POST /tickets/:id/cancel.
func (h *LifecycleHandler) Cancel(c *fiber.Ctx) error {
	principal, ticket, err := h.authorize(c, OpCancel)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	updated, err := h.lifecycle.Cancel(c.UserContext(), ticket.ID, req.Reason, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(updated)})
}

// AllowedTransitions GET /tickets/:id/transitions.
func (h *LifecycleHandler) AllowedTransitions(c *fiber.Ctx) error {
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
	return c.JSON(fiber.Map{"data": dto.AllowedTransitionsResponse{
		Status:      ticket.Status,
		AllowedNext: h.lifecycle.AllowedNextStatuses(ticket.Status),
	}})
}

func (h *LifecycleHandler) authorize(c *fiber.Ctx, op LifecycleOp) (*auth.Principal, *domain.Ticket, error) {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return nil, nil, err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	if err := CheckLifecyclePolicy(principal.User, ticket, op); err != nil {
		return nil, nil, err
	}
	return principal, ticket, nil
}
