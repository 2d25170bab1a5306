package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/api/dto"
	"github.com/Coconut044/SmartTicketSystem/internal/auth"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// AssignmentHandler serves manual and automatic assignment plus the
// dispatcher views: the unassigned queue and the workload snapshot.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: assignmentService}
}

// Assign POST /tickets/:id/assign.
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return util.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.service.AssignManually(c.UserContext(), c.Params("id"), req.AgentID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AutoAssign POST /tickets/:id/auto-assign.
func (h *AssignmentHandler) AutoAssign(c *fiber.Ctx) error {
	ticket, err := h.service.AssignAutomatically(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UnassignedQueue GET /tickets/unassigned.
func (h *AssignmentHandler) UnassignedQueue(c *fiber.Ctx) error {
	tickets, err := h.service.UnassignedTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Workload GET /agents/workload.
func (h *AssignmentHandler) Workload(c *fiber.Ctx) error {
	workload, err := h.service.AgentWorkload(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WorkloadResponse{Workload: workload}})
}
