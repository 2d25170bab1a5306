package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/api/dto"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/service"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// SlaHandler serves SLA configuration administration.
type SlaHandler struct {
	service *service.SlaService
}

// NewSlaHandler constructs handler.
func NewSlaHandler(slaService *service.SlaService) *SlaHandler {
	return &SlaHandler{service: slaService}
}

// List GET /sla-configurations.
func (h *SlaHandler) List(c *fiber.Ctx) error {
	configs, err := h.service.ListConfigurations(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SlaConfigurationResponse, 0, len(configs))
	for i := range configs {
		items = append(items, slaResponse(&configs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /sla-configurations.
func (h *SlaHandler) Create(c *fiber.Ctx) error {
	var req dto.SlaConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	sla, err := h.service.CreateConfiguration(c.UserContext(), service.SlaConfigurationInput{
		Priority:            req.Priority,
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": slaResponse(sla)})
}

// Update PUT /sla-configurations/:id.
func (h *SlaHandler) Update(c *fiber.Ctx) error {
	var req dto.SlaConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	sla, err := h.service.UpdateConfiguration(c.UserContext(), c.Params("id"), service.SlaConfigurationInput{
		Priority:            req.Priority,
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaResponse(sla)})
}

// Deactivate DELETE /sla-configurations/:id.
func (h *SlaHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.service.DeactivateConfiguration(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func slaResponse(sla *domain.SlaConfiguration) dto.SlaConfigurationResponse {
	return dto.SlaConfigurationResponse{
		ID:                  sla.ID,
		Priority:            sla.Priority,
		ResponseTimeHours:   sla.ResponseTimeHours,
		ResolutionTimeHours: sla.ResolutionTimeHours,
		IsActive:            sla.IsActive,
		CreatedAt:           sla.CreatedAt,
	}
}
