package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/config"
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// SlaService owns SLA configuration and due-date computation.
type SlaService struct {
	slas                   repository.SlaConfigurationRepository
	defaultResolutionHours int
}

// NewSlaService builds the service.
func NewSlaService(slaRepo repository.SlaConfigurationRepository, cfg config.SlaConfig) *SlaService {
	hours := cfg.DefaultResolutionHours
	if hours <= 0 {
		hours = 24
	}
	return &SlaService{slas: slaRepo, defaultResolutionHours: hours}
}

// CalculateDueDate resolves the due date from the active priority-level SLA
// row. It returns nil when no active row exists; callers fall back to the
// default budget.
func (s *SlaService) CalculateDueDate(ctx context.Context, priority domain.TicketPriority, createdAt time.Time) (*time.Time, error) {
	sla, err := s.slas.GetActiveByPriority(ctx, priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, util.MapError(err)
	}
	due := createdAt.Add(time.Duration(sla.ResolutionTimeHours) * time.Hour)
	return &due, nil
}

// DueDateForTicket applies the SLA precedence order: the category's own SLA
// hours win, then the priority-level configuration, then the default budget.
func (s *SlaService) DueDateForTicket(ctx context.Context, category *domain.Category, priority domain.TicketPriority, createdAt time.Time) (time.Time, error) {
	if category != nil && category.SlaHours != nil {
		return createdAt.Add(time.Duration(*category.SlaHours) * time.Hour), nil
	}
	due, err := s.CalculateDueDate(ctx, priority, createdAt)
	if err != nil {
		return time.Time{}, err
	}
	if due != nil {
		return *due, nil
	}
	return createdAt.Add(time.Duration(s.defaultResolutionHours) * time.Hour), nil
}

// SlaConfigurationInput describes a create/update payload.
type SlaConfigurationInput struct {
	Priority            domain.TicketPriority
	ResponseTimeHours   int
	ResolutionTimeHours int
}

// ListConfigurations returns all SLA rows including inactive ones.
func (s *SlaService) ListConfigurations(ctx context.Context) ([]domain.SlaConfiguration, error) {
	configs, err := s.slas.List(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	return configs, nil
}

// CreateConfiguration adds an SLA row, enforcing at most one active row per
// priority.
func (s *SlaService) CreateConfiguration(ctx context.Context, input SlaConfigurationInput) (*domain.SlaConfiguration, error) {
	if err := validateSlaInput(input); err != nil {
		return nil, err
	}
	if _, err := s.slas.GetActiveByPriority(ctx, input.Priority); err == nil {
		return nil, util.NewConflict("active SLA configuration already exists for priority", map[string]any{"priority": input.Priority})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, util.MapError(err)
	}

	sla := &domain.SlaConfiguration{
		Priority:            input.Priority,
		ResponseTimeHours:   input.ResponseTimeHours,
		ResolutionTimeHours: input.ResolutionTimeHours,
		IsActive:            true,
	}
	if err := s.slas.Create(ctx, sla); err != nil {
		return nil, util.MapError(err)
	}
	return sla, nil
}

// UpdateConfiguration replaces the budgets of an existing row.
func (s *SlaService) UpdateConfiguration(ctx context.Context, id string, input SlaConfigurationInput) (*domain.SlaConfiguration, error) {
	if err := validateSlaInput(input); err != nil {
		return nil, err
	}
	sla, err := s.slas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("sla configuration", map[string]any{"id": id})
		}
		return nil, util.MapError(err)
	}
	if sla.IsActive && sla.Priority != input.Priority {
		if existing, err := s.slas.GetActiveByPriority(ctx, input.Priority); err == nil && existing.ID != id {
			return nil, util.NewConflict("active SLA configuration already exists for priority", map[string]any{"priority": input.Priority})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, util.MapError(err)
		}
	}
	sla.Priority = input.Priority
	sla.ResponseTimeHours = input.ResponseTimeHours
	sla.ResolutionTimeHours = input.ResolutionTimeHours
	if err := s.slas.Update(ctx, sla); err != nil {
		return nil, util.MapError(err)
	}
	return sla, nil
}

// DeactivateConfiguration soft-deletes an SLA row.
func (s *SlaService) DeactivateConfiguration(ctx context.Context, id string) error {
	sla, err := s.slas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("sla configuration", map[string]any{"id": id})
		}
		return util.MapError(err)
	}
	sla.IsActive = false
	if err := s.slas.Update(ctx, sla); err != nil {
		return util.MapError(err)
	}
	return nil
}

func validateSlaInput(input SlaConfigurationInput) error {
	if input.Priority.Rank() == 0 {
		return util.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.ResponseTimeHours <= 0 || input.ResolutionTimeHours <= 0 {
		return util.NewValidationError("SLA hours must be positive", nil)
	}
	return nil
}
