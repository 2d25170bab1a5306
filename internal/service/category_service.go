package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// CategoryService manages ticket categories and their optional SLA override.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates the service.
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categoryRepo}
}

// CategoryInput describes a category create or update payload.
type CategoryInput struct {
	Name        string
	Description string
	SlaHours    *int
	IsActive    *bool
}

// CreateCategory adds a category. A positive SlaHours overrides the
// priority-based SLA for every ticket filed under it.
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, util.NewValidationError("category name is required", nil)
	}
	if input.SlaHours != nil && *input.SlaHours <= 0 {
		return nil, util.NewValidationError("sla hours must be positive", map[string]any{"sla_hours": *input.SlaHours})
	}
	category := &domain.Category{
		Name:     name,
		IsActive: true,
		SlaHours: input.SlaHours,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		category.Description = &desc
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, util.MapError(err)
	}
	return category, nil
}

// GetCategory fetches one category.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, util.MapError(err)
	}
	return category, nil
}

// ListCategories returns categories, optionally only active ones.
func (s *CategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	list, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, util.MapError(err)
	}
	return list, nil
}

// UpdateCategory edits a category. Deactivating one stops new tickets from
// using it; existing tickets keep their reference.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		category.Description = &desc
	}
	if input.SlaHours != nil {
		if *input.SlaHours <= 0 {
			return nil, util.NewValidationError("sla hours must be positive", map[string]any{"sla_hours": *input.SlaHours})
		}
		category.SlaHours = input.SlaHours
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, util.MapError(err)
	}
	return category, nil
}
