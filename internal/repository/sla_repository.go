package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
)

// SlaConfigurationRepository stores per-priority SLA budgets.
type SlaConfigurationRepository interface {
	Create(ctx context.Context, sla *domain.SlaConfiguration) error
	Update(ctx context.Context, sla *domain.SlaConfiguration) error
	GetByID(ctx context.Context, id string) (*domain.SlaConfiguration, error)
	// GetActiveByPriority returns pgx.ErrNoRows when no active row exists.
	GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SlaConfiguration, error)
	List(ctx context.Context) ([]domain.SlaConfiguration, error)
}

type slaConfigurationRepository struct {
	pool *pgxpool.Pool
}

// NewSlaConfigurationRepository instantiates the repository.
func NewSlaConfigurationRepository(pool *pgxpool.Pool) SlaConfigurationRepository {
	return &slaConfigurationRepository{pool: pool}
}

func (r *slaConfigurationRepository) Create(ctx context.Context, sla *domain.SlaConfiguration) error {
	const query = `
        INSERT INTO sla_configurations (priority, response_time_hours, resolution_time_hours, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		sla.Priority,
		sla.ResponseTimeHours,
		sla.ResolutionTimeHours,
		sla.IsActive,
	).Scan(&sla.ID, &sla.CreatedAt)
}

func (r *slaConfigurationRepository) Update(ctx context.Context, sla *domain.SlaConfiguration) error {
	const query = `
        UPDATE sla_configurations
        SET priority=$1, response_time_hours=$2, resolution_time_hours=$3, is_active=$4
        WHERE id=$5`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		sla.Priority,
		sla.ResponseTimeHours,
		sla.ResolutionTimeHours,
		sla.IsActive,
		sla.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaConfigurationRepository) GetByID(ctx context.Context, id string) (*domain.SlaConfiguration, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, is_active, created_at
        FROM sla_configurations WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *slaConfigurationRepository) GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SlaConfiguration, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, is_active, created_at
        FROM sla_configurations WHERE priority=$1 AND is_active=TRUE`
	return r.fetchSingle(ctx, query, priority)
}

func (r *slaConfigurationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.SlaConfiguration, error) {
	var sla domain.SlaConfiguration
	if err := querier(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&sla.ID,
		&sla.Priority,
		&sla.ResponseTimeHours,
		&sla.ResolutionTimeHours,
		&sla.IsActive,
		&sla.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sla, nil
}

func (r *slaConfigurationRepository) List(ctx context.Context) ([]domain.SlaConfiguration, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, is_active, created_at
        FROM sla_configurations ORDER BY priority ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaConfiguration
	for rows.Next() {
		var sla domain.SlaConfiguration
		if err := rows.Scan(
			&sla.ID,
			&sla.Priority,
			&sla.ResponseTimeHours,
			&sla.ResolutionTimeHours,
			&sla.IsActive,
			&sla.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sla)
	}
	return result, rows.Err()
}
