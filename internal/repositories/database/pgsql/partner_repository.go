package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	"github.com/mosala/cashdesk_backend/internal/models"
	"github.com/mosala/cashdesk_backend/internal/utils/mapping"
)

type PgxPartnerRepository struct {
	pool Pool
}

// newPgxPartnerRepository creates a new repository for partner service data.
func newPgxPartnerRepository(pool Pool) portsrepo.PartnerRepository {
	return &PgxPartnerRepository{pool: pool}
}

// Ensure PgxPartnerRepository implements portsrepo.PartnerRepository
var _ portsrepo.PartnerRepository = (*PgxPartnerRepository)(nil)

const partnerColumns = `service_id, name, code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanPartner(row pgx.Row) (models.PartnerService, error) {
	var m models.PartnerService
	err := row.Scan(
		&m.ServiceID,
		&m.Name,
		&m.Code,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePartnerService inserts a new partner service.
func (r *PgxPartnerRepository) SavePartnerService(ctx context.Context, service domain.PartnerService) error {
	m := mapping.ToModelPartnerService(service)

	query := `
		INSERT INTO partner_services (` + partnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ServiceID,
		m.Name,
		m.Code,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: partner service with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save partner service %s: %w", m.ServiceID, err)
	}
	return nil
}

// FindPartnerServiceByID retrieves a partner service by its ID.
func (r *PgxPartnerRepository) FindPartnerServiceByID(ctx context.Context, serviceID string) (*domain.PartnerService, error) {
	query := `SELECT ` + partnerColumns + ` FROM partner_services WHERE service_id = $1;`

	m, err := scanPartner(r.pool.QueryRow(ctx, query, serviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find partner service by ID %s: %w", serviceID, err)
	}

	s := mapping.ToDomainPartnerService(m)
	return &s, nil
}

// ListPartnerServices retrieves partner services ordered by name.
func (r *PgxPartnerRepository) ListPartnerServices(ctx context.Context, includeInactive bool) ([]domain.PartnerService, error) {
	query := `SELECT ` + partnerColumns + ` FROM partner_services`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner services: %w", err)
	}
	defer rows.Close()

	services := []domain.PartnerService{}
	for rows.Next() {
		m, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner service row: %w", err)
		}
		services = append(services, mapping.ToDomainPartnerService(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner service rows: %w", err)
	}

	return services, nil
}

// UpdatePartnerService updates the mutable fields of a partner service.
func (r *PgxPartnerRepository) UpdatePartnerService(ctx context.Context, service domain.PartnerService) error {
	m := mapping.ToModelPartnerService(service)

	query := `
		UPDATE partner_services
		SET name = $2, code = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE service_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		m.ServiceID,
		m.Name,
		m.Code,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner service %s: %w", m.ServiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
