package pgsql

import (
	"context"
	"fmt"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	"github.com/mosala/cashdesk_backend/internal/utils/mapping"
)

type PgxAuditRepository struct {
	pool Pool
}

// newPgxAuditRepository creates a new repository for the append-only audit log.
func newPgxAuditRepository(pool Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{pool: pool}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepository
var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditEntry appends one entry. There is no update or delete path.
func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	m := mapping.ToModelAuditEntry(entry)

	query := `
		INSERT INTO audit_log (entry_id, table_name, operation, record_id, new_data, user_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		m.EntryID,
		m.TableName,
		m.Operation,
		m.RecordID,
		m.NewData,
		m.UserID,
		m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry %s: %w", m.EntryID, err)
	}
	return nil
}
