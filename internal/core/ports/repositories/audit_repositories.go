package repositories

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// AuditRepository appends entries to the audit log. Callers treat writes as
// best-effort.
type AuditRepository interface {
	SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}
