package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

const auditWriteTimeout = 5 * time.Second

// auditService appends to the audit log asynchronously. A lost audit entry is
// logged and forgotten; it never fails or delays the operation it describes.
type auditService struct {
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, table string, operation string, recordID string, newData any, userID string) {
	if s.auditRepo == nil {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	var payload []byte
	if newData != nil {
		data, err := json.Marshal(newData)
		if err != nil {
			logger.Warn("Failed to marshal audit payload",
				slog.String("table", table), slog.String("record_id", recordID), slog.String("error", err.Error()))
		} else {
			payload = data
		}
	}

	entry := domain.AuditEntry{
		EntryID:   uuid.NewString(),
		Table:     table,
		Operation: operation,
		RecordID:  recordID,
		NewData:   payload,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}

	// The write outlives the request: a client disconnect must not cancel it.
	detached := context.WithoutCancel(ctx)
	go func() {
		writeCtx, cancel := context.WithTimeout(detached, auditWriteTimeout)
		defer cancel()
		if err := s.auditRepo.SaveAuditEntry(writeCtx, entry); err != nil {
			logger.Warn("Failed to record audit entry",
				slog.String("table", table), slog.String("record_id", recordID), slog.String("error", err.Error()))
		}
	}()
}
