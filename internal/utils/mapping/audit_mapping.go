package mapping

import (
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to its model
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		EntryID:   d.EntryID,
		TableName: d.Table,
		Operation: d.Operation,
		RecordID:  d.RecordID,
		NewData:   d.NewData,
		UserID:    d.UserID,
		Timestamp: d.Timestamp,
	}
}

// ToDomainAuditEntry converts a model AuditEntry to its domain form
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		EntryID:   m.EntryID,
		Table:     m.TableName,
		Operation: m.Operation,
		RecordID:  m.RecordID,
		NewData:   m.NewData,
		UserID:    m.UserID,
		Timestamp: m.Timestamp,
	}
}
