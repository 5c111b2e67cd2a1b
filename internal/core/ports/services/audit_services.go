package services

import "context"

// AuditSvcFacade appends to the audit log. Record is best-effort and
// asynchronous: it never blocks or fails the primary operation.
type AuditSvcFacade interface {
	Record(ctx context.Context, table string, operation string, recordID string, newData any, userID string)
}
