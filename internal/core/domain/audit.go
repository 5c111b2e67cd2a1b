package domain

import "time"

// AuditEntry is one append-only record of a data mutation. Writes are
// best-effort; a failed audit write never rolls back the primary operation.
type AuditEntry struct {
	EntryID   string    `json:"entryID"`
	Table     string    `json:"table"`
	Operation string    `json:"operation"` // INSERT, UPDATE, DELETE
	RecordID  string    `json:"recordID"`
	NewData   []byte    `json:"newData,omitempty"` // JSON snapshot
	UserID    string    `json:"userID"`
	Timestamp time.Time `json:"timestamp"`
}
