package models

import "time"

// AuditEntry is one append-only row in the audit log.
type AuditEntry struct {
	EntryID   string    `json:"entryID" db:"entry_id"`
	TableName string    `json:"tableName" db:"table_name"`
	Operation string    `json:"operation" db:"operation"`
	RecordID  string    `json:"recordID" db:"record_id"`
	NewData   []byte    `json:"newData" db:"new_data"`
	UserID    string    `json:"userID" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
