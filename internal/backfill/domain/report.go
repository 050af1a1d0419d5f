// Package domain defines the result types of the encryption backfill.
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Tables a backfill walks.
const (
	TableConversations = "conversations"
	TableMessages      = "messages"
)

// MigrationRowError records a row the backfill could not encrypt. The row is
// left untouched and the batch continues.
type MigrationRowError struct {
	Table string
	RowID uuid.UUID
	Err   error
}

func (e *MigrationRowError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Table, e.RowID, e.Err)
}

func (e *MigrationRowError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the wrapped error as a string.
func (e *MigrationRowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Table string `json:"table"`
		RowID string `json:"row_id"`
		Error string `json:"error"`
	}{
		Table: e.Table,
		RowID: e.RowID.String(),
		Error: e.Err.Error(),
	})
}

// Report summarizes one backfill run. Skipped counts rows left in plaintext
// on purpose: guest rows under the plaintext policy and rows another writer
// encrypted first.
type Report struct {
	Owners                 int                  `json:"owners"`
	ConversationsEncrypted int                  `json:"conversations_encrypted"`
	MessagesEncrypted      int                  `json:"messages_encrypted"`
	Skipped                int                  `json:"skipped"`
	Failures               []*MigrationRowError `json:"failures"`
}

// Encrypted returns the number of rows encrypted by the run.
func (r *Report) Encrypted() int {
	return r.ConversationsEncrypted + r.MessagesEncrypted
}

// Merge adds other's counters and failures to r.
func (r *Report) Merge(other *Report) {
	r.Owners += other.Owners
	r.ConversationsEncrypted += other.ConversationsEncrypted
	r.MessagesEncrypted += other.MessagesEncrypted
	r.Skipped += other.Skipped
	r.Failures = append(r.Failures, other.Failures...)
}
