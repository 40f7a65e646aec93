package store

import (
	"context"
	"errors"
	"fmt"
)

// Synthesis is one handled request in the history log.
type Synthesis struct {
	Seq       int64  `json:"seq"`
	ID        string `json:"id"`
	Question  string `json:"question"`
	Mode      string `json:"mode"`
	Success   bool   `json:"success"`
	SQL       string `json:"sql,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_message,omitempty"`
}

// ErrReadOnly is returned when writing through a read-only store.
var ErrReadOnly = errors.New("store is read-only")

// WriteSynthesis appends a record to the history log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Seq is assigned by the database.
func (s *Store) WriteSynthesis(ctx context.Context, rec Synthesis) error {
	if s.readOnly {
		return fmt.Errorf("write synthesis: %w", ErrReadOnly)
	}

	success := 0
	if rec.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO syntheses
		(id, question, mode, success, sql_text, error_code, error_msg)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Question,
		rec.Mode,
		success,
		rec.SQL,
		rec.ErrorCode,
		rec.ErrorMsg,
	)
	if err != nil {
		return fmt.Errorf("write synthesis: %w", err)
	}

	return nil
}
