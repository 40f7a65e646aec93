package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadSyntheses returns the most recent history records, oldest first.
// A non-positive limit returns every record.
//
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) ReadSyntheses(ctx context.Context, limit int) ([]Synthesis, error) {
	query := `
		SELECT seq, id, question, mode, success, sql_text, error_code, error_msg
		FROM (
			SELECT * FROM syntheses ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
		)
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query syntheses: %w", err)
	}
	defer rows.Close()

	records := []Synthesis{}
	for rows.Next() {
		var rec Synthesis
		var success int
		if err := rows.Scan(
			&rec.Seq,
			&rec.ID,
			&rec.Question,
			&rec.Mode,
			&success,
			&rec.SQL,
			&rec.ErrorCode,
			&rec.ErrorMsg,
		); err != nil {
			return nil, fmt.Errorf("scan synthesis: %w", err)
		}
		rec.Success = success == 1
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate syntheses: %w", err)
	}

	return records, nil
}

// ReadSynthesis returns a single record by request id.
func (s *Store) ReadSynthesis(ctx context.Context, id string) (Synthesis, bool, error) {
	var rec Synthesis
	var success int
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, id, question, mode, success, sql_text, error_code, error_msg
		FROM syntheses WHERE id = ?
	`, id).Scan(
		&rec.Seq,
		&rec.ID,
		&rec.Question,
		&rec.Mode,
		&success,
		&rec.SQL,
		&rec.ErrorCode,
		&rec.ErrorMsg,
	)
	if err != nil {
		if isNoRows(err) {
			return Synthesis{}, false, nil
		}
		return Synthesis{}, false, fmt.Errorf("read synthesis: %w", err)
	}
	rec.Success = success == 1
	return rec, true, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
