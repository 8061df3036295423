package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for session log operations.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	End(ctx context.Context, id string, endedAt time.Time, reason string, durationS float64, preset string) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores session records in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new session log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// newSessionID generates a short unique session identifier.
func newSessionID() string {
	return "ses-" + uuid.NewString()[:8]
}

// Create inserts a new session record. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = newSessionID()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, preset)
		 VALUES (?, ?, ?)`,
		session.ID, session.StartedAt.UTC().Format(time.RFC3339), session.Preset,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// End closes a session record with its end time, reason, and duration.
func (r *SQLiteRepository) End(ctx context.Context, id string, endedAt time.Time, reason string, durationS float64, preset string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET ended_at = ?, reason = ?, duration_s = ?, preset = ?
		 WHERE id = ?`,
		endedAt.UTC().Format(time.RFC3339), reason, durationS, preset, id,
	)
	if err != nil {
		return fmt.Errorf("ending session %q: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking end result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// List returns sessions matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Reason != "" {
		conditions = append(conditions, "reason = ?")
		args = append(args, filter.Reason)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sessions %s", where)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, started_at, ended_at, reason, duration_s, preset FROM sessions %s ORDER BY started_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt string
		var endedAt, reason sql.NullString
		var durationS sql.NullFloat64

		if err := rows.Scan(&s.ID, &startedAt, &endedAt, &reason, &durationS, &s.Preset); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		s.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing session start %q: %w", startedAt, err)
		}
		if endedAt.Valid && endedAt.String != "" {
			s.EndedAt, err = time.Parse(time.RFC3339, endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing session end %q: %w", endedAt.String, err)
			}
		}
		if reason.Valid {
			s.Reason = reason.String
		}
		if durationS.Valid {
			s.DurationS = durationS.Float64
		}

		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	if sessions == nil {
		sessions = []Session{}
	}

	return &ListResult{
		Sessions: sessions,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}
