package sqlite

import (
	"context"
	"fmt"

	"github.com/crispdev/crisp/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends an activity entry.
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	query := `
		INSERT INTO activity_log (interview_id, activity_type, summary, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.InterviewID, entry.ActivityType, entry.Summary, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns activity entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	query := `
		SELECT id, interview_id, activity_type, summary, created_at
		FROM activity_log
	`
	var args []any
	if opts.InterviewID != "" {
		query += ` WHERE interview_id = ?`
		args = append(args, opts.InterviewID)
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.ActivityEntry
	for rows.Next() {
		var entry activity.ActivityEntry
		if err := rows.Scan(&entry.ID, &entry.InterviewID, &entry.ActivityType, &entry.Summary, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %w", err)
	}

	return entries, nil
}
