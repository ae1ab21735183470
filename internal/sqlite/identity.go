package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crispdev/crisp/internal/repository"
)

// IdentityRepository implements interview.IdentityRepository for SQLite
type IdentityRepository struct {
	db *DB
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Register maps an email to an interview id. Last writer wins.
func (r *IdentityRepository) Register(ctx context.Context, email, interviewID string) error {
	query := `
		INSERT INTO identity_index (email, interview_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET interview_id = excluded.interview_id
	`
	_, err := r.db.ExecContext(ctx, query, email, interviewID, time.Now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to register identity: %w", err)
	}
	return nil
}

// Lookup resolves an email to an interview id.
func (r *IdentityRepository) Lookup(ctx context.Context, email string) (string, error) {
	var interviewID string
	err := r.db.QueryRowContext(ctx,
		`SELECT interview_id FROM identity_index WHERE email = ?`, email).Scan(&interviewID)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}
	return interviewID, nil
}
