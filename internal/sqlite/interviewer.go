package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/repository"
)

// InterviewerRepository implements interviewer.Repository for SQLite
type InterviewerRepository struct {
	db *DB
}

// NewInterviewerRepository creates a new InterviewerRepository
func NewInterviewerRepository(db *DB) *InterviewerRepository {
	return &InterviewerRepository{db: db}
}

// Create inserts a new interviewer account.
func (r *InterviewerRepository) Create(ctx context.Context, account *interviewer.Interviewer) error {
	query := `
		INSERT INTO interviewers (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create interviewer: %w", err)
	}
	return nil
}

// GetByUsername retrieves an interviewer account by username.
func (r *InterviewerRepository) GetByUsername(ctx context.Context, username string) (*interviewer.Interviewer, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM interviewers
		WHERE username = ?
	`
	var account interviewer.Interviewer
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interviewer: %w", err)
	}
	return &account, nil
}
