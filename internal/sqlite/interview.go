package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/repository"
)

// InterviewRepository implements interview.Repository for SQLite
type InterviewRepository struct {
	db *DB
}

// NewInterviewRepository creates a new InterviewRepository
func NewInterviewRepository(db *DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// Create inserts a new interview together with its seeded answers.
func (r *InterviewRepository) Create(ctx context.Context, iv *interview.Interview) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO interviews (
			id, name, email, phone, status, final_score, ai_summary,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		iv.ID,
		iv.Name,
		iv.Email,
		iv.Phone,
		iv.Status,
		iv.FinalScore,
		iv.AISummary,
		iv.CreatedAt,
		iv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create interview: %w", err)
	}

	for i, ans := range iv.Answers {
		if err := insertAnswer(ctx, tx, iv.ID, i, ans); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interview: %w", err)
	}
	return nil
}

func insertAnswer(ctx context.Context, tx *sql.Tx, interviewID string, position int, ans interview.Answer) error {
	query := `
		INSERT INTO answers (interview_id, position, question, answer, time_left, score)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var score sql.NullInt64
	if ans.Score != nil {
		score = sql.NullInt64{Int64: int64(*ans.Score), Valid: true}
	}
	_, err := tx.ExecContext(ctx, query,
		interviewID,
		position,
		ans.Question,
		ans.Answer,
		ans.TimeLeft,
		score,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// Get retrieves an interview with its full ordered answer history.
func (r *InterviewRepository) Get(ctx context.Context, id string) (*interview.Interview, error) {
	query := `
		SELECT id, name, email, phone, status, final_score, ai_summary,
		       created_at, updated_at
		FROM interviews
		WHERE id = ?
	`

	var iv interview.Interview
	var finalScore sql.NullInt64
	var aiSummary sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&iv.ID,
		&iv.Name,
		&iv.Email,
		&iv.Phone,
		&iv.Status,
		&finalScore,
		&aiSummary,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	if finalScore.Valid {
		score := int(finalScore.Int64)
		iv.FinalScore = &score
	}
	if aiSummary.Valid {
		iv.AISummary = &aiSummary.String
	}

	answers, err := r.getAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	iv.Answers = answers

	return &iv, nil
}

// List returns interview refs matched by a case-insensitive substring query
// over name or email, optionally ordered by final score.
func (r *InterviewRepository) List(ctx context.Context, opts interview.ListOptions) ([]interview.Ref, error) {
	query := `
		SELECT id, name, email, status, final_score, ai_summary, created_at
		FROM interviews
	`
	var args []any
	if opts.Query != "" {
		query += ` WHERE lower(name) LIKE ? OR lower(email) LIKE ?`
		pattern := "%" + strings.ToLower(opts.Query) + "%"
		args = append(args, pattern, pattern)
	}

	switch opts.Sort {
	case interview.SortAsc:
		query += ` ORDER BY final_score IS NULL, final_score ASC`
	case interview.SortDesc:
		query += ` ORDER BY final_score IS NULL, final_score DESC`
	default:
		query += ` ORDER BY created_at ASC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var refs []interview.Ref
	for rows.Next() {
		var ref interview.Ref
		var finalScore sql.NullInt64
		var aiSummary sql.NullString
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email, &ref.Status, &finalScore, &aiSummary, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview ref: %w", err)
		}
		if finalScore.Valid {
			score := int(finalScore.Int64)
			ref.FinalScore = &score
		}
		if aiSummary.Valid {
			ref.AISummary = &aiSummary.String
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interviews: %w", err)
	}

	return refs, nil
}

// AppendAnswer appends an answer record after the current last position.
func (r *InterviewRepository) AppendAnswer(ctx context.Context, interviewID string, ans interview.Answer) error {
	query := `
		INSERT INTO answers (interview_id, position, question, answer, time_left, score)
		SELECT ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?, ?
		FROM answers WHERE interview_id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		interviewID, ans.Question, ans.Answer, ans.TimeLeft, ans.Score, interviewID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to append answer: %w", err)
	}
	return r.touch(ctx, interviewID)
}

// UpdateActiveAnswer overwrites the answer text of the last answer record.
func (r *InterviewRepository) UpdateActiveAnswer(ctx context.Context, interviewID, text string) error {
	query := `
		UPDATE answers
		SET answer = ?
		WHERE interview_id = ?
		  AND position = (SELECT MAX(position) FROM answers WHERE interview_id = ?)
	`
	result, err := r.db.ExecContext(ctx, query, text, interviewID, interviewID)
	if err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}
	return r.requireRows(ctx, result, interviewID)
}

// UpdateActiveTimer stores the remaining seconds for the last answer record.
// The stored value is clamped to [0, current]: it never increases.
func (r *InterviewRepository) UpdateActiveTimer(ctx context.Context, interviewID string, timeLeft int) error {
	query := `
		UPDATE answers
		SET time_left = max(0, min(time_left, ?))
		WHERE interview_id = ?
		  AND position = (SELECT MAX(position) FROM answers WHERE interview_id = ?)
	`
	result, err := r.db.ExecContext(ctx, query, timeLeft, interviewID, interviewID)
	if err != nil {
		return fmt.Errorf("failed to update timer: %w", err)
	}
	return r.requireRows(ctx, result, interviewID)
}

// Complete marks the interview completed, stores the final score and
// summary, and records per-answer scores when provided.
func (r *InterviewRepository) Complete(ctx context.Context, interviewID string, finalScore int, summary string, answerScores []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE interviews
		SET status = ?, final_score = ?, ai_summary = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		interview.StatusCompleted, finalScore, summary, time.Now(), interviewID)
	if err != nil {
		return fmt.Errorf("failed to complete interview: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	for position, score := range answerScores {
		_, err := tx.ExecContext(ctx,
			`UPDATE answers SET score = ? WHERE interview_id = ? AND position = ?`,
			score, interviewID, position)
		if err != nil {
			return fmt.Errorf("failed to store answer score: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

func (r *InterviewRepository) getAnswers(ctx context.Context, interviewID string) ([]interview.Answer, error) {
	query := `
		SELECT question, answer, time_left, score
		FROM answers
		WHERE interview_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	var answers []interview.Answer
	for rows.Next() {
		var ans interview.Answer
		var score sql.NullInt64
		if err := rows.Scan(&ans.Question, &ans.Answer, &ans.TimeLeft, &score); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if score.Valid {
			s := int(score.Int64)
			ans.Score = &s
		}
		answers = append(answers, ans)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	return answers, nil
}

func (r *InterviewRepository) requireRows(ctx context.Context, result sql.Result, interviewID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return r.touch(ctx, interviewID)
}

func (r *InterviewRepository) touch(ctx context.Context, interviewID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interviews SET updated_at = ? WHERE id = ?`, time.Now(), interviewID)
	if err != nil {
		return fmt.Errorf("failed to touch interview: %w", err)
	}
	return nil
}
