package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crispdev/crisp/internal/repository"
	"github.com/google/uuid"
)

// Service is the interview store: a fixed command set over interview records
// plus read projections for the dashboard. Mutations assume a single writer
// per interview; the session manager enforces that discipline.
type Service struct {
	interviews Repository
	identity   IdentityRepository
	logger     *slog.Logger
}

// NewService creates a new interview service.
func NewService(interviews Repository, identity IdentityRepository, logger *slog.Logger) *Service {
	return &Service{
		interviews: interviews,
		identity:   identity,
		logger:     logger,
	}
}

// CreateRequest describes an interview creation request. All contact fields
// are required: an interview only comes into existence once the intake
// profile is complete.
type CreateRequest struct {
	Name          string
	Email         string
	Phone         string
	FirstQuestion string
}

// Create creates an in-progress interview seeded with the first easy
// question, then registers the candidate email in the identity index.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Interview, error) {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.FirstQuestion) == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	iv := &Interview{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: StatusInProgress,
		Answers: []Answer{{
			Question: req.FirstQuestion,
			TimeLeft: DifficultyEasy.Budget(),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.interviews.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("creating interview: %w", err)
	}

	// Registration happens after the record exists so a lookup can never
	// resolve to a missing interview.
	if err := s.identity.Register(ctx, iv.Email, iv.ID); err != nil {
		return nil, fmt.Errorf("registering identity: %w", err)
	}

	s.logger.Info("interview created", "id", iv.ID, "email", iv.Email)
	return iv, nil
}

// Get retrieves an interview by ID.
func (s *Service) Get(ctx context.Context, id string) (*Interview, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	iv, err := s.interviews.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading interview: %w", err)
	}
	return iv, nil
}

// FindByEmail resolves a candidate email through the identity index to an
// existing interview. Returns ErrNotFound when the email has no session.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Interview, error) {
	if email == "" {
		return nil, ErrInvalidInput
	}
	id, err := s.identity.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns the dashboard projection: lightweight refs filtered by a
// case-insensitive substring query over name/email, optionally sorted by
// final score. Read-only.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Ref, error) {
	refs, err := s.interviews.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	return refs, nil
}

// AppendQuestion appends a fresh answer record for a newly generated
// question, with the time budget of the given difficulty.
func (s *Service) AppendQuestion(ctx context.Context, id, question string, difficulty Difficulty) (*Answer, error) {
	if id == "" || strings.TrimSpace(question) == "" || !difficulty.Valid() {
		return nil, ErrInvalidInput
	}

	if err := s.ensureInProgress(ctx, id); err != nil {
		return nil, err
	}

	ans := Answer{
		Question: question,
		TimeLeft: difficulty.Budget(),
	}
	if err := s.interviews.AppendAnswer(ctx, id, ans); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appending question: %w", err)
	}
	return &ans, nil
}

// RecordAnswer overwrites the answer text of the active (last) answer.
// Last edit wins.
func (s *Service) RecordAnswer(ctx context.Context, id, text string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.ensureInProgress(ctx, id); err != nil {
		return err
	}
	if err := s.interviews.UpdateActiveAnswer(ctx, id, text); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoActiveAnswer
		}
		return fmt.Errorf("recording answer: %w", err)
	}
	return nil
}

// UpdateTimer persists the remaining seconds for the active answer. The
// stored value only ever decreases and is clamped at zero.
func (s *Service) UpdateTimer(ctx context.Context, id string, timeLeft int) error {
	if id == "" {
		return ErrInvalidInput
	}
	if timeLeft < 0 {
		timeLeft = 0
	}
	if err := s.interviews.UpdateActiveTimer(ctx, id, timeLeft); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoActiveAnswer
		}
		return fmt.Errorf("updating timer: %w", err)
	}
	return nil
}

// Complete marks the interview completed with the collaborator's final score
// and summary, and per-answer scores when provided. Completion is
// irreversible and happens exactly once.
func (s *Service) Complete(ctx context.Context, id string, summary Summary) error {
	if id == "" || summary.Text == "" {
		return ErrInvalidInput
	}
	if err := s.ensureInProgress(ctx, id); err != nil {
		return err
	}
	if err := s.interviews.Complete(ctx, id, summary.Score, summary.Text, summary.AnswerScores); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("completing interview: %w", err)
	}
	s.logger.Info("interview completed", "id", id, "score", summary.Score)
	return nil
}

func (s *Service) ensureInProgress(ctx context.Context, id string) error {
	iv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if iv.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	return nil
}
