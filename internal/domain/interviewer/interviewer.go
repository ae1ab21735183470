// Package interviewer manages dashboard accounts for interviewers.
package interviewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crispdev/crisp/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput indicates invalid account input.
	ErrInvalidInput = errors.New("invalid interviewer input")
)

// Interviewer is a dashboard account.
type Interviewer struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository provides interviewer account persistence.
type Repository interface {
	Create(ctx context.Context, iv *Interviewer) error
	GetByUsername(ctx context.Context, username string) (*Interviewer, error)
}

// Service handles interviewer account operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new interviewer service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Authenticate verifies a username/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Interviewer, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading interviewer: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// EnsureAccount creates the account if the username is not yet registered.
// Used to seed the configured admin account at startup.
func (s *Service) EnsureAccount(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("loading interviewer: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	account := &Interviewer{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return fmt.Errorf("creating interviewer: %w", err)
	}
	s.logger.Info("interviewer account created", "username", username)
	return nil
}
