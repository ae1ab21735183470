package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidInput indicates invalid activity input.
var ErrInvalidInput = errors.New("invalid activity input")

// Repository provides activity log persistence.
type Repository interface {
	Log(ctx context.Context, entry *ActivityEntry) error
	List(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error)
}

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record logs an activity entry with the current timestamp if missing.
// Logging never fails the surrounding operation; errors are reported and
// swallowed.
func (s *Service) Record(ctx context.Context, interviewID string, activityType ActivityType, summary string) {
	entry := &ActivityEntry{
		InterviewID:  interviewID,
		ActivityType: activityType,
		Summary:      summary,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "interview_id", interviewID, "type", activityType, "error", err)
	}
}

// ForInterview lists activity entries for one interview, newest first.
func (s *Service) ForInterview(ctx context.Context, interviewID string, limit int) ([]ActivityEntry, error) {
	if interviewID == "" {
		return nil, ErrInvalidInput
	}
	entries, err := s.repo.List(ctx, ListActivityOptions{InterviewID: interviewID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
