package mocks

import (
	"context"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/stretchr/testify/mock"
)

// InterviewRepository is a testify mock for interview.Repository.
type InterviewRepository struct {
	mock.Mock
}

func (m *InterviewRepository) Create(ctx context.Context, iv *interview.Interview) error {
	args := m.Called(ctx, iv)
	return args.Error(0)
}

func (m *InterviewRepository) Get(ctx context.Context, id string) (*interview.Interview, error) {
	args := m.Called(ctx, id)
	if iv, ok := args.Get(0).(*interview.Interview); ok {
		return iv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InterviewRepository) List(ctx context.Context, opts interview.ListOptions) ([]interview.Ref, error) {
	args := m.Called(ctx, opts)
	if refs, ok := args.Get(0).([]interview.Ref); ok {
		return refs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InterviewRepository) AppendAnswer(ctx context.Context, interviewID string, ans interview.Answer) error {
	args := m.Called(ctx, interviewID, ans)
	return args.Error(0)
}

func (m *InterviewRepository) UpdateActiveAnswer(ctx context.Context, interviewID, text string) error {
	args := m.Called(ctx, interviewID, text)
	return args.Error(0)
}

func (m *InterviewRepository) UpdateActiveTimer(ctx context.Context, interviewID string, timeLeft int) error {
	args := m.Called(ctx, interviewID, timeLeft)
	return args.Error(0)
}

func (m *InterviewRepository) Complete(ctx context.Context, interviewID string, finalScore int, summary string, answerScores []int) error {
	args := m.Called(ctx, interviewID, finalScore, summary, answerScores)
	return args.Error(0)
}

// IdentityRepository is a testify mock for interview.IdentityRepository.
type IdentityRepository struct {
	mock.Mock
}

func (m *IdentityRepository) Register(ctx context.Context, email, interviewID string) error {
	args := m.Called(ctx, email, interviewID)
	return args.Error(0)
}

func (m *IdentityRepository) Lookup(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

// ActivityRepository is a testify mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if entries, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// InterviewerRepository is a testify mock for interviewer.Repository.
type InterviewerRepository struct {
	mock.Mock
}

func (m *InterviewerRepository) Create(ctx context.Context, account *interviewer.Interviewer) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *InterviewerRepository) GetByUsername(ctx context.Context, username string) (*interviewer.Interviewer, error) {
	args := m.Called(ctx, username)
	if account, ok := args.Get(0).(*interviewer.Interviewer); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}
