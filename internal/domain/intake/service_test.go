package intake

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/profile"
	"github.com/crispdev/crisp/internal/repository/memory"
)

// fakeExtractor returns a canned profile per call, in order.
type fakeExtractor struct {
	profiles []profile.Profile
	err      error
	calls    int
}

func (f *fakeExtractor) ExtractProfile(_ context.Context, _ string) (profile.Profile, error) {
	if f.err != nil {
		return profile.Profile{}, f.err
	}
	p := f.profiles[f.calls%len(f.profiles)]
	f.calls++
	return p, nil
}

type fakeQuestioner struct {
	question string
	err      error
}

func (f *fakeQuestioner) Generate(_ context.Context, _ interview.Difficulty) (string, error) {
	return f.question, f.err
}

func newTestService(t *testing.T, extractor ProfileExtractor, questions QuestionGenerator) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	interviews := interview.NewService(memory.NewInterviewRepository(), memory.NewIdentityRepository(), logger)
	activitySvc := activity.NewService(memory.NewActivityRepository(), logger)
	return NewService(interviews, activitySvc, extractor, questions, logger)
}

func TestTurnCompleteProfileCreatesInterview(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones", Email: "alice@example.com", Phone: "+15550100"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "What is React?"})

	result, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	require.NotNil(t, result.Interview)
	assert.Equal(t, interview.StatusInProgress, result.Interview.Status)
	require.Len(t, result.Interview.Answers, 1)
	assert.Equal(t, "What is React?", result.Interview.Answers[0].Question)
	assert.Equal(t, interview.DifficultyEasy.Budget(), result.Interview.Answers[0].TimeLeft)
}

func TestTurnMissingFieldsPrompt(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q"})

	result, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMissingFields, result.Outcome)
	assert.Equal(t, []string{"Email", "Phone"}, result.MissingFields)
	assert.Equal(t, "Please provide Email, Phone.", result.Prompt)
	assert.Nil(t, result.Interview)
	assert.NotEmpty(t, result.ConversationID)
}

func TestTurnAccumulatesAcrossTurns(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones", Email: "alice@example.com"},
		{Phone: "+15550100"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q1"})

	first, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	require.Equal(t, OutcomeMissingFields, first.Outcome)
	assert.Equal(t, []string{"Phone"}, first.MissingFields)

	second, err := svc.Turn(context.Background(), TurnRequest{
		ConversationID: first.ConversationID,
		Message:        "my number is +15550100",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, second.Outcome)
	require.NotNil(t, second.Interview)
	assert.Equal(t, "Alice Jones", second.Interview.Name)
	assert.Equal(t, "+15550100", second.Interview.Phone)
}

func TestTurnResumesUnfinishedInterview(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones", Email: "alice@example.com", Phone: "+15550100"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q1"})

	created, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, created.Outcome)

	again, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "same resume"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeResumed, again.Outcome)
	require.NotNil(t, again.Interview)
	assert.Equal(t, created.Interview.ID, again.Interview.ID)
}

func TestTurnIncompleteProfileDoesNotResume(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones", Email: "alice@example.com", Phone: "+15550100"},
		{Email: "alice@example.com"},
		{Name: "Alice Jones", Phone: "+15550100"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q1"})

	created, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, created.Outcome)

	// knowing the email alone keeps prompting; the index is consulted
	// only once the profile is complete
	partial, err := svc.Turn(context.Background(), TurnRequest{Message: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMissingFields, partial.Outcome)
	assert.Equal(t, []string{"Name", "Phone"}, partial.MissingFields)
	assert.Nil(t, partial.Interview)

	resumed, err := svc.Turn(context.Background(), TurnRequest{
		ConversationID: partial.ConversationID,
		Message:        "Alice Jones, +15550100",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeResumed, resumed.Outcome)
	require.NotNil(t, resumed.Interview)
	assert.Equal(t, created.Interview.ID, resumed.Interview.ID)
}

func TestTurnCompletedEmailIsTerminal(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones", Email: "alice@example.com", Phone: "+15550100"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	interviews := interview.NewService(memory.NewInterviewRepository(), memory.NewIdentityRepository(), logger)
	activitySvc := activity.NewService(memory.NewActivityRepository(), logger)
	svc := NewService(interviews, activitySvc, extractor, &fakeQuestioner{question: "q1"}, logger)

	created, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)
	require.NoError(t, interviews.Complete(context.Background(), created.Interview.ID, interview.Summary{
		Score: 80, Text: "solid",
	}))

	again, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "same resume"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCompleted, again.Outcome)
	require.NotNil(t, again.Interview)
	assert.Equal(t, interview.StatusCompleted, again.Interview.Status)
}

func TestTurnExtractorFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("upstream unavailable")}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q"})

	_, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.Error(t, err)
}

func TestTurnEmptyTurnRepeatsPrompt(t *testing.T) {
	extractor := &fakeExtractor{profiles: []profile.Profile{
		{Name: "Alice Jones"},
	}}
	svc := newTestService(t, extractor, &fakeQuestioner{question: "q"})

	first, err := svc.Turn(context.Background(), TurnRequest{ResumeText: "resume text"})
	require.NoError(t, err)

	second, err := svc.Turn(context.Background(), TurnRequest{ConversationID: first.ConversationID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMissingFields, second.Outcome)
	assert.Equal(t, []string{"Email", "Phone"}, second.MissingFields)
}
