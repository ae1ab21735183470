package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/intake"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/domain/profile"
	"github.com/crispdev/crisp/internal/domain/session"
	"github.com/crispdev/crisp/internal/repository/memory"
)

type stubExtractor struct {
	profile profile.Profile
}

func (s *stubExtractor) ExtractProfile(_ context.Context, _ string) (profile.Profile, error) {
	return s.profile, nil
}

type stubQuestions struct {
	calls    int
	failures int
}

func (s *stubQuestions) Generate(_ context.Context, difficulty interview.Difficulty) (string, error) {
	if s.failures > 0 {
		s.failures--
		return "", errors.New("generator unavailable")
	}
	s.calls++
	return fmt.Sprintf("%s question %d", difficulty, s.calls), nil
}

type stubSummarizer struct{}

func (s *stubSummarizer) Summarize(_ context.Context, iv *interview.Interview) (interview.Summary, error) {
	scores := make([]int, len(iv.Answers))
	for i := range scores {
		scores[i] = 70
	}
	return interview.Summary{Score: 70, Text: "steady performance", AnswerScores: scores}, nil
}

type apiFixture struct {
	router       http.Handler
	store        *interview.Service
	manager      *session.Manager
	interviewers *interviewer.Service
	tokens       *JWTService
	questions    *stubQuestions
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := interview.NewService(memory.NewInterviewRepository(), memory.NewIdentityRepository(), logger)
	activitySvc := activity.NewService(memory.NewActivityRepository(), logger)
	interviewers := interviewer.NewService(memory.NewInterviewerRepository(), logger)

	questions := &stubQuestions{}
	extractor := &stubExtractor{profile: profile.Profile{
		Name:  "Alice Jones",
		Email: "alice@example.com",
		Phone: "+15550100",
	}}
	manager := session.NewManager(store, activitySvc, questions, &stubSummarizer{}, clock.NewMock(), logger)
	intakeSvc := intake.NewService(store, activitySvc, extractor, questions, logger)
	tokens := NewJWTService("test-secret", time.Hour)

	t.Cleanup(func() { manager.Shutdown(context.Background()) })

	return &apiFixture{
		router:       NewRouter(intakeSvc, store, manager, activitySvc, interviewers, tokens, logger),
		store:        store,
		manager:      manager,
		interviewers: interviewers,
		tokens:       tokens,
		questions:    questions,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) intakeTurn(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/intake", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createInterview(t *testing.T) string {
	t.Helper()
	rec := f.intakeTurn(t, map[string]string{"message": "here is my info"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Outcome   intake.Outcome `json:"outcome"`
		Interview *struct {
			ID      string            `json:"id"`
			Session *session.Snapshot `json:"session"`
		} `json:"interview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, intake.OutcomeCreated, resp.Outcome)
	require.NotNil(t, resp.Interview)
	return resp.Interview.ID
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIntakeCreatesAndStartsSession(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.intakeTurn(t, map[string]string{"message": "here is my info"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ConversationID string         `json:"conversation_id"`
		Outcome        intake.Outcome `json:"outcome"`
		Interview      *struct {
			ID      string             `json:"id"`
			Status  interview.Status   `json:"status"`
			Answers []interview.Answer `json:"answers"`
			Session *session.Snapshot  `json:"session"`
		} `json:"interview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, intake.OutcomeCreated, resp.Outcome)
	assert.NotEmpty(t, resp.ConversationID)
	require.NotNil(t, resp.Interview)
	assert.Equal(t, interview.StatusInProgress, resp.Interview.Status)
	require.Len(t, resp.Interview.Answers, 1)
	require.NotNil(t, resp.Interview.Session)
	assert.Equal(t, session.StateRunning, resp.Interview.Session.State)
	assert.Equal(t, interview.DifficultyEasy.Budget(), resp.Interview.Session.TimeLeft)
}

func TestIntakeRejectsNonPDFResume(t *testing.T) {
	f := newAPIFixture(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("just text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/intake", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerAndSubmitFlow(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createInterview(t)

	rec := f.do(t, http.MethodPost, "/api/interviews/"+id+"/answer", answerRequest{Text: "my answer"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StateRunning, snap.State)
	assert.Equal(t, 2, snap.QuestionNumber)

	iv, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, iv.Answers, 2)
	assert.Equal(t, "my answer", iv.Answers[0].Answer)
}

func TestPauseAndResume(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createInterview(t)

	rec := f.do(t, http.MethodPost, "/api/interviews/"+id+"/pause", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StatePaused, snap.State)

	// answering while paused is rejected
	rec = f.do(t, http.MethodPost, "/api/interviews/"+id+"/answer", answerRequest{Text: "x"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/interviews/"+id+"/resume", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StateRunning, snap.State)
}

func TestSubmitCollaboratorFailureIsBadGateway(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createInterview(t)
	f.questions.failures = 10

	rec := f.do(t, http.MethodPost, "/api/interviews/"+id+"/submit", nil, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetInterview(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createInterview(t)

	rec := f.do(t, http.MethodGet, "/api/interviews/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID      string             `json:"id"`
		Email   string             `json:"email"`
		Session *session.Snapshot  `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)
	require.NotNil(t, resp.Session)
}

func TestGetInterviewNotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/interviews/no-such-id", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginAndDashboard(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.interviewers.EnsureAccount(context.Background(), "admin", "swordfish"))
	id := f.createInterview(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", loginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", loginRequest{Username: "admin", Password: "swordfish"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = f.do(t, http.MethodGet, "/api/interviews", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/interviews?q=alice", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var refs []interview.Ref
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ID)

	rec = f.do(t, http.MethodGet, "/api/interviews?sort=sideways", nil, login.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/interviews/"+id+"/activity", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/interviews/"+id+"/activity", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []activity.ActivityEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.NotEmpty(t, entries)
}

func TestLoginValidation(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/login", loginRequest{Username: "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
