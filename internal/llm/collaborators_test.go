package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crispdev/crisp/internal/domain/interview"
)

// fakeClient returns canned responses and records prompts.
type fakeClient struct {
	response string
	err      error
	prompts  []string
	calls    int
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f.GenerateContent(ctx, prompt)
}

func (f *fakeClient) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractorParsesFields(t *testing.T) {
	client := &fakeClient{response: `{"name": "Alice Jones", "email": "alice@example.com", "phone": "+15550100"}`}
	e := NewExtractor(client, time.Second, testLogger())

	p, err := e.ExtractProfile(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", p.Name)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, "+15550100", p.Phone)
}

func TestExtractorDropsShortFields(t *testing.T) {
	client := &fakeClient{response: `{"name": "A", "email": "", "phone": " "}`}
	e := NewExtractor(client, time.Second, testLogger())

	p, err := e.ExtractProfile(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Empty(t, p.Name)
	assert.Empty(t, p.Email)
	assert.Empty(t, p.Phone)
}

func TestExtractorBadJSON(t *testing.T) {
	client := &fakeClient{response: `not json`}
	e := NewExtractor(client, time.Second, testLogger())

	_, err := e.ExtractProfile(context.Background(), "resume text")
	require.Error(t, err)
}

func TestQuestionerGenerate(t *testing.T) {
	client := &fakeClient{response: "  What is a closure?  \n"}
	q := NewQuestioner(client, time.Second)

	text, err := q.Generate(context.Background(), interview.DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, "What is a closure?", text)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "medium")
	assert.Contains(t, client.prompts[0], "40 seconds")
}

func TestQuestionerEmptyResponse(t *testing.T) {
	client := &fakeClient{response: "   "}
	q := NewQuestioner(client, time.Second)

	_, err := q.Generate(context.Background(), interview.DifficultyEasy)
	require.Error(t, err)
}

func TestQuestionerRetriesOnFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream unavailable")}
	q := NewQuestioner(client, time.Second)

	_, err := q.Generate(context.Background(), interview.DifficultyEasy)
	require.Error(t, err)
	// initial attempt plus bounded retries
	assert.Equal(t, 1+defaultMaxRetries, client.calls)
}

func TestSummarizerClampsAndPads(t *testing.T) {
	client := &fakeClient{response: `{"score": 140, "summary": "Strong fundamentals.", "answer_scores": [90, -5]}`}
	s := NewSummarizer(client, time.Second)

	iv := &interview.Interview{
		Answers: []interview.Answer{
			{Question: "q1", Answer: "a1", TimeLeft: 5},
			{Question: "q2", Answer: "a2", TimeLeft: 0},
			{Question: "q3", Answer: "a3", TimeLeft: 12},
		},
	}

	sum, err := s.Summarize(context.Background(), iv)
	require.NoError(t, err)
	assert.Equal(t, 100, sum.Score)
	assert.Equal(t, "Strong fundamentals.", sum.Text)
	require.Len(t, sum.AnswerScores, 3)
	assert.Equal(t, []int{90, 0, 0}, sum.AnswerScores)
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
}
