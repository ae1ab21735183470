package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/profile"
)

// Extractor pulls candidate contact fields out of resume text.
type Extractor struct {
	client  Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor creates an Extractor backed by the given client.
func NewExtractor(client Client, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, timeout: timeout, logger: logger}
}

const extractPrompt = `Extract the candidate's full name, email, and phone number from the text below.
Return the result strictly as JSON with keys: name, email, phone.
If a field is missing, use an empty string.

Text:
%s`

// ExtractProfile extracts contact fields from resume text. Fields the model
// returns with fewer than two characters are treated as absent.
func (e *Extractor) ExtractProfile(ctx context.Context, text string) (profile.Profile, error) {
	raw, err := withRetry(ctx, e.timeout, func(ctx context.Context) (string, error) {
		return e.client.GenerateJSON(ctx, fmt.Sprintf(extractPrompt, text))
	})
	if err != nil {
		return profile.Profile{}, fmt.Errorf("extracting profile: %w", err)
	}

	var parsed struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return profile.Profile{}, fmt.Errorf("parsing extraction response: %w", err)
	}

	p := profile.Profile{
		Name:  usableField(parsed.Name),
		Email: usableField(parsed.Email),
		Phone: usableField(parsed.Phone),
	}
	e.logger.Debug("extracted profile from resume",
		"has_name", p.Name != "", "has_email", p.Email != "", "has_phone", p.Phone != "")
	return p, nil
}

// usableField drops values too short to be a real name, email, or phone.
func usableField(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return ""
	}
	return v
}

// Questioner generates interview questions for a target difficulty.
type Questioner struct {
	client  Client
	timeout time.Duration
}

// NewQuestioner creates a Questioner backed by the given client.
func NewQuestioner(client Client, timeout time.Duration) *Questioner {
	return &Questioner{client: client, timeout: timeout}
}

const questionPrompt = `Generate a %s interview question for a Full Stack Developer role (React + Node.js).
The question must be answerable within about %d seconds.
Return only the question, no extra text.`

// Generate produces a single question answerable within the difficulty's
// time budget.
func (q *Questioner) Generate(ctx context.Context, difficulty interview.Difficulty) (string, error) {
	prompt := fmt.Sprintf(questionPrompt, difficulty, difficulty.Budget())
	text, err := withRetry(ctx, q.timeout, func(ctx context.Context) (string, error) {
		return q.client.GenerateContent(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("generating %s question: %w", difficulty, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("generating %s question: empty response", difficulty)
	}
	return text, nil
}

// Summarizer produces the final score and summary for a finished interview.
type Summarizer struct {
	client  Client
	timeout time.Duration
}

// NewSummarizer creates a Summarizer backed by the given client.
func NewSummarizer(client Client, timeout time.Duration) *Summarizer {
	return &Summarizer{client: client, timeout: timeout}
}

const summaryPrompt = `You are evaluating an interview.
The candidate's answers are given as an array of objects with {question, answer, time_left, difficulty}.
There are 2 easy, 2 medium, and 2 hard questions.

1. Evaluate the quality of answers and time taken.
2. Give a score out of 100 (weight: easy=20%%, medium=30%%, hard=50%%).
3. Score each answer individually out of 100, in order, as answer_scores.
4. Provide a concise summary (2-3 sentences) describing strengths and weaknesses.

Return strictly in JSON with keys: score, summary, answer_scores.

Interview Data:
%s`

type answerForScoring struct {
	Question   string               `json:"question"`
	Answer     string               `json:"answer"`
	TimeLeft   int                  `json:"time_left"`
	Difficulty interview.Difficulty `json:"difficulty"`
}

// Summarize evaluates the interview's answers and returns the final verdict.
// The returned score is clamped to [0, 100].
func (s *Summarizer) Summarize(ctx context.Context, iv *interview.Interview) (interview.Summary, error) {
	answers := make([]answerForScoring, len(iv.Answers))
	for i, a := range iv.Answers {
		answers[i] = answerForScoring{
			Question:   a.Question,
			Answer:     a.Answer,
			TimeLeft:   a.TimeLeft,
			Difficulty: interview.DifficultyFor(i + 1),
		}
	}

	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return interview.Summary{}, fmt.Errorf("encoding answers: %w", err)
	}

	raw, err := withRetry(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.client.GenerateJSON(ctx, fmt.Sprintf(summaryPrompt, string(data)))
	})
	if err != nil {
		return interview.Summary{}, fmt.Errorf("summarizing interview: %w", err)
	}

	var parsed struct {
		Score        int    `json:"score"`
		Summary      string `json:"summary"`
		AnswerScores []int  `json:"answer_scores"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return interview.Summary{}, fmt.Errorf("parsing summary response: %w", err)
	}

	result := interview.Summary{
		Score:        clampScore(parsed.Score),
		Text:         strings.TrimSpace(parsed.Summary),
		AnswerScores: make([]int, len(iv.Answers)),
	}
	for i := range result.AnswerScores {
		if i < len(parsed.AnswerScores) {
			result.AnswerScores[i] = clampScore(parsed.AnswerScores[i])
		}
	}
	return result, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
