package interview

import "time"

// Status represents the lifecycle status of an interview
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Difficulty is the tier of an interview question. It determines the
// answering time budget and the position of the question in the sequence.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Budget returns the answering time budget in seconds for the tier.
func (d Difficulty) Budget() int {
	switch d {
	case DifficultyMedium:
		return 40
	case DifficultyHard:
		return 60
	default:
		return 20
	}
}

// Valid reports whether the difficulty is a known tier.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// DifficultyFor returns the tier for a 1-indexed question number:
// questions 1-2 are easy, 3-4 medium, 5 and up hard.
func DifficultyFor(questionNumber int) Difficulty {
	switch {
	case questionNumber <= 2:
		return DifficultyEasy
	case questionNumber <= 4:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Answer is one question/response/timer triple within an interview. The last
// element of an interview's answer list is the active one; only its answer
// text and time_left may change.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	TimeLeft int    `json:"time_left"`
	Score    *int   `json:"score,omitempty"`
}

// Interview is one candidate's end-to-end session record.
type Interview struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Status     Status    `json:"status"`
	Answers    []Answer  `json:"answers"`
	FinalScore *int      `json:"final_score,omitempty"`
	AISummary  *string   `json:"ai_summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ActiveAnswer returns the answer record for the question currently being
// asked, or nil when the interview has no answers yet.
func (i *Interview) ActiveAnswer() *Answer {
	if len(i.Answers) == 0 {
		return nil
	}
	return &i.Answers[len(i.Answers)-1]
}

// Ref is a lightweight interview reference for list views.
type Ref struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Status     Status    `json:"status"`
	FinalScore *int      `json:"final_score,omitempty"`
	AISummary  *string   `json:"ai_summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary is the result produced by the summary collaborator at completion.
type Summary struct {
	Score        int    `json:"score"`
	Text         string `json:"summary"`
	AnswerScores []int  `json:"answer_scores,omitempty"`
}

// ScoreSort selects the final-score ordering of a list projection.
type ScoreSort string

const (
	SortNone ScoreSort = ""
	SortAsc  ScoreSort = "asc"
	SortDesc ScoreSort = "desc"
)
