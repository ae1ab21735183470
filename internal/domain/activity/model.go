package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeInterviewCreated ActivityType = "interview_created"
	TypeInterviewResumed ActivityType = "interview_resumed"
	TypeQuestionAsked    ActivityType = "question_asked"
	TypeAnswerSubmitted  ActivityType = "answer_submitted"
	TypeTimerExpired     ActivityType = "timer_expired"
	TypePaused           ActivityType = "paused"
	TypeResumedTimer     ActivityType = "timer_resumed"
	TypeCompleted        ActivityType = "completed"
)

// ActivityEntry represents an event in the per-interview activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	InterviewID  string       `json:"interview_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	InterviewID string
	Limit       int
}
