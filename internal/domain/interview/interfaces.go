package interview

import "context"

// Repository provides interview persistence.
type Repository interface {
	Create(ctx context.Context, iv *Interview) error
	Get(ctx context.Context, id string) (*Interview, error)
	List(ctx context.Context, opts ListOptions) ([]Ref, error)
	AppendAnswer(ctx context.Context, interviewID string, ans Answer) error
	UpdateActiveAnswer(ctx context.Context, interviewID, text string) error
	UpdateActiveTimer(ctx context.Context, interviewID string, timeLeft int) error
	Complete(ctx context.Context, interviewID string, finalScore int, summary string, answerScores []int) error
}

// IdentityRepository provides the email-to-interview lookup used to detect
// returning candidates.
type IdentityRepository interface {
	Register(ctx context.Context, email, interviewID string) error
	Lookup(ctx context.Context, email string) (string, error)
}

// ListOptions provides filtering options for the dashboard projection.
type ListOptions struct {
	// Query filters by case-insensitive substring match on name or email.
	Query string
	// Sort orders results by final score; SortNone keeps insertion order.
	Sort ScoreSort
}
