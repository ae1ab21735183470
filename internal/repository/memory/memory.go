// Package memory provides in-memory repository implementations used by
// tests. They honor the same semantics as the SQLite repositories: active
// answer is the last one, timers never increase, and missing entities
// surface repository.ErrNotFound.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/repository"
)

// InterviewRepository is an in-memory interview.Repository.
type InterviewRepository struct {
	mu         sync.Mutex
	interviews map[string]*interview.Interview
	order      []string
}

// NewInterviewRepository creates an empty in-memory interview repository.
func NewInterviewRepository() *InterviewRepository {
	return &InterviewRepository{interviews: make(map[string]*interview.Interview)}
}

func (r *InterviewRepository) Create(_ context.Context, iv *interview.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interviews[iv.ID]; ok {
		return repository.ErrConflict
	}
	clone := cloneInterview(iv)
	r.interviews[iv.ID] = clone
	r.order = append(r.order, iv.ID)
	return nil
}

func (r *InterviewRepository) Get(_ context.Context, id string) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneInterview(iv), nil
}

func (r *InterviewRepository) List(_ context.Context, opts interview.ListOptions) ([]interview.Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := strings.ToLower(opts.Query)
	var refs []interview.Ref
	for _, id := range r.order {
		iv := r.interviews[id]
		if query != "" &&
			!strings.Contains(strings.ToLower(iv.Name), query) &&
			!strings.Contains(strings.ToLower(iv.Email), query) {
			continue
		}
		refs = append(refs, interview.Ref{
			ID:         iv.ID,
			Name:       iv.Name,
			Email:      iv.Email,
			Status:     iv.Status,
			FinalScore: iv.FinalScore,
			AISummary:  iv.AISummary,
			CreatedAt:  iv.CreatedAt,
		})
	}

	switch opts.Sort {
	case interview.SortAsc:
		sort.SliceStable(refs, func(i, j int) bool { return scoreOf(refs[i]) < scoreOf(refs[j]) })
	case interview.SortDesc:
		sort.SliceStable(refs, func(i, j int) bool { return scoreOf(refs[i]) > scoreOf(refs[j]) })
	}
	return refs, nil
}

func (r *InterviewRepository) AppendAnswer(_ context.Context, interviewID string, ans interview.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[interviewID]
	if !ok {
		return repository.ErrNotFound
	}
	iv.Answers = append(iv.Answers, ans)
	return nil
}

func (r *InterviewRepository) UpdateActiveAnswer(_ context.Context, interviewID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[interviewID]
	if !ok || len(iv.Answers) == 0 {
		return repository.ErrNotFound
	}
	iv.Answers[len(iv.Answers)-1].Answer = text
	return nil
}

func (r *InterviewRepository) UpdateActiveTimer(_ context.Context, interviewID string, timeLeft int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[interviewID]
	if !ok || len(iv.Answers) == 0 {
		return repository.ErrNotFound
	}
	active := &iv.Answers[len(iv.Answers)-1]
	if timeLeft < 0 {
		timeLeft = 0
	}
	if timeLeft < active.TimeLeft {
		active.TimeLeft = timeLeft
	}
	return nil
}

func (r *InterviewRepository) Complete(_ context.Context, interviewID string, finalScore int, summary string, answerScores []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[interviewID]
	if !ok {
		return repository.ErrNotFound
	}
	iv.Status = interview.StatusCompleted
	score := finalScore
	text := summary
	iv.FinalScore = &score
	iv.AISummary = &text
	for i := range answerScores {
		if i < len(iv.Answers) {
			s := answerScores[i]
			iv.Answers[i].Score = &s
		}
	}
	return nil
}

func scoreOf(ref interview.Ref) int {
	if ref.FinalScore == nil {
		return -1
	}
	return *ref.FinalScore
}

func cloneInterview(iv *interview.Interview) *interview.Interview {
	clone := *iv
	clone.Answers = append([]interview.Answer(nil), iv.Answers...)
	return &clone
}

// IdentityRepository is an in-memory interview.IdentityRepository.
type IdentityRepository struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewIdentityRepository creates an empty in-memory identity index.
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{entries: make(map[string]string)}
}

func (r *IdentityRepository) Register(_ context.Context, email, interviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[email] = interviewID
	return nil
}

func (r *IdentityRepository) Lookup(_ context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.entries[email]
	if !ok {
		return "", repository.ErrNotFound
	}
	return id, nil
}

// ActivityRepository is an in-memory activity.Repository.
type ActivityRepository struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
	nextID  int64
}

// NewActivityRepository creates an empty in-memory activity log.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{nextID: 1}
}

func (r *ActivityRepository) Log(_ context.Context, entry *activity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *ActivityRepository) List(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []activity.ActivityEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if opts.InterviewID != "" && entry.InterviewID != opts.InterviewID {
			continue
		}
		out = append(out, entry)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// InterviewerRepository is an in-memory interviewer.Repository.
type InterviewerRepository struct {
	mu       sync.Mutex
	accounts map[string]*interviewer.Interviewer
}

// NewInterviewerRepository creates an empty in-memory account repository.
func NewInterviewerRepository() *InterviewerRepository {
	return &InterviewerRepository{accounts: make(map[string]*interviewer.Interviewer)}
}

func (r *InterviewerRepository) Create(_ context.Context, account *interviewer.Interviewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.Username]; ok {
		return repository.ErrConflict
	}
	clone := *account
	r.accounts[account.Username] = &clone
	return nil
}

func (r *InterviewerRepository) GetByUsername(_ context.Context, username string) (*interviewer.Interviewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *account
	return &clone, nil
}
