// Package intake runs the pre-interview conversation: collect a complete
// contact profile from the resume and chat turns, then hand off to a new or
// resumed interview.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/profile"
)

// ProfileExtractor pulls contact fields out of free text.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, text string) (profile.Profile, error)
}

// QuestionGenerator produces an interview question for a difficulty tier.
type QuestionGenerator interface {
	Generate(ctx context.Context, difficulty interview.Difficulty) (string, error)
}

// Outcome classifies the result of one intake turn.
type Outcome string

const (
	// OutcomeMissingFields means the profile is still incomplete and the
	// candidate should be prompted for the listed fields.
	OutcomeMissingFields Outcome = "missing-fields"
	// OutcomeCreated means a new interview was created for the candidate.
	OutcomeCreated Outcome = "created"
	// OutcomeResumed means the candidate has an unfinished interview to
	// pick back up.
	OutcomeResumed Outcome = "resumed"
	// OutcomeAlreadyCompleted means the candidate already finished an
	// interview with this email.
	OutcomeAlreadyCompleted Outcome = "already-completed"
)

// TurnRequest is one intake conversation turn. ResumeText carries extracted
// resume text on the first turn; Message carries a chat reply on later turns.
type TurnRequest struct {
	ConversationID string
	Message        string
	ResumeText     string
}

// TurnResult is the outcome of one intake turn. Interview is set for the
// created, resumed, and already-completed outcomes.
type TurnResult struct {
	ConversationID string
	Outcome        Outcome
	MissingFields  []string
	Prompt         string
	Profile        profile.Profile
	Interview      *interview.Interview
}

// Service drives intake conversations. Conversation state lives in memory;
// an abandoned conversation simply never produces an interview.
type Service struct {
	interviews *interview.Service
	activity   *activity.Service
	extractor  ProfileExtractor
	questions  QuestionGenerator
	logger     *slog.Logger

	mu            sync.Mutex
	conversations map[string]profile.Profile
}

// NewService creates a new intake service.
func NewService(
	interviews *interview.Service,
	activitySvc *activity.Service,
	extractor ProfileExtractor,
	questions QuestionGenerator,
	logger *slog.Logger,
) *Service {
	return &Service{
		interviews:    interviews,
		activity:      activitySvc,
		extractor:     extractor,
		questions:     questions,
		logger:        logger,
		conversations: make(map[string]profile.Profile),
	}
}

// Turn processes one intake turn: extract fields from whatever text the turn
// carries, merge them into the conversation profile, and either prompt for
// what is still missing or hand off to an interview.
func (s *Service) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	convID, known := s.loadConversation(req.ConversationID)

	text := strings.TrimSpace(req.ResumeText)
	if text == "" {
		text = strings.TrimSpace(req.Message)
	}
	if text == "" && !known.Complete() {
		return s.missingFieldsResult(convID, known), nil
	}

	if text != "" {
		extracted, err := s.extractor.ExtractProfile(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("extracting contact fields: %w", err)
		}
		known = profile.Merge(known, extracted)
	}

	if !known.Complete() {
		s.saveConversation(convID, known)
		return s.missingFieldsResult(convID, known), nil
	}

	// the identity index is only consulted once the profile is complete; an
	// existing interview for the email always wins over creating a fresh one
	if result, err := s.resolveExisting(ctx, convID, known); result != nil || err != nil {
		return result, err
	}

	return s.createInterview(ctx, convID, known)
}

// resolveExisting checks the identity index for the conversation's email.
// A nil, nil return means no existing interview and intake should proceed.
func (s *Service) resolveExisting(ctx context.Context, convID string, known profile.Profile) (*TurnResult, error) {
	existing, err := s.interviews.FindByEmail(ctx, known.Email)
	if errors.Is(err, interview.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving candidate email: %w", err)
	}

	s.dropConversation(convID)

	if existing.Status == interview.StatusCompleted {
		return &TurnResult{
			ConversationID: convID,
			Outcome:        OutcomeAlreadyCompleted,
			Prompt:         "You have already completed an interview with this email.",
			Profile:        known,
			Interview:      existing,
		}, nil
	}

	s.activity.Record(ctx, existing.ID, activity.TypeInterviewResumed,
		fmt.Sprintf("%s returned to an unfinished interview", existing.Name))
	s.logger.Info("interview resumed via intake", "id", existing.ID, "email", existing.Email)

	return &TurnResult{
		ConversationID: convID,
		Outcome:        OutcomeResumed,
		Prompt:         "Welcome back! Your interview will resume where you left off.",
		Profile:        known,
		Interview:      existing,
	}, nil
}

func (s *Service) createInterview(ctx context.Context, convID string, known profile.Profile) (*TurnResult, error) {
	question, err := s.questions.Generate(ctx, interview.DifficultyEasy)
	if err != nil {
		return nil, fmt.Errorf("generating first question: %w", err)
	}

	iv, err := s.interviews.Create(ctx, interview.CreateRequest{
		Name:          known.Name,
		Email:         known.Email,
		Phone:         known.Phone,
		FirstQuestion: question,
	})
	if err != nil {
		return nil, fmt.Errorf("creating interview: %w", err)
	}

	s.dropConversation(convID)
	s.activity.Record(ctx, iv.ID, activity.TypeInterviewCreated,
		fmt.Sprintf("Interview created for %s", iv.Name))
	s.activity.Record(ctx, iv.ID, activity.TypeQuestionAsked, "Question 1 asked (easy)")

	return &TurnResult{
		ConversationID: convID,
		Outcome:        OutcomeCreated,
		Profile:        known,
		Interview:      iv,
	}, nil
}

func (s *Service) missingFieldsResult(convID string, known profile.Profile) *TurnResult {
	missing := known.MissingFields()
	return &TurnResult{
		ConversationID: convID,
		Outcome:        OutcomeMissingFields,
		MissingFields:  missing,
		Prompt:         fmt.Sprintf("Please provide %s.", strings.Join(missing, ", ")),
		Profile:        known,
	}
}

func (s *Service) loadConversation(id string) (string, profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	return id, s.conversations[id]
}

func (s *Service) saveConversation(id string, p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = p
}

func (s *Service) dropConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}
