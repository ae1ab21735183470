// Package session runs live interview sessions: one engine per attached
// interview owns the countdown timer, answer sync, and question advancement.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
)

// State is the engine lifecycle state.
type State string

const (
	// StateRunning means the countdown is ticking and input is accepted.
	StateRunning State = "running"
	// StatePaused means the countdown is frozen.
	StatePaused State = "paused"
	// StateAwaitingAdvance means a question transition is in flight and
	// all candidate input is rejected.
	StateAwaitingAdvance State = "awaiting-advance"
	// StateCompleted means the interview is finished.
	StateCompleted State = "completed"
)

// QuestionGenerator produces an interview question for a difficulty tier.
type QuestionGenerator interface {
	Generate(ctx context.Context, difficulty interview.Difficulty) (string, error)
}

// Summarizer evaluates a finished interview.
type Summarizer interface {
	Summarize(ctx context.Context, iv *interview.Interview) (interview.Summary, error)
}

const (
	maxQuestions     = 6
	debounceInterval = 2 * time.Second
)

// Snapshot is a point-in-time view of the engine for transport responses.
type Snapshot struct {
	InterviewID    string `json:"interview_id"`
	State          State  `json:"state"`
	TimeLeft       int    `json:"time_left"`
	QuestionNumber int    `json:"question_number"`
}

// Engine drives one interview session. It is the single writer for its
// interview record; all mutations flow through it while it is attached.
type Engine struct {
	interviewID string
	store       *interview.Service
	activity    *activity.Service
	questions   QuestionGenerator
	summarizer  Summarizer
	clk         clock.Clock
	logger      *slog.Logger

	mu            sync.Mutex
	state         State
	timeLeft      int
	questionNum   int
	pendingAnswer string
	dirty         bool
	debounce      *clock.Timer
	needAdvance   bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newEngine(
	iv *interview.Interview,
	store *interview.Service,
	activitySvc *activity.Service,
	questions QuestionGenerator,
	summarizer Summarizer,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		interviewID: iv.ID,
		store:       store,
		activity:    activitySvc,
		questions:   questions,
		summarizer:  summarizer,
		clk:         clk,
		logger:      logger.With("interview_id", iv.ID),
		state:       StatePaused,
		questionNum: len(iv.Answers),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	if active := iv.ActiveAnswer(); active != nil {
		e.timeLeft = active.TimeLeft
	}
	go e.run()
	return e
}

// run ticks the countdown once per second until the engine is closed. Ticks
// are no-ops unless the engine is running.
func (e *Engine) run() {
	defer close(e.done)
	ticker := e.clk.Ticker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.onTick(context.Background())
		}
	}
}

// onTick decrements and persists the countdown, expiring the active question
// at zero.
func (e *Engine) onTick(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.timeLeft--
	if e.timeLeft < 0 {
		e.timeLeft = 0
	}
	timeLeft := e.timeLeft
	expired := timeLeft == 0
	if expired {
		e.state = StateAwaitingAdvance
	}
	e.mu.Unlock()

	if err := e.store.UpdateTimer(ctx, e.interviewID, timeLeft); err != nil {
		e.logger.Warn("persisting timer failed", "error", err)
	}
	if !expired {
		return
	}

	if err := e.flushAnswer(ctx); err != nil {
		e.logger.Warn("flushing answer on expiry failed", "error", err)
	}
	e.activity.Record(ctx, e.interviewID, activity.TypeTimerExpired,
		fmt.Sprintf("Time ran out on question %d", e.currentQuestion()))
	if err := e.advance(ctx); err != nil {
		e.logger.Error("advancing after expiry failed", "error", err)
	}
}

// UpdateAnswer stores the latest answer text and schedules a debounced write.
// The last update wins; the pending text is force-flushed on submit, pause,
// expiry, and detach.
func (e *Engine) UpdateAnswer(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureRunningLocked(); err != nil {
		return err
	}
	e.pendingAnswer = text
	e.dirty = true
	if e.debounce == nil {
		e.debounce = e.clk.AfterFunc(debounceInterval, func() {
			if err := e.flushAnswer(context.Background()); err != nil {
				e.logger.Warn("debounced answer flush failed", "error", err)
			}
		})
	} else {
		e.debounce.Reset(debounceInterval)
	}
	return nil
}

// flushAnswer persists the pending answer text, if any.
func (e *Engine) flushAnswer(ctx context.Context) error {
	e.mu.Lock()
	if !e.dirty {
		e.mu.Unlock()
		return nil
	}
	text := e.pendingAnswer
	e.dirty = false
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.mu.Unlock()

	if err := e.store.RecordAnswer(ctx, e.interviewID, text); err != nil {
		// keep the text pending for the next flush
		e.mu.Lock()
		e.dirty = true
		e.mu.Unlock()
		return fmt.Errorf("syncing answer: %w", err)
	}
	return nil
}

// Submit finalizes the active answer and advances to the next question or,
// after the last question, to the final summary. Submitting is allowed from
// both running and paused.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateCompleted:
		e.mu.Unlock()
		return ErrCompleted
	case StateAwaitingAdvance:
		e.mu.Unlock()
		return ErrAdvancing
	}
	e.state = StateAwaitingAdvance
	timeLeft := e.timeLeft
	e.mu.Unlock()

	if err := e.flushAnswer(ctx); err != nil {
		return e.failAdvance(err)
	}
	if err := e.store.UpdateTimer(ctx, e.interviewID, timeLeft); err != nil {
		e.logger.Warn("persisting timer on submit failed", "error", err)
	}
	e.activity.Record(ctx, e.interviewID, activity.TypeAnswerSubmitted,
		fmt.Sprintf("Answer submitted for question %d", e.currentQuestion()))
	return e.advance(ctx)
}

// Pause freezes the countdown. Pausing an already paused session is a no-op.
func (e *Engine) Pause(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateCompleted:
		e.mu.Unlock()
		return ErrCompleted
	case StateAwaitingAdvance:
		e.mu.Unlock()
		return ErrAdvancing
	case StatePaused:
		e.mu.Unlock()
		return nil
	}
	e.state = StatePaused
	timeLeft := e.timeLeft
	e.mu.Unlock()

	if err := e.flushAnswer(ctx); err != nil {
		e.logger.Warn("flushing answer on pause failed", "error", err)
	}
	if err := e.store.UpdateTimer(ctx, e.interviewID, timeLeft); err != nil {
		e.logger.Warn("persisting timer on pause failed", "error", err)
	}
	e.activity.Record(ctx, e.interviewID, activity.TypePaused, "Interview paused")
	return nil
}

// Resume restarts the countdown. If the last question transition failed, it
// retries the transition instead.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateCompleted:
		e.mu.Unlock()
		return ErrCompleted
	case StateAwaitingAdvance:
		e.mu.Unlock()
		return ErrAdvancing
	case StateRunning:
		e.mu.Unlock()
		return nil
	}
	if e.needAdvance {
		e.state = StateAwaitingAdvance
		e.mu.Unlock()
		return e.advance(ctx)
	}
	e.state = StateRunning
	e.mu.Unlock()

	e.activity.Record(ctx, e.interviewID, activity.TypeResumedTimer, "Interview resumed")
	return nil
}

// advance loads the interview and either asks the next question or, after the
// sixth answer, completes with the final summary. Collaborator failure parks
// the engine in paused with the transition marked for retry.
func (e *Engine) advance(ctx context.Context) error {
	iv, err := e.store.Get(ctx, e.interviewID)
	if err != nil {
		return e.failAdvance(err)
	}
	if iv.Status == interview.StatusCompleted {
		e.setCompleted()
		return nil
	}

	if len(iv.Answers) >= maxQuestions {
		return e.complete(ctx, iv)
	}
	return e.askNext(ctx, len(iv.Answers)+1)
}

func (e *Engine) askNext(ctx context.Context, questionNumber int) error {
	difficulty := interview.DifficultyFor(questionNumber)
	question, err := e.questions.Generate(ctx, difficulty)
	if err != nil {
		return e.failAdvance(err)
	}
	if _, err := e.store.AppendQuestion(ctx, e.interviewID, question, difficulty); err != nil {
		return e.failAdvance(err)
	}
	e.activity.Record(ctx, e.interviewID, activity.TypeQuestionAsked,
		fmt.Sprintf("Question %d asked (%s)", questionNumber, difficulty))

	e.mu.Lock()
	e.questionNum = questionNumber
	e.timeLeft = difficulty.Budget()
	e.state = StateRunning
	e.needAdvance = false
	e.mu.Unlock()

	e.logger.Info("question asked", "number", questionNumber, "difficulty", difficulty)
	return nil
}

func (e *Engine) complete(ctx context.Context, iv *interview.Interview) error {
	summary, err := e.summarizer.Summarize(ctx, iv)
	if err != nil {
		return e.failAdvance(err)
	}
	if err := e.store.Complete(ctx, e.interviewID, summary); err != nil {
		return e.failAdvance(err)
	}
	e.activity.Record(ctx, e.interviewID, activity.TypeCompleted,
		fmt.Sprintf("Interview completed with score %d", summary.Score))
	e.setCompleted()
	return nil
}

// failAdvance parks the engine in paused after a failed transition so the
// candidate can retry by resuming, instead of being stuck mid-advance.
func (e *Engine) failAdvance(err error) error {
	e.mu.Lock()
	e.state = StatePaused
	e.needAdvance = true
	e.mu.Unlock()
	e.logger.Error("question transition failed", "error", err)
	return fmt.Errorf("advancing interview: %w", err)
}

func (e *Engine) setCompleted() {
	e.mu.Lock()
	e.state = StateCompleted
	e.timeLeft = 0
	e.needAdvance = false
	e.mu.Unlock()
}

// Snapshot returns the engine's current view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		InterviewID:    e.interviewID,
		State:          e.state,
		TimeLeft:       e.timeLeft,
		QuestionNumber: e.questionNum,
	}
}

// Close stops the tick loop and flushes any pending answer text. In-flight
// results after the flush are discarded.
func (e *Engine) Close(ctx context.Context) error {
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
	return e.flushAnswer(ctx)
}

func (e *Engine) ensureRunningLocked() error {
	switch e.state {
	case StateCompleted:
		return ErrCompleted
	case StateAwaitingAdvance:
		return ErrAdvancing
	case StatePaused:
		return ErrNotRunning
	}
	return nil
}

func (e *Engine) currentQuestion() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.questionNum
}
