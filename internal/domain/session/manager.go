package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/interview"
)

// Manager owns the live engines, one per attached interview. It guarantees a
// single engine, and therefore a single writer, per interview.
type Manager struct {
	store      *interview.Service
	activity   *activity.Service
	questions  QuestionGenerator
	summarizer Summarizer
	clk        clock.Clock
	logger     *slog.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager creates a session manager.
func NewManager(
	store *interview.Service,
	activitySvc *activity.Service,
	questions QuestionGenerator,
	summarizer Summarizer,
	clk clock.Clock,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		store:      store,
		activity:   activitySvc,
		questions:  questions,
		summarizer: summarizer,
		clk:        clk,
		logger:     logger,
		engines:    make(map[string]*Engine),
	}
}

// Attach returns the live engine for an interview, creating one from the
// persisted record if none exists. A fresh engine starts paused with the
// persisted time remaining; completed interviews cannot be attached.
func (m *Manager) Attach(ctx context.Context, interviewID string) (*Engine, error) {
	m.mu.Lock()
	if engine, ok := m.engines[interviewID]; ok {
		m.mu.Unlock()
		return engine, nil
	}
	m.mu.Unlock()

	iv, err := m.store.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == interview.StatusCompleted {
		return nil, ErrCompleted
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if engine, ok := m.engines[interviewID]; ok {
		return engine, nil
	}
	engine := newEngine(iv, m.store, m.activity, m.questions, m.summarizer, m.clk, m.logger)
	m.engines[interviewID] = engine
	m.logger.Info("session attached", "interview_id", interviewID, "time_left", engine.Snapshot().TimeLeft)
	return engine, nil
}

// Get returns the live engine for an interview, if one is attached.
func (m *Manager) Get(interviewID string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	engine, ok := m.engines[interviewID]
	if !ok {
		return nil, ErrNotAttached
	}
	return engine, nil
}

// Detach stops an interview's engine after flushing its pending answer. The
// persisted record carries everything needed to attach again later.
func (m *Manager) Detach(ctx context.Context, interviewID string) error {
	m.mu.Lock()
	engine, ok := m.engines[interviewID]
	delete(m.engines, interviewID)
	m.mu.Unlock()
	if !ok {
		return ErrNotAttached
	}
	return engine.Close(ctx)
}

// Shutdown closes every live engine. Used on server shutdown.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, engine := range m.engines {
		engines = append(engines, engine)
	}
	m.engines = make(map[string]*Engine)
	m.mu.Unlock()

	for _, engine := range engines {
		if err := engine.Close(ctx); err != nil {
			m.logger.Warn("closing session on shutdown", "error", err)
		}
	}
}
