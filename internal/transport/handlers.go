package transport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crispdev/crisp/internal/domain/activity"
	"github.com/crispdev/crisp/internal/domain/intake"
	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/session"
	"github.com/crispdev/crisp/internal/resume"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	account, err := s.interviewers.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, false)
		return
	}

	token, err := s.tokens.GenerateToken(account.Username)
	if err != nil {
		s.logger.Error("issuing token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type intakeResponse struct {
	ConversationID string             `json:"conversation_id"`
	Outcome        intake.Outcome     `json:"outcome"`
	MissingFields  []string           `json:"missing_fields,omitempty"`
	Prompt         string             `json:"prompt,omitempty"`
	Interview      *interviewResponse `json:"interview,omitempty"`
}

// handleIntake accepts a multipart form with an optional "resume" PDF and
// optional "conversation_id" and "message" fields, and runs one intake turn.
func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(resume.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := intake.TurnRequest{
		ConversationID: r.FormValue("conversation_id"),
		Message:        r.FormValue("message"),
	}

	if file, _, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		text, err := resume.ExtractText(file)
		if err != nil {
			writeDomainError(w, err, false)
			return
		}
		req.ResumeText = text
	}

	result, err := s.intake.Turn(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, true)
		return
	}

	resp := intakeResponse{
		ConversationID: result.ConversationID,
		Outcome:        result.Outcome,
		MissingFields:  result.MissingFields,
		Prompt:         result.Prompt,
	}
	if result.Interview != nil {
		view := s.interviewView(result.Interview)
		resp.Interview = &view
	}

	// a freshly created interview starts ticking right away; a resumed one
	// stays paused until the candidate confirms
	if result.Outcome == intake.OutcomeCreated {
		engine, err := s.sessions.Attach(r.Context(), result.Interview.ID)
		if err == nil {
			err = engine.Resume(r.Context())
		}
		if err != nil {
			s.logger.Error("starting session after intake failed",
				"interview_id", result.Interview.ID, "error", err)
		} else if resp.Interview != nil {
			snap := engine.Snapshot()
			resp.Interview.Session = &snap
		}
	} else if result.Outcome == intake.OutcomeResumed {
		if engine, err := s.sessions.Attach(r.Context(), result.Interview.ID); err == nil && resp.Interview != nil {
			snap := engine.Snapshot()
			resp.Interview.Session = &snap
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type interviewResponse struct {
	interview.Interview
	Session *session.Snapshot `json:"session,omitempty"`
}

func (s *Server) interviewView(iv *interview.Interview) interviewResponse {
	view := interviewResponse{Interview: *iv}
	if engine, err := s.sessions.Get(iv.ID); err == nil {
		snap := engine.Snapshot()
		view.Session = &snap
	}
	return view
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.interviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, s.interviewView(iv))
}

type answerRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine, err := s.sessions.Attach(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, false)
		return
	}
	if err := engine.UpdateAnswer(req.Text); err != nil {
		writeDomainError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(engine *session.Engine) error {
		return engine.Pause(r.Context())
	}, false)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	// resume retries a failed question transition, which calls collaborators
	s.sessionAction(w, r, func(engine *session.Engine) error {
		return engine.Resume(r.Context())
	}, true)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(engine *session.Engine) error {
		return engine.Submit(r.Context())
	}, true)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, action func(*session.Engine) error, collaborator bool) {
	engine, err := s.sessions.Attach(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, false)
		return
	}
	if err := action(engine); err != nil {
		writeDomainError(w, err, collaborator)
		return
	}
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	sort := interview.ScoreSort(r.URL.Query().Get("sort"))
	if sort != interview.SortNone && sort != interview.SortAsc && sort != interview.SortDesc {
		writeError(w, http.StatusBadRequest, "sort must be asc or desc")
		return
	}

	refs, err := s.interviews.List(r.Context(), interview.ListOptions{
		Query: r.URL.Query().Get("q"),
		Sort:  sort,
	})
	if err != nil {
		writeDomainError(w, err, false)
		return
	}
	if refs == nil {
		refs = []interview.Ref{}
	}
	writeJSON(w, http.StatusOK, refs)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.interviews.Get(r.Context(), id); err != nil {
		writeDomainError(w, err, false)
		return
	}

	entries, err := s.activity.ForInterview(r.Context(), id, 0)
	if err != nil {
		writeDomainError(w, err, false)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
