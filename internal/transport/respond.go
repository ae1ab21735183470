package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crispdev/crisp/internal/domain/interview"
	"github.com/crispdev/crisp/internal/domain/interviewer"
	"github.com/crispdev/crisp/internal/domain/session"
	"github.com/crispdev/crisp/internal/resume"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Unmapped errors
// from paths that call the AI collaborators surface as 502; everything else
// is a 500.
func writeDomainError(w http.ResponseWriter, err error, collaborator bool) {
	switch {
	case errors.Is(err, interview.ErrNotFound):
		writeError(w, http.StatusNotFound, "interview not found")
	case errors.Is(err, session.ErrNotAttached):
		writeError(w, http.StatusNotFound, "no active session")
	case errors.Is(err, interview.ErrAlreadyCompleted),
		errors.Is(err, session.ErrCompleted):
		writeError(w, http.StatusConflict, "interview already completed")
	case errors.Is(err, session.ErrAdvancing):
		writeError(w, http.StatusConflict, "question transition in progress")
	case errors.Is(err, session.ErrNotRunning):
		writeError(w, http.StatusConflict, "session is not running")
	case errors.Is(err, interview.ErrInvalidInput),
		errors.Is(err, interview.ErrNoActiveAnswer):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, resume.ErrTooLarge),
		errors.Is(err, resume.ErrNotPDF),
		errors.Is(err, resume.ErrUnreadable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interviewer.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case collaborator:
		writeError(w, http.StatusBadGateway, "assistant temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
