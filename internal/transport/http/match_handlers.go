package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gincana-service/internal/domain"
	"gincana-service/internal/logging"
	"gincana-service/internal/report"
)

type createMatchRequest struct {
	Mode    string   `json:"mode"`
	TeamIDs []string `json:"team_ids"`
	domain.MatchOptions
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// drawResponse reports exhaustion as a normal outcome rather than an error status.
type drawResponse struct {
	Exhausted bool             `json:"exhausted"`
	Question  *domain.Question `json:"question,omitempty"`
}

func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := a.svc.Matches.ListMatches(r.Context())
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, ms)
}

func (a *API) createMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := a.svc.Matches.CreateMatch(r.Context(), req.Mode, req.TeamIDs, req.MatchOptions)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.Matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (a *API) deleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Matches.DeleteMatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) currentQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.svc.Matches.CurrentQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (a *API) drawQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.svc.Matches.DrawNextQuestion(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrExhausted) {
		respondJSON(w, http.StatusOK, drawResponse{Exhausted: true})
		return
	}
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, drawResponse{Question: &q})
}

func (a *API) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	outcome, err := a.svc.Matches.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.Answer)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (a *API) skip(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.Matches.Skip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// POST /api/matches/{id}/end ends the match by the host. With ?reason=exhausted it
// records that the question pool ran out instead.
func (a *API) endMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		m   domain.Match
		err error
	)
	switch reason := r.URL.Query().Get("reason"); reason {
	case "", domain.FinishEnded:
		m, err = a.svc.Matches.EndMatch(r.Context(), id)
	case domain.FinishExhausted:
		m, err = a.svc.Matches.EndExhausted(r.Context(), id)
	default:
		err = domain.Validationf("unknown end reason %q", reason)
	}
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (a *API) standings(w http.ResponseWriter, r *http.Request) {
	st, err := a.svc.Matches.GetStandings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// GET /api/matches/{id}/export?format=csv|text
func (a *API) exportMatch(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondServiceError(w, logger, err)
		return
	}
	m, err := a.svc.Matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logger, err)
		return
	}
	st, err := a.svc.Matches.GetStandings(r.Context(), m.ID)
	if err != nil {
		respondServiceError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="match-%s.%s"`, m.ID, format.Extension()))
	if err := report.Write(w, format, m, st); err != nil {
		logger.Error().Err(err).Str("match_id", m.ID).Msg("export failed")
	}
}
