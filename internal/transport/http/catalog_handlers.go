package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
	"gincana-service/internal/logging"
)

// GET /api/questions?category=&difficulty=&search=&limit=
func (a *API) listQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.QuestionFilter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Search:     q.Get("search"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, codeInvalidRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	qs, err := a.svc.Questions.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, qs)
}

func (a *API) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.svc.Questions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (a *API) addQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if !decodeJSON(w, r, &q) {
		return
	}
	// ids are assigned by the catalog
	q.ID = ""
	created, err := a.svc.Questions.Add(r.Context(), q)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *API) importQuestions(w http.ResponseWriter, r *http.Request) {
	var batch []domain.Question
	if !decodeJSON(w, r, &batch) {
		return
	}
	report, err := a.svc.Questions.Import(r.Context(), batch)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (a *API) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch domain.QuestionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	q, err := a.svc.Questions.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (a *API) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Questions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTeamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (a *API) listTeams(w http.ResponseWriter, r *http.Request) {
	ts, err := a.svc.Teams.List(r.Context())
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

func (a *API) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := a.svc.Teams.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (a *API) getTeam(w http.ResponseWriter, r *http.Request) {
	t, err := a.svc.Teams.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (a *API) updateTeam(w http.ResponseWriter, r *http.Request) {
	var patch app.TeamPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	t, err := a.svc.Teams.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (a *API) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Teams.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) backup(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.Backup.Export(r.Context())
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="gincana-backup.json"`)
	respondJSON(w, http.StatusOK, snap)
}

func (a *API) restore(w http.ResponseWriter, r *http.Request) {
	var snap app.Snapshot
	if !decodeJSON(w, r, &snap) {
		return
	}
	if err := a.svc.Backup.Restore(r.Context(), snap); err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
