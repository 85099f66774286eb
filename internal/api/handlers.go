package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Attentive/internal/middleware"
	"github.com/soaringjerry/Attentive/internal/services"
	"github.com/soaringjerry/Attentive/internal/utils"
)

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       "Attentive API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.opts.Commit,
		"build_time": rt.opts.BuildTime,
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commit": rt.opts.Commit, "build_time": rt.opts.BuildTime})
}

// POST /api/auth/register
// { name, email, password, age, parent_contact? }
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.auth.Register(r.Context(), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.ADHDInfo())
}

func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	p, err := rt.auth.Profile(r.Context(), uid, rt.stats)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	st, err := rt.stats.UserStats(r.Context(), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /api/sessions — dashboard history, newest first
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	rows, err := rt.history.History(r.Context(), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": rows})
}

func (rt *Router) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	rows, err := rt.history.History(r.Context(), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	b, err := services.ExportHistoryCSV(rows)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv", "sessions.csv", b)
}

// POST /api/sessions — start a new session; last start wins
func (rt *Router) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := rt.sessions.StartSession(r.Context(), rt.actor(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": id})
}

func (rt *Router) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	id, ok, err := rt.sessions.ActiveSession(r.Context(), rt.actor(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"active": true, "session_id": id})
}

func (rt *Router) handleClearActiveSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.ClearActiveSession(r.Context(), rt.actor(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/results
// { test_type, score, responses: [{time, correct, answer}] }
func (rt *Router) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitRequest
	if !rt.decode(w, r, &req) {
		return
	}
	res, err := rt.scores.SubmitResult(r.Context(), rt.actor(r), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/sessions/complete
func (rt *Router) handleCompleteAssessment(w http.ResponseWriter, r *http.Request) {
	res, err := rt.sessions.CompleteAssessment(r.Context(), rt.actor(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/sessions/{id}/report — PDF attachment
func (rt *Router) handleReport(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	rep, err := rt.reports.RenderReport(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeAttachment(w, rep.ContentType, rep.Filename, rep.Body)
}

func (rt *Router) handleResponsesCSV(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	b, name, err := rt.history.ExportResponses(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv", name, b)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.ReplaceAll(filename, `"`, "")))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
