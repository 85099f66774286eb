package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/soaringjerry/Attentive/internal/middleware"
	"github.com/soaringjerry/Attentive/internal/services"
	"github.com/soaringjerry/Attentive/internal/utils"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	case services.ErrorForbidden:
		return http.StatusForbidden
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and a localized message. Anything that
// is not a ServiceError is logged and reported as an internal error.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	if se, ok := services.AsServiceError(err); ok {
		msg := se.Message
		// invalid_input messages name the offending field; keep them as-is.
		if key := "error." + se.Kind; se.Kind != "invalid_input" && utils.HasKey(key) {
			msg = utils.T(locale, key)
		}
		writeJSON(w, statusFor(se.Code), errorBody{Error: msg, Code: se.Kind})
		return
	}
	rt.opts.Logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: utils.T(locale, "error.internal"), Code: "internal"})
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			msg = "invalid value for " + typeErr.Field
		}
		rt.writeError(w, r, services.NewInvalidError(msg))
		return false
	}
	return true
}
