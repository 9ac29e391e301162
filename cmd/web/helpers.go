package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ironcycle/ironcycle/internal/auth"
	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/exercise"
	"github.com/ironcycle/ironcycle/internal/program"
	"github.com/ironcycle/ironcycle/internal/ptr"
	"github.com/ironcycle/ironcycle/internal/workout"
)

const (
	timestampFormat = "2006-01-02T15:04:05.000Z"
	dateFormat      = time.DateOnly
)

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v, rejecting unknown fields.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		app.writeJSON(w, r, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("malformed JSON body: %v", err)})
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// writeError maps service sentinels onto HTTP statuses. Anything unmapped is
// treated as a server fault and logged with its full annotation chain.
func (app *application) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, program.ErrNotFound),
		errors.Is(err, workout.ErrNotFound),
		errors.Is(err, exercise.ErrNotFound),
		errors.Is(err, auth.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, program.ErrValidation),
		errors.Is(err, workout.ErrValidation),
		errors.Is(err, exercise.ErrValidation),
		errors.Is(err, auth.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, program.ErrConflict),
		errors.Is(err, workout.ErrConflict),
		errors.Is(err, exercise.ErrConflict),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	default:
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// validationError reports a malformed request that never reached a service.
func (app *application) validationError(w http.ResponseWriter, r *http.Request, msg string) {
	app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return ptr.Ref(t.Format(dateFormat))
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return ptr.Ref(t.UTC().Format(timestampFormat))
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
