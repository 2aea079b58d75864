// Package httpx writes the JSON envelope shared by every handler:
// {"success": bool, "data": ..., "message": ...}.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopcore/eshop/internal/domain"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Responder maps results and domain errors to HTTP responses. When
// exposeErrors is false (production), internal failures are reported as a
// generic message.
type Responder struct {
	logger       *slog.Logger
	exposeErrors bool
}

func NewResponder(logger *slog.Logger, exposeErrors bool) *Responder {
	return &Responder{logger: logger, exposeErrors: exposeErrors}
}

func (r *Responder) Data(w http.ResponseWriter, status int, data any) {
	r.write(w, status, Envelope{Success: true, Data: data})
}

func (r *Responder) Message(w http.ResponseWriter, status int, message string) {
	r.write(w, status, Envelope{Success: true, Message: message})
}

func (r *Responder) Fail(w http.ResponseWriter, status int, message string) {
	r.write(w, status, Envelope{Success: false, Message: message})
}

// Error maps the error taxonomy to a status and envelope. Unrecognized
// errors become 500s with detail withheld in production.
func (r *Responder) Error(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var referenceErr *domain.ReferenceError

	switch {
	case errors.As(err, &validationErr):
		r.Fail(w, http.StatusBadRequest, validationErr.Msg)
	case errors.As(err, &referenceErr):
		r.Fail(w, http.StatusBadRequest, referenceErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		r.Fail(w, http.StatusNotFound, "not found")
	default:
		message := "Internal server error"
		if r.exposeErrors {
			message = err.Error()
		}
		r.Fail(w, http.StatusInternalServerError, message)
	}
}

func (r *Responder) write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		r.logger.Error("failed to encode response", "error", err)
	}
}
