package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopcore/eshop/internal/domain"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func newResponder(exposeErrors bool) *Responder {
	return NewResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), exposeErrors)
}

func TestResponder_Error(t *testing.T) {
	t.Run("validation error maps to 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newResponder(true).Error(rec, &domain.ValidationError{Msg: "quantity must be a positive integer"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		env := decode(t, rec)
		if env.Success || env.Message != "quantity must be a positive integer" {
			t.Errorf("unexpected envelope: %+v", env)
		}
	})

	t.Run("reference error maps to 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newResponder(true).Error(rec, &domain.ReferenceError{Entity: "product", ID: "p-1"})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newResponder(true).Error(rec, domain.ErrNotFound)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("creation error maps to 500 with detail when exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newResponder(true).Error(rec, &domain.CreationError{Err: errors.New("disk full")})

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		env := decode(t, rec)
		if env.Message == "Internal server error" {
			t.Error("expected underlying detail outside production")
		}
	})

	t.Run("internal detail hidden in production", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newResponder(false).Error(rec, errors.New("pq: password authentication failed"))

		env := decode(t, rec)
		if env.Message != "Internal server error" {
			t.Errorf("expected generic message, got %q", env.Message)
		}
	})
}

func TestResponder_Data(t *testing.T) {
	rec := httptest.NewRecorder()
	newResponder(true).Data(rec, http.StatusCreated, map[string]int{"n": 1})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	env := decode(t, rec)
	if !env.Success {
		t.Error("expected success envelope")
	}
}
