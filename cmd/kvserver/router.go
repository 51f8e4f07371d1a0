package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KjellKod/concurrent"
	"github.com/KjellKod/concurrent/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxValueBytes caps PUT bodies.
const maxValueBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type application struct {
	store    *store.Store
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

type keyRequest struct {
	Key string `validate:"required,max=512,printascii"`
}

type incrRequest struct {
	Key string `validate:"required,max=512,printascii"`
	By  int64
}

type keysResponse struct {
	Keys []string `json:"keys"`
}

type counterResponse struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", app.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{}))

	r.Route("/kv", func(r chi.Router) {
		r.Get("/", app.handleKeys)
		r.Get("/{key}", app.handleGet)
		r.Put("/{key}", app.handlePut)
		r.Delete("/{key}", app.handleDelete)
		r.Post("/{key}/incr", app.handleIncr)
	})

	return r
}

func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.store.Closed() {
		app.writeError(w, r, concurrent.ErrEmpty)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}

func (app *application) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := app.store.Keys(r.Context()).Wait(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, keysResponse{Keys: keys})
}

func (app *application) handleGet(w http.ResponseWriter, r *http.Request) {
	key, ok := app.keyParam(w, r)
	if !ok {
		return
	}
	value, err := app.store.Get(r.Context(), key).Wait(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(value); err != nil {
		app.logger.Error("failed to write value", "key", key, "error", err)
	}
}

func (app *application) handlePut(w http.ResponseWriter, r *http.Request) {
	key, ok := app.keyParam(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValueBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			app.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
			return
		}
		app.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if _, err := app.store.Put(r.Context(), key, body).Wait(r.Context()); err != nil {
		app.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, ok := app.keyParam(w, r)
	if !ok {
		return
	}
	if _, err := app.store.Delete(r.Context(), key).Wait(r.Context()); err != nil {
		app.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleIncr(w http.ResponseWriter, r *http.Request) {
	req := incrRequest{Key: chi.URLParam(r, "key"), By: 1}
	if raw := r.URL.Query().Get("by"); raw != "" {
		by, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			app.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "by must be an integer"})
			return
		}
		req.By = by
	}
	if err := validate.Struct(req); err != nil {
		app.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	n, err := app.store.Incr(r.Context(), req.Key, req.By).Wait(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, counterResponse{Key: req.Key, Value: n})
}

func (app *application) keyParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	req := keyRequest{Key: chi.URLParam(r, "key")}
	if err := validate.Struct(req); err != nil {
		app.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", false
	}
	return req.Key, true
}

// writeError maps store and object failures to HTTP statuses.
func (app *application) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidKey):
		status = http.StatusBadRequest
	case errors.As(err, &numErr):
		status = http.StatusConflict
	case errors.Is(err, concurrent.ErrEmpty):
		status = http.StatusServiceUnavailable
	case r.Context().Err() != nil:
		// Client went away. A queued operation still runs, but with the
		// cancelled request context, so the backend fails it.
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		app.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
	}
	app.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("failed to encode response", "error", err)
	}
}
