// Package api serves the journey over a localhost JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/journey"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/storage"
)

const maxBodyBytes = 1 << 20

type Server struct {
	svc         *journey.Service
	metrics     *Metrics
	corsOrigins []string
}

func NewServer(svc *journey.Service) *Server {
	return &Server{svc: svc}
}

// EnableMetrics mounts /metrics and request instrumentation. Pass the same
// Metrics to journey.WithObserver to count reconciliations.
func (s *Server) EnableMetrics(m *Metrics) { s.metrics = m }

// SetCORSOrigins restricts cross-origin access. "*" allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.cors)
	if s.metrics != nil {
		r.Use(s.metrics.instrument)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": constants.Version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/{id}", s.handleGetEntry)
			r.Put("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})
		r.Route("/cravings", func(r chi.Router) {
			r.Get("/", s.handleListCravings)
			r.Post("/", s.handleCreateCraving)
			r.Delete("/{id}", s.handleDeleteCraving)
		})
		r.Get("/goals", s.handleListGoals)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Put("/profile/daily-limit", s.handleSetDailyLimit)
		r.Post("/onboarding", s.handleOnboarding)
		r.Get("/stats", s.handleStats)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/notifications/pending", s.handlePending)
		r.Post("/notifications/{id}/shown", s.handleShown)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logger.Info("API listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("API shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps service errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journey.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("API request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
