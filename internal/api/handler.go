// Package api provides HTTP handlers for the career dashboard API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/github"
	"github.com/ashureev/careerdesk/internal/linkedin"
	"github.com/ashureev/careerdesk/internal/notion"
	"github.com/ashureev/careerdesk/internal/oauth"
	"github.com/ashureev/careerdesk/internal/profile"
	"github.com/ashureev/careerdesk/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Repo       store.Repository
	Profiles   *profile.Service
	Connectors *oauth.Registry
	Notion     *notion.Client
	GitHub     *github.Client
	LinkedIn   *linkedin.Updater
	Advice     *advice.Generator
	Logger     *zap.Logger
}

// Handler provides common handler utilities.
type Handler struct {
	repo       store.Repository
	profiles   *profile.Service
	connectors *oauth.Registry
	notion     *notion.Client
	github     *github.Client
	linkedin   *linkedin.Updater
	advice     *advice.Generator
	logger     *zap.Logger
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:       d.Repo,
		profiles:   d.Profiles,
		connectors: d.Connectors,
		notion:     d.Notion,
		github:     d.GitHub,
		linkedin:   d.LinkedIn,
		advice:     d.Advice,
		logger:     logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and a client-safe message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound("not found")
	}
	status := apperr.StatusOf(err)

	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Int("status", status),
		zap.Error(err),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.Context) > 0 {
		fields = append(fields, zap.Any("context", appErr.Context))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Debug("Request rejected", fields...)
	}

	Error(w, status, apperr.MessageOf(err))
}

func success(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body").WithCause(err)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func serviceParam(r *http.Request) (domain.Service, error) {
	s, ok := domain.ParseService(chi.URLParam(r, "service"))
	if !ok {
		return "", apperr.NotFound("unknown service")
	}
	return s, nil
}

// loadSnapshot reads the profile and the three collections concurrently.
func (h *Handler) loadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var (
		snap domain.Snapshot
		p    *domain.Profile
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = h.profiles.Get(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Skills, err = h.repo.ListSkills(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Education, err = h.repo.ListEducation(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Goals, err = h.repo.ListGoals(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	snap.Profile = *p
	return snap, nil
}
