// Package profile manages the singleton user profile and its service tokens.
package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/store"
	"go.uber.org/zap"
)

// Service wraps the profile repository.
type Service struct {
	repo           store.ProfileRepository
	internalSecret string
	logger         *zap.Logger

	mu           sync.Mutex
	backfillDone bool
}

// NewService creates a profile service. internalSecret, when set, is copied
// into an empty note-service token on the first Get.
func NewService(repo store.ProfileRepository, internalSecret string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repo,
		internalSecret: strings.TrimSpace(internalSecret),
		logger:         logger,
	}
}

// Get returns the profile, backfilling the note-service token at most once
// per process. A later disconnect is therefore not silently undone.
func (s *Service) Get(ctx context.Context) (*domain.Profile, error) {
	if err := s.backfill(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Service) backfill(ctx context.Context) error {
	if s.internalSecret == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backfillDone {
		return nil
	}

	wrote, err := s.repo.SetTokenIfEmpty(ctx, domain.ServiceNotion, s.internalSecret)
	if err != nil {
		return fmt.Errorf("backfill notion token: %w", err)
	}
	s.backfillDone = true

	if wrote {
		s.logger.Info("Backfilled note-service token from internal secret")
	}
	return nil
}

// Update overwrites the text fields exactly as submitted. Tokens are never
// touched.
func (s *Service) Update(ctx context.Context, fields domain.ProfileFields) error {
	if err := s.repo.UpdateProfile(ctx, fields); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.logger.Info("Profile updated", zap.String("user_action", "profile_update"))
	return nil
}

// SetToken stores an access token for a service.
func (s *Service) SetToken(ctx context.Context, service domain.Service, token string) error {
	if err := s.repo.SetToken(ctx, service, token); err != nil {
		return fmt.Errorf("store %s token: %w", service, err)
	}
	s.logger.Info("Service connected", zap.String("service", string(service)))
	return nil
}

// ClearToken removes the token for a service.
func (s *Service) ClearToken(ctx context.Context, service domain.Service) error {
	if err := s.repo.SetToken(ctx, service, ""); err != nil {
		return fmt.Errorf("clear %s token: %w", service, err)
	}
	s.logger.Info("Service disconnected", zap.String("service", string(service)))
	return nil
}

// Token returns the stored token for a service, or "".
func (s *Service) Token(ctx context.Context, service domain.Service) (string, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return p.Token(service), nil
}
