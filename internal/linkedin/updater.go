// Package linkedin is the professional-network profile updater. The remote
// API is not called; updates are validated and logged only.
package linkedin

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"go.uber.org/zap"
)

// SuccessMessage is returned for every accepted update.
const SuccessMessage = "LinkedIn profiliniz başarıyla güncellendi!"

// MaxHeadlineLength mirrors the limit the network enforces on headlines.
const MaxHeadlineLength = 220

// TokenSource yields the stored connector token.
type TokenSource interface {
	Token(ctx context.Context, s domain.Service) (string, error)
}

// Result is the outcome of an update.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Updater applies profile updates.
type Updater struct {
	tokens TokenSource
	logger *zap.Logger
}

// NewUpdater creates an Updater.
func NewUpdater(tokens TokenSource, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{tokens: tokens, logger: logger}
}

// Update pushes a new headline and about section.
func (u *Updater) Update(ctx context.Context, headline, about string) (*Result, error) {
	token, err := u.tokens.Token(ctx, domain.ServiceLinkedIn)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperr.Auth("LinkedIn is not connected")
	}

	headline = strings.TrimSpace(headline)
	if headline == "" {
		return nil, apperr.Validation("headline is required")
	}
	if utf8.RuneCountInString(headline) > MaxHeadlineLength {
		return nil, apperr.Validation("headline is too long").With("max", MaxHeadlineLength)
	}

	u.logger.Info("LinkedIn profile update",
		zap.String("user_action", "linkedin_update"),
		zap.String("headline", headline),
		zap.Int("about_length", utf8.RuneCountInString(strings.TrimSpace(about))),
	)
	return &Result{Success: true, Message: SuccessMessage}, nil
}
