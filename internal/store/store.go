// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/careerdesk/internal/domain"
)

// ErrNotFound is returned when a targeted row does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRepository persists the singleton profile row.
type ProfileRepository interface {
	// GetProfile returns the profile row. It always exists after migration.
	GetProfile(ctx context.Context) (*domain.Profile, error)

	// UpdateProfile overwrites the text fields. Token columns are untouched.
	UpdateProfile(ctx context.Context, fields domain.ProfileFields) error

	// SetToken stores the token for a service. An empty token clears it.
	SetToken(ctx context.Context, service domain.Service, token string) error

	// SetTokenIfEmpty stores the token only when none is stored and reports
	// whether a write happened.
	SetTokenIfEmpty(ctx context.Context, service domain.Service, token string) (bool, error)
}

// SkillRepository persists skills.
type SkillRepository interface {
	ListSkills(ctx context.Context) ([]domain.Skill, error)
	CreateSkill(ctx context.Context, skill domain.Skill) (int64, error)
	DeleteSkill(ctx context.Context, id int64) error
}

// EducationRepository persists education records.
type EducationRepository interface {
	ListEducation(ctx context.Context) ([]domain.Education, error)
	CreateEducation(ctx context.Context, edu domain.Education) (int64, error)
	DeleteEducation(ctx context.Context, id int64) error
}

// GoalRepository persists goals.
type GoalRepository interface {
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	CreateGoal(ctx context.Context, goal domain.Goal) (int64, error)
	DeleteGoal(ctx context.Context, id int64) error

	// SetGoalStatus returns ErrNotFound when no goal has the id.
	SetGoalStatus(ctx context.Context, id int64, status domain.GoalStatus) error
}

// CollectionRepository groups the three independent collections.
type CollectionRepository interface {
	SkillRepository
	EducationRepository
	GoalRepository
}

// Repository is the full persistence surface.
type Repository interface {
	ProfileRepository
	CollectionRepository

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
