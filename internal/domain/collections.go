package domain

import (
	"fmt"
	"strings"

	"github.com/ashureev/careerdesk/internal/apperr"
)

// Skill level bounds.
const (
	MinSkillLevel = 1
	MaxSkillLevel = 5
)

// Skill is a named competency with a self-assessed level.
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Category string `json:"category"`
}

// Normalize trims input. A missing level is the caller's to default; an
// explicit zero stays zero and fails Validate.
func (s *Skill) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
}

// Validate checks a normalized skill before insert.
func (s *Skill) Validate() error {
	if s.Name == "" {
		return apperr.Validation("skill name is required")
	}
	if s.Level < MinSkillLevel || s.Level > MaxSkillLevel {
		return apperr.Validation(fmt.Sprintf("skill level must be between %d and %d", MinSkillLevel, MaxSkillLevel))
	}
	return nil
}

// Education is one education record. Dates are free text.
type Education struct {
	ID          int64  `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Normalize trims input.
func (e *Education) Normalize() {
	e.Institution = strings.TrimSpace(e.Institution)
	e.Degree = strings.TrimSpace(e.Degree)
	e.Field = strings.TrimSpace(e.Field)
	e.StartDate = strings.TrimSpace(e.StartDate)
	e.EndDate = strings.TrimSpace(e.EndDate)
}

// Validate checks a normalized education record before insert.
func (e *Education) Validate() error {
	if e.Institution == "" {
		return apperr.Validation("institution is required")
	}
	return nil
}

// GoalStatus is the completion state of a Goal.
type GoalStatus string

// Goal statuses.
const (
	GoalPending   GoalStatus = "pending"
	GoalCompleted GoalStatus = "completed"
)

// ParseGoalStatus rejects anything other than pending or completed.
func ParseGoalStatus(s string) (GoalStatus, error) {
	switch GoalStatus(s) {
	case GoalPending, GoalCompleted:
		return GoalStatus(s), nil
	}
	return "", apperr.Validation(fmt.Sprintf("invalid goal status %q: must be %q or %q", s, GoalPending, GoalCompleted))
}

// Goal is a career goal. Only Status changes after creation.
type Goal struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    string     `json:"deadline"`
	Status      GoalStatus `json:"status"`
}

// Normalize trims input and applies the default status.
func (g *Goal) Normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.Description = strings.TrimSpace(g.Description)
	g.Deadline = strings.TrimSpace(g.Deadline)
	if g.Status == "" {
		g.Status = GoalPending
	}
}

// Validate checks a normalized goal before insert.
func (g *Goal) Validate() error {
	if g.Title == "" {
		return apperr.Validation("goal title is required")
	}
	if _, err := ParseGoalStatus(string(g.Status)); err != nil {
		return err
	}
	return nil
}
