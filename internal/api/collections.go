package api

import (
	"context"
	"net/http"

	"github.com/ashureev/careerdesk/internal/domain"
	"go.uber.org/zap"
)

type idResponse struct {
	ID int64 `json:"id"`
}

// skillRequest tells an omitted level apart from an explicit 0.
type skillRequest struct {
	Name     string `json:"name"`
	Level    *int   `json:"level"`
	Category string `json:"category"`
}

func (req skillRequest) skill() domain.Skill {
	s := domain.Skill{Name: req.Name, Level: domain.MinSkillLevel, Category: req.Category}
	if req.Level != nil {
		s.Level = *req.Level
	}
	return s
}

// ListSkills returns every skill in insertion order.
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.repo.ListSkills(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, skills)
}

// CreateSkill adds a skill and returns its id.
func (h *Handler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s := req.skill()
	s.Normalize()
	if err := s.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.repo.CreateSkill(r.Context(), s)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Skill created", zap.String("user_action", "skill_create"), zap.Int64("id", id))
	JSON(w, http.StatusCreated, idResponse{ID: id})
}

// DeleteSkill removes a skill. Unknown ids succeed.
func (h *Handler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.repo.DeleteSkill)
}

// ListEducation returns every education record.
func (h *Handler) ListEducation(w http.ResponseWriter, r *http.Request) {
	edu, err := h.repo.ListEducation(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, edu)
}

// CreateEducation adds an education record and returns its id.
func (h *Handler) CreateEducation(w http.ResponseWriter, r *http.Request) {
	var e domain.Education
	if err := decodeJSON(w, r, &e); err != nil {
		h.writeError(w, r, err)
		return
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.repo.CreateEducation(r.Context(), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, idResponse{ID: id})
}

// DeleteEducation removes an education record.
func (h *Handler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.repo.DeleteEducation)
}

// ListGoals returns every goal.
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.repo.ListGoals(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, goals)
}

// CreateGoal adds a goal, pending unless a status is given.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if err := decodeJSON(w, r, &g); err != nil {
		h.writeError(w, r, err)
		return
	}
	g.Normalize()
	if err := g.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.repo.CreateGoal(r.Context(), g)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, idResponse{ID: id})
}

// UpdateGoalStatus sets a goal to pending or completed. Setting the
// current status again is a no-op.
func (h *Handler) UpdateGoalStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := domain.ParseGoalStatus(body.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.repo.SetGoalStatus(r.Context(), id, status); err != nil {
		h.writeError(w, r, err)
		return
	}
	success(w)
}

// DeleteGoal removes a goal.
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.repo.DeleteGoal)
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	success(w)
}
