package api

import (
	"net/http"

	"github.com/ashureev/careerdesk/internal/domain"
)

type profileResponse struct {
	*domain.Profile
	Connections map[domain.Service]domain.ConnectionState `json:"connections"`
}

// GetProfile returns the profile and the state of every integration.
// Tokens themselves never leave the server.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, profileResponse{
		Profile:     p,
		Connections: h.connectors.StatusesFor(p),
	})
}

// UpdateProfile overwrites the editable text fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProfileFields
	if err := decodeJSON(w, r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.profiles.Update(r.Context(), fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	success(w)
}

type dashboardResponse struct {
	Profile     *domain.Profile                           `json:"profile"`
	Connections map[domain.Service]domain.ConnectionState `json:"connections"`
	Skills      []domain.Skill                            `json:"skills"`
	Education   []domain.Education                        `json:"education"`
	Goals       []domain.Goal                             `json:"goals"`
}

// Dashboard returns everything the UI renders on load in one response.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p := snap.Profile
	JSON(w, http.StatusOK, dashboardResponse{
		Profile:     &p,
		Connections: h.connectors.StatusesFor(&p),
		Skills:      snap.Skills,
		Education:   snap.Education,
		Goals:       snap.Goals,
	})
}
