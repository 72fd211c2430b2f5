package api

import (
	"net/http"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"go.uber.org/zap"
)

type exportRequest struct {
	Advice *domain.Advice `json:"advice"`
	Title  string         `json:"title"`
}

// ExportToNotion creates a Notion page from an advice object and returns
// Notion's response unchanged.
func (h *Handler) ExportToNotion(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Advice == nil {
		h.writeError(w, r, apperr.Validation("advice is required"))
		return
	}

	token, err := h.profiles.Token(r.Context(), domain.ServiceNotion)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	raw, err := h.notion.Export(r.Context(), token, *req.Advice, req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("Plan exported", zap.String("user_action", "notion_export"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// GitHubRepos lists the connected user's recently updated repositories.
func (h *Handler) GitHubRepos(w http.ResponseWriter, r *http.Request) {
	token, err := h.profiles.Token(r.Context(), domain.ServiceGitHub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	repos, err := h.github.ListRepos(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, repos)
}

// GitHubReadme returns the README of ?owner=&repo=.
func (h *Handler) GitHubReadme(w http.ResponseWriter, r *http.Request) {
	token, err := h.profiles.Token(r.Context(), domain.ServiceGitHub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	content, err := h.github.Readme(r.Context(), token, q.Get("owner"), q.Get("repo"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"content": content})
}

// LinkedInUpdate applies a headline and about text.
func (h *Handler) LinkedInUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Headline string `json:"headline"`
		About    string `json:"about"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.linkedin.Update(r.Context(), body.Headline, body.About)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}
