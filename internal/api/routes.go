package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the REST API and the OAuth callbacks.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/dashboard", h.Dashboard)

		r.Get("/skills", h.ListSkills)
		r.Post("/skills", h.CreateSkill)
		r.Delete("/skills/{id}", h.DeleteSkill)

		r.Get("/education", h.ListEducation)
		r.Post("/education", h.CreateEducation)
		r.Delete("/education/{id}", h.DeleteEducation)

		r.Get("/goals", h.ListGoals)
		r.Post("/goals", h.CreateGoal)
		r.Patch("/goals/{id}", h.UpdateGoalStatus)
		r.Delete("/goals/{id}", h.DeleteGoal)

		r.Get("/auth/status", h.AuthStatus)
		r.Get("/auth/{service}/url", h.AuthURL)
		r.Post("/auth/{service}/manual", h.ConnectManually)
		r.Delete("/auth/{service}", h.Disconnect)

		r.Post("/notion/export", h.ExportToNotion)
		r.Get("/github/repos", h.GitHubRepos)
		r.Get("/github/readme", h.GitHubReadme)
		r.Post("/linkedin/update", h.LinkedInUpdate)

		r.Post("/advice", h.GenerateAdvice)
	})

	r.Get("/auth/{service}/callback", h.AuthCallback)
}
