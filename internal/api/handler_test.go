//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/linkedin"
	"github.com/ashureev/careerdesk/internal/oauth"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)

	got := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, w)
	if got.Status != "healthy" || got.Checks["database"] != "ok" {
		t.Errorf("unexpected health %+v", got)
	}
}

func TestGetProfileHidesTokens(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, domain.ServiceNotion, "secret_do_not_leak")

	w := env.do(t, http.MethodGet, "/api/profile", nil)
	expectStatus(t, w, http.StatusOK)

	if strings.Contains(w.Body.String(), "secret_do_not_leak") {
		t.Fatal("token leaked in profile response")
	}
	got := decode[struct {
		ID          int                                       `json:"id"`
		FullName    string                                    `json:"full_name"`
		Connections map[domain.Service]domain.ConnectionState `json:"connections"`
	}](t, w)
	if got.ID != domain.ProfileID {
		t.Errorf("id = %d", got.ID)
	}
	if got.Connections[domain.ServiceNotion] != domain.StateConnected {
		t.Errorf("notion state = %q", got.Connections[domain.ServiceNotion])
	}
	if got.Connections[domain.ServiceGitHub] != domain.StateDisconnected {
		t.Errorf("github state = %q", got.Connections[domain.ServiceGitHub])
	}
}

func TestUpdateProfileKeepsTokens(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, domain.ServiceGitHub, "gho_keep")

	w := env.do(t, http.MethodPut, "/api/profile", map[string]string{
		"full_name":    "Ada Yılmaz",
		"current_role": "Backend Developer",
		"target_role":  "Staff Engineer",
		"bio":          "Go ve dağıtık sistemler.",
		"github_token": "attacker",
	})
	expectStatus(t, w, http.StatusOK)

	p, err := env.profiles.Get(t.Context())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.FullName != "Ada Yılmaz" || p.TargetRole != "Staff Engineer" {
		t.Errorf("fields not updated: %+v", p)
	}
	if p.GitHubToken != "gho_keep" {
		t.Errorf("token changed to %q", p.GitHubToken)
	}
}

func TestSkillLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 4, "category": "Teknik"})
	expectStatus(t, w, http.StatusCreated)
	id := decode[idResponse](t, w).ID
	if id <= 0 {
		t.Fatalf("expected fresh id, got %d", id)
	}

	w = env.do(t, http.MethodGet, "/api/skills", nil)
	expectStatus(t, w, http.StatusOK)
	skills := decode[[]domain.Skill](t, w)
	if len(skills) != 1 || skills[0].Level != 4 || skills[0].Name != "Go" || skills[0].Category != "Teknik" {
		t.Fatalf("unexpected skills %+v", skills)
	}

	w = env.do(t, http.MethodDelete, "/api/skills/"+itoa(id), nil)
	expectStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/skills", nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}

func TestCreateSkillValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
	}{
		{"level too high", map[string]any{"name": "Go", "level": 9}},
		{"explicit zero level", map[string]any{"name": "Go", "level": 0}},
		{"no name", map[string]any{"level": 3}},
		{"malformed", "{not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/skills", tt.body)
			expectStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	env := newTestEnv(t)

	big := `{"name":"` + strings.Repeat("x", maxBodySize+10) + `"}`
	w := env.do(t, http.MethodPost, "/api/skills", big)
	expectStatus(t, w, http.StatusBadRequest)
	if !strings.Contains(w.Body.String(), "too large") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/skills/999", "/api/education/999", "/api/goals/999"} {
		w := env.do(t, http.MethodDelete, path, nil)
		expectStatus(t, w, http.StatusOK)
	}
	w := env.do(t, http.MethodDelete, "/api/skills/abc", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestEducationCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/education", map[string]string{
		"institution": "ODTÜ", "degree": "Lisans", "field": "Bilgisayar Mühendisliği",
		"start_date": "2015", "end_date": "2019",
	})
	expectStatus(t, w, http.StatusCreated)

	edu := decode[[]domain.Education](t, env.do(t, http.MethodGet, "/api/education", nil))
	if len(edu) != 1 || edu[0].Institution != "ODTÜ" || edu[0].EndDate != "2019" {
		t.Errorf("unexpected education %+v", edu)
	}

	w = env.do(t, http.MethodPost, "/api/education", map[string]string{"degree": "Lisans"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestGoalStatusToggle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/goals", map[string]string{"title": "AWS sertifikası", "deadline": "Haziran"})
	expectStatus(t, w, http.StatusCreated)
	id := decode[idResponse](t, w).ID
	path := "/api/goals/" + itoa(id)

	status := func() domain.GoalStatus {
		goals := decode[[]domain.Goal](t, env.do(t, http.MethodGet, "/api/goals", nil))
		if len(goals) != 1 {
			t.Fatalf("expected one goal, got %d", len(goals))
		}
		return goals[0].Status
	}

	if got := status(); got != domain.GoalPending {
		t.Fatalf("new goal status = %q", got)
	}

	for i := 0; i < 2; i++ {
		expectStatus(t, env.do(t, http.MethodPatch, path, map[string]string{"status": "completed"}), http.StatusOK)
		if got := status(); got != domain.GoalCompleted {
			t.Fatalf("after completed #%d: %q", i+1, got)
		}
	}

	expectStatus(t, env.do(t, http.MethodPatch, path, map[string]string{"status": "pending"}), http.StatusOK)
	if got := status(); got != domain.GoalPending {
		t.Fatalf("after pending: %q", got)
	}

	expectStatus(t, env.do(t, http.MethodPatch, path, map[string]string{"status": "done"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPatch, "/api/goals/4242", map[string]string{"status": "completed"}), http.StatusNotFound)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 4})
	env.do(t, http.MethodPost, "/api/education", map[string]string{"institution": "ODTÜ"})
	env.do(t, http.MethodPost, "/api/goals", map[string]string{"title": "Staff"})

	w := env.do(t, http.MethodGet, "/api/dashboard", nil)
	expectStatus(t, w, http.StatusOK)

	got := decode[struct {
		Profile     domain.Profile                            `json:"profile"`
		Connections map[domain.Service]domain.ConnectionState `json:"connections"`
		Skills      []domain.Skill                            `json:"skills"`
		Education   []domain.Education                        `json:"education"`
		Goals       []domain.Goal                             `json:"goals"`
	}](t, w)
	if got.Profile.ID != domain.ProfileID || len(got.Skills) != 1 || len(got.Education) != 1 || len(got.Goals) != 1 {
		t.Errorf("unexpected dashboard %+v", got)
	}
	if len(got.Connections) != len(domain.Services) {
		t.Errorf("expected a state per service, got %v", got.Connections)
	}
}

func TestAuthURL(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/notion/url", nil)
	expectStatus(t, w, http.StatusOK)
	raw := decode[map[string]string](t, w)["url"]
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:3000/auth/notion/callback" {
		t.Errorf("redirect_uri = %q", got)
	}

	statuses := decode[map[domain.Service]domain.ConnectionState](t, env.do(t, http.MethodGet, "/api/auth/status", nil))
	if statuses[domain.ServiceNotion] != domain.StateAuthorizing {
		t.Errorf("notion state = %q", statuses[domain.ServiceNotion])
	}
}

func TestAuthURLConfigurationError(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/github/url", nil)
	expectStatus(t, w, http.StatusInternalServerError)
	if decode[map[string]string](t, w)["error"] == "" {
		t.Error("expected error message")
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/auth/myspace/url", nil), http.StatusNotFound)
}

func TestSimulatedLinkedInCallback(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.hub.Subscribe()
	defer unsubscribe()

	raw := decode[map[string]string](t, env.do(t, http.MethodGet, "/api/auth/linkedin/url", nil))["url"]
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Path != "/auth/linkedin/callback" {
		t.Fatalf("simulated URL should point at the local callback, got %s", raw)
	}

	w := env.do(t, http.MethodGet, u.RequestURI(), nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "LINKEDIN_AUTH_SUCCESS") {
		t.Errorf("callback page does not signal the opener: %s", w.Body.String())
	}

	select {
	case ev := <-events:
		if ev.Type != "LINKEDIN_AUTH_SUCCESS" {
			t.Errorf("event = %q", ev.Type)
		}
	default:
		t.Error("expected an auth event")
	}

	p, _ := env.profiles.Get(t.Context())
	if p.LinkedInToken != oauth.LinkedInMockToken {
		t.Errorf("linkedin token = %q", p.LinkedInToken)
	}

	// Replaying the callback is rejected.
	w = env.do(t, http.MethodGet, u.RequestURI(), nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCallbackDenied(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/auth/notion/callback?error=access_denied", nil)
	expectStatus(t, w, http.StatusUnauthorized)
	if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
}

func TestManualConnectAndDisconnect(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/notion/manual", map[string]string{"token": "short"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/github/manual", map[string]string{"token": "ghp_long_enough_token"}), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/notion/manual", map[string]string{"token": "secret_long_enough"}), http.StatusOK)
	env.connect(t, domain.ServiceGitHub, "gho_other")

	statuses := decode[map[domain.Service]domain.ConnectionState](t, env.do(t, http.MethodGet, "/api/auth/status", nil))
	if statuses[domain.ServiceNotion] != domain.StateConnected {
		t.Fatalf("notion state = %q", statuses[domain.ServiceNotion])
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/auth/notion", nil), http.StatusOK)

	p, _ := env.profiles.Get(t.Context())
	if p.NotionToken != "" {
		t.Error("notion token not cleared")
	}
	if p.GitHubToken != "gho_other" {
		t.Error("disconnect must only clear the addressed token")
	}
}

func TestNotionExport(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"title": "Plan",
		"advice": domain.Advice{
			Analysis: "a", ShortTerm: []string{"s"}, MediumTerm: []string{"m"},
			LongTerm: []string{"l"}, Motivation: "go", FullMarkdown: "#",
		},
	}

	w := env.do(t, http.MethodPost, "/api/notion/export", body)
	expectStatus(t, w, http.StatusUnauthorized)
	if env.exportCount() != 0 {
		t.Fatal("no page may be created without a token")
	}

	env.connect(t, domain.ServiceNotion, "secret_token_value")
	w = env.do(t, http.MethodPost, "/api/notion/export", body)
	expectStatus(t, w, http.StatusOK)
	if decode[map[string]string](t, w)["id"] != "created-page" {
		t.Errorf("expected raw Notion response, got %s", w.Body.String())
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/notion/export", map[string]string{"title": "x"}), http.StatusBadRequest)
}

func TestGitHubRoutes(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodGet, "/api/github/repos", nil), http.StatusUnauthorized)

	env.connect(t, domain.ServiceGitHub, "gho_token")
	w := env.do(t, http.MethodGet, "/api/github/repos", nil)
	expectStatus(t, w, http.StatusOK)
	if repos := decode[[]map[string]any](t, w); len(repos) != 1 {
		t.Errorf("unexpected repos %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/github/readme?owner=ada&repo=careerdesk", nil)
	expectStatus(t, w, http.StatusOK)
	if decode[map[string]string](t, w)["content"] != "# careerdesk" {
		t.Errorf("readme = %s", w.Body.String())
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/github/readme?owner=ada", nil), http.StatusBadRequest)
}

func TestLinkedInUpdate(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPost, "/api/linkedin/update", map[string]string{"headline": "x"}), http.StatusUnauthorized)

	env.connect(t, domain.ServiceLinkedIn, oauth.LinkedInMockToken)
	w := env.do(t, http.MethodPost, "/api/linkedin/update", map[string]string{"headline": "Backend Engineer", "about": "Go"})
	expectStatus(t, w, http.StatusOK)
	got := decode[linkedin.Result](t, w)
	if !got.Success || got.Message != linkedin.SuccessMessage {
		t.Errorf("unexpected result %+v", got)
	}
}

const adviceJSON = `{"analysis":"Güçlü temel","shortTerm":["Go"],"mediumTerm":["K8s"],"longTerm":["Staff"],"motivation":"Devam!","fullMarkdown":"# Plan"}`

func TestGenerateAdviceAutoExport(t *testing.T) {
	env := newTestEnv(t)
	env.connect(t, domain.ServiceNotion, "secret_token_value")
	env.do(t, http.MethodPost, "/api/skills", map[string]any{"name": "Go", "level": 4})
	env.model.resp = &advice.Response{
		Text:     adviceJSON,
		Provider: "stub",
		ToolCalls: []advice.ToolInvocation{{
			Name: advice.ToolCreateNotionPage,
			Args: map[string]any{"title": "Yol Haritası", "planContent": "1. Go"},
		}},
	}

	w := env.do(t, http.MethodPost, "/api/advice", map[string]string{"task": "advice"})
	expectStatus(t, w, http.StatusOK)

	got := decode[adviceResponse](t, w)
	if got.Advice == nil || got.Advice.Motivation != "Devam!" {
		t.Errorf("advice = %+v", got.Advice)
	}
	if len(got.Exports) != 1 || got.Exports[0].Error != "" || got.Exports[0].Title != "Yol Haritası" {
		t.Errorf("exports = %+v", got.Exports)
	}
	if env.exportCount() != 1 {
		t.Errorf("expected one page creation, got %d", env.exportCount())
	}
	if prompt := env.model.lastPrompt(); !strings.Contains(prompt, "Go (Seviye: 4/5)") || !strings.Contains(prompt, "Notion Bağlantı Durumu: Bağlı\n") {
		t.Errorf("prompt does not reflect stored data:\n%s", prompt)
	}
}

func TestCreateSkillDefaultsMissingLevel(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPost, "/api/skills", map[string]any{"name": "Go"}), http.StatusCreated)

	skills := decode[[]domain.Skill](t, env.do(t, http.MethodGet, "/api/skills", nil))
	if len(skills) != 1 || skills[0].Level != domain.MinSkillLevel {
		t.Fatalf("unexpected skills %+v", skills)
	}
}

func TestWriteErrorLogsContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := NewHandler(Deps{Logger: zap.New(core)})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/notion/export", nil)
	h.writeError(w, r, apperr.External("notion request failed", nil).With("service", "notion").With("status", 503))

	expectStatus(t, w, http.StatusBadGateway)
	entries := logs.FilterMessage("Request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	ctx, ok := entries[0].ContextMap()["context"].(map[string]any)
	if !ok {
		t.Fatalf("context field missing: %+v", entries[0].ContextMap())
	}
	if ctx["service"] != "notion" || ctx["status"] != 503 {
		t.Errorf("context = %+v", ctx)
	}
}

func TestGenerateAdviceChunkedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"default task", `{"task":"advice"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.model.resp = &advice.Response{Text: adviceJSON}

			req := httptest.NewRequest(http.MethodPost, "/api/advice", io.NopCloser(strings.NewReader(tt.body)))
			if req.ContentLength != -1 {
				t.Fatalf("ContentLength = %d, want -1", req.ContentLength)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			expectStatus(t, w, http.StatusOK)
			if got := decode[adviceResponse](t, w); got.Advice == nil {
				t.Errorf("expected advice, got %s", w.Body.String())
			}
		})
	}
}

func TestGenerateAdviceSkipsExportWhenDisconnected(t *testing.T) {
	env := newTestEnv(t)
	env.model.resp = &advice.Response{
		Text: adviceJSON,
		ToolCalls: []advice.ToolInvocation{{
			Name: advice.ToolCreateNotionPage,
			Args: map[string]any{"title": "x", "planContent": "y"},
		}},
	}

	w := env.do(t, http.MethodPost, "/api/advice", nil)
	expectStatus(t, w, http.StatusOK)
	if env.exportCount() != 0 {
		t.Error("export must not run without a Notion connection")
	}
	if got := decode[adviceResponse](t, w); len(got.Exports) != 0 || len(got.ToolCalls) != 1 {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestGenerateAdviceLinkedIn(t *testing.T) {
	env := newTestEnv(t)
	env.model.resp = &advice.Response{ToolCalls: []advice.ToolInvocation{{
		Name: advice.ToolOptimizeLinkedIn,
		Args: map[string]any{"headline": "Go Engineer", "about": "x", "experienceTips": []any{"t"}, "skillsToHighlight": []any{"Go"}},
	}}}

	w := env.do(t, http.MethodPost, "/api/advice", map[string]string{"task": "linkedin_optimize"})
	expectStatus(t, w, http.StatusOK)
	got := decode[adviceResponse](t, w)
	if got.LinkedIn == nil || got.LinkedIn.Headline != "Go Engineer" {
		t.Errorf("linkedin = %+v", got.LinkedIn)
	}
	if got.Advice != nil {
		t.Error("expected no structured advice")
	}
}

func TestGenerateAdviceUnavailable(t *testing.T) {
	tests := []struct {
		name string
		resp *advice.Response
		err  error
	}{
		{"model error", nil, errors.New("503")},
		{"invalid json", &advice.Response{Text: "not json"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.model.resp, env.model.err = tt.resp, tt.err

			w := env.do(t, http.MethodPost, "/api/advice", nil)
			expectStatus(t, w, http.StatusBadGateway)
			if decode[map[string]string](t, w)["error"] != advice.UnavailableMessage {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestGenerateAdviceRejectsUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do(t, http.MethodPost, "/api/advice", map[string]string{"task": "resume"}), http.StatusBadRequest)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
