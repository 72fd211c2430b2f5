package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ashureev/careerdesk/internal/advice"
	"github.com/ashureev/careerdesk/internal/config"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/events"
	"github.com/ashureev/careerdesk/internal/github"
	"github.com/ashureev/careerdesk/internal/linkedin"
	"github.com/ashureev/careerdesk/internal/notion"
	"github.com/ashureev/careerdesk/internal/oauth"
	"github.com/ashureev/careerdesk/internal/profile"
	"github.com/ashureev/careerdesk/internal/store"
	"github.com/go-chi/chi/v5"
)

// shortClientID is configured for GitHub so its URL builder fails.
const shortClientID = "abc"

type stubModel struct {
	mu   sync.Mutex
	resp *advice.Response
	err  error
	reqs []advice.Request
}

func (m *stubModel) Name() string { return "stub" }

func (m *stubModel) Generate(_ context.Context, req advice.Request) (*advice.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *stubModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reqs) == 0 {
		return ""
	}
	return m.reqs[len(m.reqs)-1].Prompt
}

type testEnv struct {
	router   chi.Router
	handler  *Handler
	repo     *store.SQLiteStore
	profiles *profile.Service
	model    *stubModel
	hub      *events.Hub
	pageHits *int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := store.NewSQLite(store.MemoryPath, nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	var pageHits int32
	notionSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/search":
			_, _ = w.Write([]byte(`{"results":[{"object":"page","id":"parent"}]}`))
		case "/v1/pages":
			atomic.AddInt32(&pageHits, 1)
			_, _ = w.Write([]byte(`{"object":"page","id":"created-page"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(notionSrv.Close)

	githubSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/user/repos":
			_, _ = w.Write([]byte(`[{"id":1,"name":"careerdesk","full_name":"ada/careerdesk","owner":{"login":"ada"}}]`))
		case strings.HasSuffix(r.URL.Path, "/readme"):
			_, _ = w.Write([]byte("# careerdesk"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(githubSrv.Close)

	profiles := profile.NewService(repo, "", nil)
	hub := events.NewHub(nil, nil)
	deps := oauth.Deps{Tokens: profiles, Events: hub}
	baseURL := "http://localhost:3000"

	registry := oauth.NewRegistry(profiles,
		oauth.NewConnector(oauth.NotionProvider(config.NotionConfig{
			ClientID: "notion-client-id",
			AuthURL:  "https://api.notion.com/v1/oauth/authorize",
			TokenURL: notionSrv.URL + "/v1/oauth/token",
		}), baseURL, deps),
		oauth.NewConnector(oauth.GitHubProvider(config.GitHubConfig{
			ClientID: shortClientID,
			AuthURL:  "https://github.com/login/oauth/authorize",
			TokenURL: githubSrv.URL + "/login/oauth/access_token",
		}), baseURL, deps),
		oauth.NewConnector(oauth.LinkedInProvider(config.LinkedInConfig{}), baseURL, deps),
	)

	model := &stubModel{}
	h := NewHandler(Deps{
		Repo:       repo,
		Profiles:   profiles,
		Connectors: registry,
		Notion:     notion.NewClient(notionSrv.URL, notionSrv.Client(), nil),
		GitHub:     github.NewClient(githubSrv.URL, githubSrv.Client(), nil),
		LinkedIn:   linkedin.NewUpdater(profiles, nil),
		Advice:     advice.NewGenerator(model, nil),
	})

	r := chi.NewRouter()
	NewHealthHandler(repo, true, nil).RegisterHealth(r)
	h.RegisterRoutes(r)

	return &testEnv{
		router:   r,
		handler:  h,
		repo:     repo,
		profiles: profiles,
		model:    model,
		hub:      hub,
		pageHits: &pageHits,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) connect(t *testing.T, s domain.Service, token string) {
	t.Helper()
	if err := e.profiles.SetToken(context.Background(), s, token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
}

func (e *testEnv) exportCount() int32 {
	return atomic.LoadInt32(e.pageHits)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
