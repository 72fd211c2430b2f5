// Package github reads repositories and READMEs for the connected GitHub user.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/oauth"
	"go.uber.org/zap"
)

const (
	acceptJSON = "application/vnd.github+json"
	acceptRaw  = "application/vnd.github.v3.raw"

	// RepoPageSize is the number of repositories returned by ListRepos.
	RepoPageSize = 10

	maxReadmeBytes = 1 << 20
	maxErrorBody   = 4 << 10
)

// Repo is the subset of a GitHub repository the dashboard renders.
type Repo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	Private     bool      `json:"private"`
	Owner       Owner     `json:"owner"`
}

// Owner identifies a repository owner.
type Owner struct {
	Login string `json:"login"`
}

// Client calls the GitHub REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL (normally https://api.github.com).
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// ListRepos returns the user's most recently updated repositories.
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	if token == "" {
		return nil, apperr.Auth("GitHub is not connected")
	}

	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(RepoPageSize))

	resp, err := c.get(ctx, token, "/user/repos?"+q.Encode(), acceptJSON)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	repos := []Repo{}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, apperr.External("GitHub returned an unreadable response", err)
	}
	return repos, nil
}

// Readme returns the raw README of owner/repo.
func (c *Client) Readme(ctx context.Context, token, owner, repo string) (string, error) {
	if token == "" {
		return "", apperr.Auth("GitHub is not connected")
	}
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return "", apperr.Validation("owner and repo are required")
	}

	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/readme"
	resp, err := c.get(ctx, token, path, acceptRaw)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeBytes))
	if err != nil {
		return "", apperr.External("Failed to read README", err)
	}
	return string(data), nil
}

// get performs a GET and maps non-2xx statuses to application errors.
// The caller closes the body on success.
func (c *Client) get(ctx context.Context, token, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := oauth.BearerClient(ctx, c.httpClient, token).Do(req)
	if err != nil {
		return nil, apperr.External("GitHub request failed", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)

	c.logger.Warn("GitHub API error",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", body.Message),
	)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, apperr.NotFound("GitHub resource not found").With("path", path)
	case http.StatusUnauthorized:
		return nil, apperr.Auth("GitHub token was rejected")
	default:
		return nil, apperr.External("GitHub API error",
			fmt.Errorf("status %d: %s", resp.StatusCode, body.Message)).
			With("status", resp.StatusCode)
	}
}
