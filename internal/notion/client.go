// Package notion exports career plans to Notion pages.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/oauth"
	"go.uber.org/zap"
)

// APIVersion is sent as the Notion-Version header.
const APIVersion = "2022-06-28"

// DefaultTitle is used when an export has no title.
const DefaultTitle = "Kariyer Planı"

const maxErrorBody = 4 << 10

// Client talks to the Notion REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL (normally https://api.notion.com).
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

type searchRequest struct {
	Filter   searchFilter `json:"filter"`
	PageSize int          `json:"page_size"`
}

type searchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type searchResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

type pageRequest struct {
	Parent     pageParent            `json:"parent"`
	Properties map[string][]RichText `json:"properties"`
	Children   []Block               `json:"children"`
}

type pageParent struct {
	PageID string `json:"page_id"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Export creates a page holding advice under the first page the token can
// access and returns Notion's raw response. It fails with an auth error
// before any request when token is empty, and never retries.
func (c *Client) Export(ctx context.Context, token string, advice domain.Advice, title string) (json.RawMessage, error) {
	if token == "" {
		return nil, apperr.Auth("Notion is not connected")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	client := oauth.BearerClient(ctx, c.httpClient, token)

	parentID, err := c.firstPage(ctx, client)
	if err != nil {
		return nil, err
	}

	blocks := BuildBlocks(advice)
	req := pageRequest{
		Parent: pageParent{PageID: parentID},
		Properties: map[string][]RichText{
			"title": {{Type: "text", Text: Text{Content: clip(title)}}},
		},
		Children: blocks,
	}

	var raw json.RawMessage
	if err := c.post(ctx, client, "/v1/pages", req, &raw); err != nil {
		return nil, err
	}

	c.logger.Info("Exported plan to Notion",
		zap.String("parent_id", parentID),
		zap.Int("blocks", len(blocks)),
	)
	return raw, nil
}

// firstPage resolves the export destination: the first page a search returns.
func (c *Client) firstPage(ctx context.Context, client *http.Client) (string, error) {
	req := searchRequest{
		Filter:   searchFilter{Property: "object", Value: "page"},
		PageSize: 1,
	}

	var resp searchResponse
	if err := c.post(ctx, client, "/v1/search", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].ID == "" {
		return "", apperr.External("no Notion page is shared with the integration", nil)
	}
	return resp.Results[0].ID, nil
}

func (c *Client) post(ctx context.Context, client *http.Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := client.Do(req)
	if err != nil {
		return apperr.External("Notion request failed", err).With("path", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		c.logger.Warn("Notion API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return apperr.External("Failed to export to Notion",
			fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, apiErr.Message)).
			With("status", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.External("Notion returned an unreadable response", err).With("path", path)
	}
	return nil
}
