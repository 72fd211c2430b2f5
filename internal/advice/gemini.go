package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-3-flash-preview"

// GeminiModel calls the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini API client for apiKey.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiModel wraps client.
func NewGeminiModel(client *genai.Client, model string, logger *zap.Logger) *GeminiModel {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiModel{client: client, model: model, logger: logger}
}

// Name implements Model.
func (g *GeminiModel) Name() string {
	return "Gemini"
}

// Generate implements Model.
func (g *GeminiModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.client == nil {
		return nil, errors.New("gemini client not initialized")
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: req.Tools}}
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.ResponseSchema
	}

	g.logger.Debug("Generating with Gemini",
		zap.String("model", g.model),
		zap.Int("tools", len(req.Tools)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: req.Prompt}}},
	}, cfg)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return nil, err
	}

	out := &Response{Provider: g.Name(), Model: g.model}
	out.Text, out.ToolCalls = readCandidate(resp)
	return out, nil
}

// readCandidate collects text and function calls of the first candidate.
func readCandidate(resp *genai.GenerateContentResponse) (string, []ToolInvocation) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", nil
	}

	var texts []string
	var calls []ToolInvocation
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			calls = append(calls, ToolInvocation{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, ""), calls
}
