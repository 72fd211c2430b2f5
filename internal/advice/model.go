// Package advice generates career recommendations with a generative model.
package advice

import (
	"context"

	"google.golang.org/genai"
)

// Request is a single model call.
type Request struct {
	System         string
	Prompt         string
	Tools          []*genai.FunctionDeclaration
	ResponseSchema *genai.Schema
}

// Response is what a model produced. Text holds the JSON payload, if any.
type Response struct {
	Text      string
	ToolCalls []ToolInvocation
	Provider  string
	Model     string
}

// ToolInvocation is a function call requested by the model.
type ToolInvocation struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Model is a generative backend.
type Model interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}
