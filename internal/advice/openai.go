package advice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// DefaultOpenAIModel is used when no fallback model name is configured.
const DefaultOpenAIModel = "gpt-4.1-mini"

const openAIMaxTokens = 4096

// OpenAIModel is the JSON-mode fallback. It does not advertise tools.
type OpenAIModel struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIModel returns nil when apiKey is empty.
func NewOpenAIModel(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *OpenAIModel {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIModel{client: &client, model: model, logger: logger}
}

// Name implements Model.
func (o *OpenAIModel) Name() string {
	return "OpenAI"
}

// Generate implements Model.
func (o *OpenAIModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("OpenAI client not initialized")
	}

	o.logger.Info("Fallback: Generating with OpenAI", zap.String("model", o.model))

	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(jsonInstruction(req)),
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(openAIMaxTokens),
	}
	if req.ResponseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in OpenAI response")
	}

	o.logger.Info("OpenAI response received",
		zap.Int("length", len(resp.Choices[0].Message.Content)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return &Response{
		Text:     resp.Choices[0].Message.Content,
		Provider: o.Name(),
		Model:    o.model,
	}, nil
}

// jsonInstruction folds the response schema into the system message.
func jsonInstruction(req Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	b.WriteString("You must respond with valid JSON only. Do not include any text outside the JSON object.")
	if req.ResponseSchema != nil {
		if schema, err := json.Marshal(req.ResponseSchema); err == nil {
			b.WriteString("\nThe JSON object must match this schema: ")
			b.Write(schema)
		}
	}
	return b.String()
}
