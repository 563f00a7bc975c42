// Package fireworks provides an implementation of model.Client for the
// Fireworks AI inference API, which speaks the OpenAI chat completion
// protocol. Structured output uses JSON object mode, so the client reports
// InlineSchema and relies on callers to place format instructions in the
// conversation.
package fireworks

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/model"
)

const defaultBaseURL = "https://api.fireworks.ai/inference/v1"

// Options configure the Fireworks client.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
}

// Client wraps the Fireworks inference API behind the generic model.Client
// interface.
type Client struct {
	client *openai.Client
	opts   Options
}

// New creates a new Fireworks client. Without an explicit APIKey option the
// key is read from FIREWORKS_API_KEY.
func New(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("FIREWORKS_API_KEY")
	}
	client := openai.NewClient(
		option.WithBaseURL(opts.BaseURL),
		option.WithAPIKey(apiKey),
	)

	return &Client{client: &client, opts: opts}
}

// NewFromClient creates a new Fireworks client from an existing SDK client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       "accounts/fireworks/models/llama-v3p1-70b-instruct",
		Temperature: 0.7,
		MaxTokens:   4096,
		BaseURL:     defaultBaseURL,
	}
}

// ChatCompletion implements model.Client.
func (c *Client) ChatCompletion(ctx context.Context, req *model.Request) (*model.Response, error) {
	params := c.buildParams(req)
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fireworks api error: %w", err)
	}
	return extractResponse(resp)
}

// buildMessages converts normalized history into chat messages. Images are
// dropped; the hosted models are text only.
func buildMessages(req *model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			if m.Content != "" {
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
	}
	return messages
}

// formatTools maps normalized tool definitions into the OpenAI-compatible
// call-schema representation.
func formatTools(tools []model.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))
	for i, tdef := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	return out
}

// buildParams assembles the request. Schema mode downgrades to JSON object
// mode; the schema itself is injected into the history upstream.
func (c *Client) buildParams(req *model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:    buildMessages(req),
		Model:       c.opts.Model,
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(c.opts.MaxTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = formatTools(req.Tools)
		choice := req.ToolChoice
		if choice == "" {
			choice = model.ToolChoiceAuto
		}
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(choice)),
		}
		return params
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

// extractResponse normalizes the provider payload into free text plus at most
// one function call.
func extractResponse(resp *openai.ChatCompletion) (*model.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	msg := resp.Choices[0].Message
	out := &model.Response{ID: resp.ID, Text: msg.Content}
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		out.FunctionCall = &core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &core.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	return out, nil
}

// Info returns metadata describing this Fireworks client implementation.
func (c *Client) Info() model.Info {
	return model.Info{
		Provider:       "fireworks",
		Model:          c.opts.Model,
		SupportsImages: false,
		InlineSchema:   true,
	}
}

var _ model.Client = (*Client)(nil)
