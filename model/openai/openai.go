// Package openai provides an implementation of model.Client using the OpenAI
// Chat Completions API (including function/tool calling and schema-constrained
// output). It adapts cypher-core's normalized Request/Response structures into
// the SDK's message format and back.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/model"
)

// Options configure the OpenAI client.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Client wraps the OpenAI Chat Completions API behind the generic
// model.Client interface.
type Client struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI client using the official SDK client, which reads
// OPENAI_API_KEY from the environment.
func New(optFns ...func(o *Options)) *Client {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI client from an existing SDK client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

// ChatCompletion implements model.Client.
func (c *Client) ChatCompletion(ctx context.Context, req *model.Request) (*model.Response, error) {
	params := c.buildParams(req)
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	return extractResponse(resp)
}

// buildMessages converts normalized history into OpenAI chat messages,
// prepending the compiled system prompt.
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
		case core.RoleUser:
			if m.Image != nil {
				messages = append(messages, openai.UserMessage(imageParts(m)))
				continue
			}
			messages = append(messages, openai.UserMessage(m.Content))
		default:
			if m.Content != "" {
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
	}
	return messages
}

// imageParts builds the multi-part content for a user message carrying an image.
func imageParts(m core.Message) []openai.ChatCompletionContentPartUnionParam {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2)
	if m.Content != "" {
		parts = append(parts, openai.TextContentPart(m.Content))
	}
	parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
		URL: dataURL(m.Image),
	}))
	return parts
}

// dataURL encodes an image attachment as an inline data URL.
func dataURL(img *core.ImageData) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
}

// formatTools maps normalized tool definitions into the SDK's call-schema
// representation. Pure, no side effects.
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

// buildToolChoice decides the provider instruction for whether a tool must be
// invoked. An unset choice defaults to auto.
func buildToolChoice(choice model.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	if choice == "" {
		choice = model.ToolChoiceAuto
	}
	return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(string(choice))}
}

// buildParams assembles the OpenAI request. Tool mode includes formatted
// tools and the tool choice; schema mode asks for schema-conformant JSON via
// response_format; tools take precedence when both are present.
func (c *Client) buildParams(req *model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = formatTools(req.Tools)
		params.ToolChoice = buildToolChoice(req.ToolChoice)
		return params
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name(),
					Description: openai.String(req.Schema.Description()),
					Schema:      req.Schema.Definition(),
					Strict:      openai.Bool(true),
				},
			},
		}
	}
	return params
}

// extractResponse normalizes the provider payload into free text plus at most
// one function call. Absence of either is not an error.
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

// Info returns metadata describing this OpenAI client implementation.
func (c *Client) Info() model.Info {
	return model.Info{
		Provider:       "openai",
		Model:          c.opts.Model,
		SupportsImages: true,
		InlineSchema:   false,
	}
}

var _ model.Client = (*Client)(nil)
