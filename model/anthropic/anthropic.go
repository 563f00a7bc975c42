// Package anthropic provides an implementation of model.Client using the
// Anthropic Messages API. Claude has no native schema-constrained output
// mode, so the client reports InlineSchema and relies on callers to place
// format instructions in the conversation.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/model"
)

// Options configure the Anthropic client (model id, temperature, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind the generic model.Client
// interface.
type Client struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic client using the official SDK client. Without
// an explicit APIKey option the SDK reads ANTHROPIC_API_KEY from the
// environment.
func New(optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Client{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic client from an existing SDK client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// ChatCompletion implements model.Client.
func (c *Client) ChatCompletion(ctx context.Context, req *model.Request) (*model.Response, error) {
	params := c.buildParams(req)
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}
	return extractResponse(resp), nil
}

// buildParams assembles the Messages API request. The compiled system prompt
// travels in the dedicated system field; schema requests carry no extra
// parameter because format instructions are injected into the history
// upstream.
func (c *Client) buildParams(req *model.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.opts.Model),
		Messages:    buildMessages(req.Messages),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = formatTools(req.Tools)
		params.ToolChoice = buildToolChoice(req.ToolChoice)
	}
	return params
}

// buildMessages converts normalized history into Anthropic message params.
// System messages are skipped here; they are carried separately.
func buildMessages(history []core.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			if m.Content != "" {
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			}
		default:
			// Unknown roles degrade to user messages.
			if blocks := userBlocks(m); len(blocks) > 0 {
				messages = append(messages, anthropic.NewUserMessage(blocks...))
			}
		}
	}

	return messages
}

// userBlocks builds the content blocks for a user message, attaching the
// image as a base64 block when present.
func userBlocks(m core.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	if m.Image != nil {
		encoded := base64.StdEncoding.EncodeToString(m.Image.Data)
		blocks = append(blocks, anthropic.NewImageBlockBase64(m.Image.MIMEType, encoded))
	}
	return blocks
}

// formatTools maps normalized tool definitions into Anthropic's input schema
// representation.
func formatTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := tdef.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			inputSchema.Required = requiredNames(params["required"])
		}

		tool := anthropic.ToolUnionParamOfTool(inputSchema, tdef.Function.Name)
		if tdef.Function.Description != "" {
			tool.OfTool.Description = anthropic.String(tdef.Function.Description)
		}
		out[i] = tool
	}

	return out
}

// requiredNames normalizes the required list, which arrives either as
// []string from hand-built schemas or []any from unmarshalled JSON.
func requiredNames(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

// buildToolChoice decides the provider instruction for whether a tool must be
// invoked. An unset choice defaults to auto.
func buildToolChoice(choice model.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case model.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case model.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

// extractResponse normalizes the provider payload into free text plus at most
// one function call.
func extractResponse(resp *anthropic.Message) *model.Response {
	out := &model.Response{ID: resp.ID}

	var texts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				texts = append(texts, textBlock.Text)
			}
		case "tool_use":
			if out.FunctionCall != nil {
				continue
			}
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(argsBytes)
				}
			}
			out.FunctionCall = &core.FunctionCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			}
		}
	}
	out.Text = strings.Join(texts, "\n")

	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		out.Usage = &core.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		}
	}

	return out
}

// Info returns metadata describing this Anthropic client implementation.
func (c *Client) Info() model.Info {
	return model.Info{
		Provider:       "anthropic",
		Model:          c.opts.Model,
		SupportsImages: true,
		InlineSchema:   true,
	}
}

var _ model.Client = (*Client)(nil)
