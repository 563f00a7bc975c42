package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/internal/util"
	"github.com/kingbootoshi/cypher-core/model"
	"github.com/kingbootoshi/cypher-core/tool"
)

// Fixed failure messages for structured output, distinguishing whether the
// rejected payload arrived as a function call or as free text.
const (
	errStructuredFromCall = "Failed to parse structured output from functionCall"
	errStructuredFromText = "Failed to parse structured output"
)

// Run executes one request/response cycle: compile the system prompt,
// dispatch the model call, interpret the response as plain text, tool call or
// schema-constrained JSON, grow the history and return a uniform result.
//
// input is optional; when non-empty it is appended as a user message before
// the model call. vars override registered prompt variables for this run
// only. Failures never panic; they surface as a RunResult with Success false
// and an empty output of the expected shape.
func (a *Agent) Run(ctx context.Context, input string, vars map[string]string) core.RunResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	snap := &core.RunSnapshot{
		RunID:     core.NewID(),
		AgentID:   a.traceID,
		StartedAt: start,
		Input:     input,
	}
	a.lastRun = snap

	a.logger.Debug("Run started", "agent", a.name, "run_id", snap.RunID)

	result := a.runLocked(ctx, snap, input, vars)

	snap.Success = result.Success
	snap.Error = result.Error
	snap.Sanitize(a.history)
	a.sink.PublishRun(a.traceID, snap)

	a.logger.Debug("Run finished",
		"agent", a.name,
		"run_id", snap.RunID,
		"success", result.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

// runLocked walks the run state machine; the caller must hold the lock and
// owns snapshot finalization.
func (a *Agent) runLocked(ctx context.Context, snap *core.RunSnapshot, input string, vars map[string]string) core.RunResult {
	defs := tool.Definitions(a.tools)
	hasTools := len(defs) > 0
	schemaMode := !hasTools && a.schema != nil

	prompt := a.compilePromptLocked(vars, schemaMode)
	snap.SystemPrompt = prompt

	// Providers without a schema slot in their request params get the format
	// contract injected into the conversation instead: one assistant message,
	// once per agent lifetime, before the upcoming model call.
	if schemaMode && a.client.Info().InlineSchema && !a.schemaInjected {
		a.schemaInjected = true
		a.appendLocked(core.NewAssistantMessage(a.inlineSchemaNotice()))
	}

	if input != "" {
		a.appendLocked(core.NewUserMessage(input))
	}

	req := &model.Request{
		System:   prompt,
		Messages: a.conversationLocked(),
	}
	if hasTools {
		req.Tools = defs
	} else if schemaMode {
		req.Schema = a.schema
	}

	resp, err := a.client.ChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("Model call failed", "agent", a.name, "error", err)
		return a.failureLocked(schemaMode, err.Error())
	}

	snap.ResponseText = resp.Text
	snap.FunctionCall = resp.FunctionCall
	snap.Usage = resp.Usage

	rendered := resp.Text
	if resp.FunctionCall != nil {
		rendered, err = tool.RenderCall(resp.FunctionCall)
		if err != nil {
			a.logger.Error("Tool call rendering failed", "agent", a.name, "error", err)
			return a.failureLocked(schemaMode, err.Error())
		}
	}

	if rendered != "" {
		a.addAgentMessageLocked(rendered)
	}
	a.sink.PublishResponse(a.traceID, rendered)

	if schemaMode {
		return a.structuredResultLocked(resp)
	}
	return core.RunResult{Success: true, Output: rendered}
}

// structuredResultLocked decodes a schema-mode response. A function call in
// schema mode is unexpected but its arguments are still given a chance to
// satisfy the schema before the run is failed.
func (a *Agent) structuredResultLocked(resp *model.Response) core.RunResult {
	if resp.FunctionCall != nil {
		parsed, err := a.schema.Parse(resp.FunctionCall.Arguments)
		if err != nil {
			a.logger.Warn("Structured output rejected", "agent", a.name, "source", "function_call", "error", err)
			return a.failureLocked(true, errStructuredFromCall)
		}
		return core.RunResult{Success: true, Output: parsed}
	}

	parsed, err := a.schema.Parse(resp.Text)
	if err != nil {
		a.logger.Warn("Structured output rejected", "agent", a.name, "source", "text", "error", err)
		return a.failureLocked(true, errStructuredFromText)
	}
	return core.RunResult{Success: true, Output: parsed}
}

// compilePromptLocked substitutes prompt variables, appends the schema
// contract in schema mode, overwrites the system slot at index 0 and
// publishes the result; the caller must hold the lock.
func (a *Agent) compilePromptLocked(overrides map[string]string, schemaMode bool) string {
	prompt := util.RenderPrompt(a.template, a.vars.Resolve(overrides))
	if schemaMode {
		prompt += "\n\n" + a.schema.Instruction()
	}

	if len(a.history) > 0 && a.history[0].Role == core.RoleSystem {
		a.history[0] = core.NewSystemMessage(prompt)
	} else {
		a.history = append([]core.Message{core.NewSystemMessage(prompt)}, a.history...)
	}

	a.sink.PublishSystemPrompt(a.traceID, prompt)
	return prompt
}

// conversationLocked returns the history without the leading system message;
// the compiled prompt travels in the request's dedicated system field.
func (a *Agent) conversationLocked() []core.Message {
	if len(a.history) > 0 && a.history[0].Role == core.RoleSystem {
		return core.CloneMessages(a.history[1:])
	}
	return core.CloneMessages(a.history)
}

// inlineSchemaNotice is the assistant-voiced commitment injected for
// providers that cannot carry the schema in request params.
func (a *Agent) inlineSchemaNotice() string {
	return fmt.Sprintf(
		"Understood. I will reply with a single JSON object conforming to the %q schema, with no prose and no code fences.",
		a.schema.Name(),
	)
}

// failureLocked builds the uniform failure result with an empty output of the
// expected shape; the caller must hold the lock.
func (a *Agent) failureLocked(schemaMode bool, msg string) core.RunResult {
	var output any = ""
	if schemaMode {
		output = a.schema.Empty()
	}
	return core.RunResult{Success: false, Output: output, Error: msg}
}
