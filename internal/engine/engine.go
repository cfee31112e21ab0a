// Package engine drives the generate→tool-call→re-generate loop that turns a
// question into a prose answer backed by live catalog lookups.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/datasage/datasage/internal/schema"
)

// Engine answers questions by iterating model calls against the tool
// gateway until the model produces a terminal text answer.
type Engine struct {
	modelName string
	maxTokens int
	maxRounds int
	invoker   schema.ToolInvoker

	// generate issues one model call; swapped out by tests.
	generate func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// New builds an Engine talking to the Anthropic API.
func New(apiKey, modelName string, maxTokens, maxRounds int, invoker schema.ToolInvoker) *Engine {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Engine{
		modelName: modelName,
		maxTokens: maxTokens,
		maxRounds: maxRounds,
		invoker:   invoker,
		generate: func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
			return client.Messages.New(ctx, params)
		},
	}
}

// toolRequest is one tool_use block lifted out of a model response.
type toolRequest struct {
	id    string
	name  string
	input map[string]any
}

// Answer runs the orchestration loop for one question. history carries prior
// conversation turns as plain text and may be empty. A model invocation
// failure propagates to the caller; everything below it degrades in place.
func (e *Engine) Answer(ctx context.Context, question, history string) (schema.Answer, error) {
	slog.Info("answering question", "question", question)

	tools := e.toolParams(e.invoker.DiscoverTools(ctx))

	prompt := fmt.Sprintf(catalogExpertPrompt, history, question)
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	for round := 0; round < e.maxRounds; round++ {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(e.modelName),
			MaxTokens: int64(e.maxTokens),
			Messages:  messages,
		}
		if len(tools) > 0 {
			params.Tools = tools
		}

		msg, err := e.generate(ctx, params)
		if err != nil {
			return schema.Answer{}, fmt.Errorf("model invocation: %w", err)
		}
		messages = append(messages, msg.ToParam())

		requests := toolRequests(msg)
		if len(requests) == 0 {
			return schema.NewAnswer(question, firstText(msg)), nil
		}

		results := e.dispatch(ctx, requests)
		messages = append(messages, toolResultMessage(requests, results))
	}

	slog.Warn("round budget exhausted", "question", question, "rounds", e.maxRounds)
	return schema.NewAnswer(question, maxRoundsAnswer), nil
}

// dispatch executes all requested tools concurrently and returns their text
// payloads indexed by request position, so the conversation reassembles in
// the original request order no matter which call finishes first. A failed
// invocation becomes an inline error payload for that request only.
func (e *Engine) dispatch(ctx context.Context, requests []toolRequest) []string {
	if len(requests) > 1 {
		slog.Info("executing tools concurrently", "count", len(requests))
	}

	results := make([]string, len(requests))
	var g errgroup.Group
	for i, req := range requests {
		g.Go(func() error {
			slog.Info("executing tool", "tool", req.name)
			out, err := e.invoker.Invoke(ctx, req.name, req.input)
			if err != nil {
				slog.Error("tool execution failed", "tool", req.name, "err", err)
				results[i] = fmt.Sprintf("Error executing tool: %v", err)
				return nil
			}
			results[i] = out
			return nil
		})
	}
	g.Wait()
	return results
}

// toolResultMessage packs one round's results plus the fixed instruction
// block into a single user turn.
func toolResultMessage(requests []toolRequest, results []string) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(requests)+1)
	for i, req := range requests {
		blocks = append(blocks, anthropic.NewToolResultBlock(req.id, results[i], false))
	}
	blocks = append(blocks, anthropic.NewTextBlock(toolResultsInstruction))
	return anthropic.NewUserMessage(blocks...)
}

// toolRequests extracts the tool_use blocks from a model response.
func toolRequests(msg *anthropic.Message) []toolRequest {
	var requests []toolRequest
	for _, block := range msg.Content {
		if use, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			var input map[string]any
			if err := json.Unmarshal(use.Input, &input); err != nil {
				slog.Warn("unparseable tool input", "tool", use.Name, "err", err)
				input = map[string]any{}
			}
			requests = append(requests, toolRequest{id: use.ID, name: use.Name, input: input})
		}
	}
	return requests
}

// firstText returns the first text content block, or "" when none exists.
func firstText(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			return text.Text
		}
	}
	return ""
}

// toolParams converts discovered descriptors into the model API's tool list.
func (e *Engine) toolParams(tools []schema.ToolDescriptor) []anthropic.ToolUnionParam {
	var params []anthropic.ToolUnionParam
	for _, tool := range tools {
		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
		}

		schemaParam := anthropic.ToolInputSchemaParam{}
		if props, ok := tool.InputSchema["properties"]; ok {
			schemaParam.Properties = props
		}
		if reqIface, ok := tool.InputSchema["required"].([]any); ok {
			for _, r := range reqIface {
				if s, ok := r.(string); ok {
					schemaParam.Required = append(schemaParam.Required, s)
				}
			}
		} else if req, ok := tool.InputSchema["required"].([]string); ok {
			schemaParam.Required = req
		}
		toolParam.InputSchema = schemaParam

		params = append(params, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return params
}
