//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package openai implements the decision-maker contract on top of any
// OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/deskpilot-ai/deskpilot/log"
	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// defaultTemperature keeps tool selection near-deterministic.
const defaultTemperature = 0.1

// Option is a function that configures the Selector.
type Option func(*options)

type options struct {
	apiKey  string
	baseURL string
}

// WithAPIKey sets the API key. Defaults to the OPENAI_API_KEY environment
// variable.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint such as a
// local inference server.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// Selector picks tool calls by asking an OpenAI-compatible model.
type Selector struct {
	client openai.Client
	name   string
}

var (
	_ model.Selector  = (*Selector)(nil)
	_ model.Generator = (*Selector)(nil)
)

// New creates a Selector for the named model.
func New(name string, opts ...Option) *Selector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		o.apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}

	return &Selector{
		client: openai.NewClient(clientOpts...),
		name:   name,
	}
}

// SelectTool implements the model.Selector interface. It sends the rendered
// instruction, the task and the tool schemas in a single non-streaming chat
// completion and returns the first tool call of the response.
func (s *Selector) SelectTool(ctx context.Context, req *model.Request) (*model.ToolCall, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.name),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instruction),
			openai.UserMessage(req.Task),
		},
		Tools:       convertTools(req.Declarations, req.Candidates),
		Temperature: openai.Float(defaultTemperature),
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, model.ErrNoToolCall
	}
	message := completion.Choices[0].Message
	if len(message.ToolCalls) == 0 {
		log.Debugf("model answered without a tool call: %.120s", message.Content)
		return nil, model.ErrNoToolCall
	}

	call := message.ToolCalls[0]
	args := make(map[string]any)
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("decode tool call arguments for %s: %w", call.Function.Name, err)
		}
	}
	return &model.ToolCall{Name: call.Function.Name, Arguments: args}, nil
}

// Generate implements the model.Generator interface with a plain chat
// completion carrying no tool schemas.
func (s *Selector) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.name),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(defaultTemperature),
	}
	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// convertTools translates declarations into chat completion tool params.
// When candidates is non-empty only those tools are offered, which enforces
// the follow-up constraint at the API level.
func convertTools(decls []*tool.Declaration, candidates []string) []openai.ChatCompletionToolParam {
	allowed := make(map[string]bool, len(candidates))
	for _, name := range candidates {
		allowed[name] = true
	}
	var result []openai.ChatCompletionToolParam
	for _, decl := range decls {
		if len(candidates) > 0 && !allowed[decl.Name] {
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        decl.Name,
				Description: openai.String(decl.Description),
				Parameters:  convertParameters(decl),
			},
		})
	}
	return result
}

func convertParameters(decl *tool.Declaration) shared.FunctionParameters {
	properties := make(map[string]any, len(decl.Args))
	var required []string
	for _, arg := range decl.Args {
		properties[arg.Name] = map[string]any{
			"type":        jsonType(arg.Type),
			"description": arg.Description,
		}
		if !arg.Optional {
			required = append(required, arg.Name)
		}
	}
	params := shared.FunctionParameters{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return params
}

func jsonType(t tool.ArgType) string {
	switch t {
	case tool.ArgInt:
		return "integer"
	case tool.ArgFloat:
		return "number"
	case tool.ArgBool:
		return "boolean"
	default:
		return "string"
	}
}
