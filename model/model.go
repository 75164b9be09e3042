//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package model defines the decision-maker contract: the component that,
// given the rendered instruction text and the registered declarations,
// picks the next tool call. The control loop treats it as an opaque
// collaborator.
package model

import (
	"context"
	"errors"

	"github.com/deskpilot-ai/deskpilot/tool"
)

// ErrNoToolCall indicates the decision-maker produced no tool call for a
// selection request. The loop treats it like an unknown-tool selection:
// recoverable up to the retry budget.
var ErrNoToolCall = errors.New("model returned no tool call")

// ToolCall is the decision-maker's selection: a tool name plus arguments.
type ToolCall struct {
	// Name is the selected tool's registry name.
	Name string
	// Arguments are the call arguments keyed by declared argument name.
	Arguments map[string]any
}

// Request carries everything a selector needs for one selection.
type Request struct {
	// Instruction is the rendered prompt describing tools, history and
	// context.
	Instruction string
	// Task is the user's goal for this run.
	Task string
	// Declarations lists the registered tools in registry order.
	Declarations []*tool.Declaration
	// Candidates restricts the selection to the named tools when non-empty
	// (follow-up constraint).
	Candidates []string
}

// Selector picks the next tool call.
type Selector interface {
	// SelectTool returns the chosen tool call for the request.
	SelectTool(ctx context.Context, req *Request) (*ToolCall, error)
}

// Generator produces a free-form text completion. Plan synthesis uses it to
// obtain the JSON plan before stepwise execution begins.
type Generator interface {
	// Generate returns the model's answer to prompt under the given standing
	// instruction.
	Generate(ctx context.Context, instruction, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, instruction, prompt string) (string, error)

// Generate implements the Generator interface.
func (f GeneratorFunc) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	return f(ctx, instruction, prompt)
}
