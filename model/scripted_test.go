//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedReplaysInOrder(t *testing.T) {
	s := NewScripted(
		ToolCall{Name: "get_system_state"},
		ToolCall{Name: "mouse_click", Arguments: map[string]any{"x": 1, "y": 2}},
	)

	first, err := s.SelectTool(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "get_system_state", first.Name)

	second, err := s.SelectTool(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "mouse_click", second.Name)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, second.Arguments)
}

func TestScriptedExhaustion(t *testing.T) {
	s := NewScripted(ToolCall{Name: "only"})
	_, err := s.SelectTool(context.Background(), &Request{})
	require.NoError(t, err)

	_, err = s.SelectTool(context.Background(), &Request{})
	require.ErrorIs(t, err, ErrNoToolCall)
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func(_ context.Context, instruction, prompt string) (string, error) {
		return instruction + "|" + prompt, nil
	})
	out, err := g.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "sys|user", out)
}
