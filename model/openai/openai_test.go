//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/tool"
)

func declFixture() []*tool.Declaration {
	return []*tool.Declaration{
		{
			Name:        "mouse_click",
			Description: "Click at coordinates.",
			Args: []tool.Arg{
				{Name: "x", Type: tool.ArgInt, Description: "X coordinate"},
				{Name: "y", Type: tool.ArgInt, Description: "Y coordinate"},
				{Name: "button", Type: tool.ArgString, Optional: true},
				{Name: "smooth", Type: tool.ArgBool, Optional: true},
				{Name: "speed", Type: tool.ArgFloat, Optional: true},
			},
			Category: tool.CategoryAction,
			Behavior: tool.BehaviorIntermediate,
		},
		{
			Name:        "detect_text",
			Description: "Read text on screen.",
			Category:    tool.CategoryDetection,
			Behavior:    tool.BehaviorTerminal,
		},
	}
}

func TestConvertToolsUnconstrained(t *testing.T) {
	params := convertTools(declFixture(), nil)
	require.Len(t, params, 2)
	assert.Equal(t, "mouse_click", params[0].Function.Name)
	assert.Equal(t, "detect_text", params[1].Function.Name)
}

func TestConvertToolsFiltersToCandidates(t *testing.T) {
	params := convertTools(declFixture(), []string{"detect_text"})
	require.Len(t, params, 1)
	assert.Equal(t, "detect_text", params[0].Function.Name)
}

func TestConvertParameters(t *testing.T) {
	params := convertParameters(declFixture()[0])
	assert.Equal(t, "object", params["type"])

	properties, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, properties, 5)

	x, ok := properties["x"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", x["type"])
	assert.Equal(t, "X coordinate", x["description"])

	required, ok := params["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"x", "y"}, required)
}

func TestConvertParametersNoRequired(t *testing.T) {
	params := convertParameters(declFixture()[1])
	_, ok := params["required"]
	assert.False(t, ok)
}

func TestJSONType(t *testing.T) {
	assert.Equal(t, "integer", jsonType(tool.ArgInt))
	assert.Equal(t, "number", jsonType(tool.ArgFloat))
	assert.Equal(t, "boolean", jsonType(tool.ArgBool))
	assert.Equal(t, "string", jsonType(tool.ArgString))
}
