//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
)

func testDecls() []*tool.Declaration {
	return []*tool.Declaration{
		{
			Name:        "retrieve_ui_reference",
			Description: "Search for UI elements.",
			Args: []tool.Arg{
				{Name: "query", Type: tool.ArgString, Description: "what to find"},
			},
			Category:            tool.CategorySearch,
			Behavior:            tool.BehaviorRequiresFollowup,
			FollowupSuggestions: []string{"detect_ui_elements"},
		},
		{
			Name:        "detect_ui_elements",
			Description: "Detect a template on screen.",
			Args: []tool.Arg{
				{Name: "template", Type: tool.ArgString},
			},
			Category: tool.CategoryDetection,
			Behavior: tool.BehaviorIntermediate,
		},
		{
			Name:        "mouse_click",
			Description: "Click at coordinates.",
			Args: []tool.Arg{
				{Name: "x", Type: tool.ArgInt},
				{Name: "y", Type: tool.ArgInt},
				{Name: "button", Type: tool.ArgString, Optional: true},
			},
			Category: tool.CategoryAction,
			Behavior: tool.BehaviorIntermediate,
		},
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder()
	decls := testDecls()
	history := []session.StepRecord{
		{Tool: "retrieve_ui_reference", Arguments: map[string]any{"query": "logo"},
			Classification: tool.ClassificationSuccess, Summary: "Best match: browser_logo"},
	}
	contextState := map[string]any{
		"last_reference": "browser_logo",
		"active_app":     "browser",
	}

	first := b.Build(decls, history, contextState, nil)
	second := b.Build(decls, history, contextState, nil)
	assert.Equal(t, first, second)
}

func TestBuildListsEveryToolInRegistryOrder(t *testing.T) {
	b := NewBuilder()
	out := b.Build(testDecls(), nil, nil, nil)

	first := strings.Index(out, "## retrieve_ui_reference")
	second := strings.Index(out, "## detect_ui_elements")
	third := strings.Index(out, "## mouse_click")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestBuildRendersArgumentsAndFollowups(t *testing.T) {
	out := NewBuilder().Build(testDecls(), nil, nil, nil)
	assert.Contains(t, out, "- query (string, required): what to find")
	assert.Contains(t, out, "- button (string, optional)")
	assert.Contains(t, out, "Follow up with: detect_ui_elements")
}

func TestBuildRendersHistory(t *testing.T) {
	history := []session.StepRecord{
		{Tool: "detect_ui_elements", Arguments: map[string]any{"template": "browser_logo"},
			Classification: tool.ClassificationSuccess, Summary: "Found browser_logo at (150, 80)"},
		{Tool: "mouse_click", Arguments: map[string]any{"x": 150, "y": 80},
			Classification: tool.ClassificationFailure, Summary: "Click failed"},
	}
	out := NewBuilder().Build(testDecls(), history, nil, nil)
	assert.Contains(t, out, `1. detect_ui_elements({"template":"browser_logo"}) -> success: Found browser_logo at (150, 80)`)
	assert.Contains(t, out, `2. mouse_click({"x":150,"y":80}) -> failure: Click failed`)
}

func TestBuildConstraintSection(t *testing.T) {
	b := NewBuilder()

	free := b.Build(testDecls(), nil, nil, nil)
	assert.Contains(t, free, "Select the single best tool call")

	constrained := b.Build(testDecls(), nil, nil, []string{"detect_ui_elements", "detect_ui_regions"})
	assert.Contains(t, constrained, "You MUST select one of: detect_ui_elements, detect_ui_regions.")
}

func TestBuildContextKeysSorted(t *testing.T) {
	contextState := map[string]any{
		"zeta":  1,
		"alpha": "first",
	}
	out := NewBuilder().Build(testDecls(), nil, contextState, nil)
	alpha := strings.Index(out, "- alpha:")
	zeta := strings.Index(out, "- zeta:")
	require.True(t, alpha >= 0 && zeta >= 0)
	assert.Less(t, alpha, zeta)
}

func TestWithPreamble(t *testing.T) {
	out := NewBuilder(WithPreamble("custom preamble")).Build(testDecls(), nil, nil, nil)
	assert.True(t, strings.HasPrefix(out, "custom preamble"))
	assert.NotContains(t, out, "desktop automation agent")
}
