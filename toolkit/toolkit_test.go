//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/tool"
)

func newTestRegistry(t *testing.T, sim *desktop.Sim) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()
	require.NoError(t, Register(reg, Deps{
		Screen:  sim,
		OCR:     sim,
		Matcher: sim,
		Overlay: sim,
		Input:   sim,
		Files:   sim,
	}))
	return reg
}

func callTool(t *testing.T, reg *tool.Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	callable, err := reg.Resolve(name)
	require.NoError(t, err)
	result, err := callable.Call(context.Background(), args)
	require.NoError(t, err)
	return result
}

func TestRegisterCatalog(t *testing.T) {
	reg := newTestRegistry(t, desktop.NewSim())

	decls := reg.All()
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"get_system_state", "retrieve_ui_reference",
		"detect_ui_elements", "detect_ui_regions", "detect_text",
		"mouse_click", "mouse_move", "mouse_scroll", "mouse_drag",
		"type_text", "clear_and_type", "press_key", "hold_keys",
		"keyboard_shortcut", "draw_overlay", "find_file",
	}, names)

	// Finalized: every follow-up suggestion resolved, registry read-only.
	err := reg.Register(nil)
	require.ErrorIs(t, err, tool.ErrRegistryFinalized)
}

func TestGetSystemState(t *testing.T) {
	sim := desktop.NewSim()
	sim.ScreenState = &desktop.State{
		ActiveWindow: &desktop.Window{ID: "w1", App: "browser", Title: "Docs - Browser"},
		VisibleWindows: []desktop.Window{
			{ID: "w1", Title: "Docs - Browser"},
			{ID: "w2", Title: "terminal"},
		},
		ScreenWidth:    1920,
		ScreenHeight:   1080,
		VisibleRegions: []string{"address_bar", "sidebar"},
	}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "get_system_state", nil)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "browser", result["active_app"])
	assert.Equal(t, "1920x1080", result["screen_resolution"])
	assert.Equal(t, []string{"Docs - Browser", "terminal"}, result["visible_windows"])
}

func TestRetrieveUIReference(t *testing.T) {
	sim := desktop.NewSim()
	sim.TemplateHits["browser_logo"] = desktop.TemplateHit{X: 150, Y: 80, Score: 0.97}
	sim.TemplateHits["close_button"] = desktop.TemplateHit{X: 1890, Y: 10, Score: 0.92}
	sim.RegionRects["address_bar"] = desktop.Rect{X1: 50, Y1: 35, X2: 1870, Y2: 75}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "retrieve_ui_reference", map[string]any{"query": "browser logo"})
	assert.Equal(t, true, result["found"])
	assert.Equal(t, "browser_logo", result["best_key"])
	assert.Equal(t, "template", result["type"])

	result = callTool(t, reg, "retrieve_ui_reference", map[string]any{"query": "address bar"})
	assert.Equal(t, "address_bar", result["best_key"])
	assert.Equal(t, "region", result["type"])

	result = callTool(t, reg, "retrieve_ui_reference", map[string]any{"query": "quantum flux"})
	assert.Equal(t, false, result["found"])
}

func TestDetectUIElements(t *testing.T) {
	sim := desktop.NewSim()
	sim.TemplateHits["browser_logo"] = desktop.TemplateHit{X: 150, Y: 80, Score: 0.97}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "detect_ui_elements", map[string]any{"template": "browser_logo"})
	assert.Equal(t, true, result["found"])
	assert.Equal(t, 150, result["x"])
	assert.Equal(t, 80, result["y"])

	result = callTool(t, reg, "detect_ui_elements", map[string]any{"template": "missing"})
	assert.Equal(t, false, result["found"])
	assert.Contains(t, result, "hint")
}

func TestDetectUIRegions(t *testing.T) {
	sim := desktop.NewSim()
	sim.RegionRects["sidebar"] = desktop.Rect{X1: 0, Y1: 0, X2: 200, Y2: 1080}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "detect_ui_regions", map[string]any{"region": "sidebar"})
	assert.Equal(t, true, result["found"])
	assert.Equal(t, 200, result["x2"])
}

func TestDetectText(t *testing.T) {
	sim := desktop.NewSim()
	sim.Texts = []desktop.TextHit{
		{Text: "Submit", X: 100, Y: 200, W: 60, H: 20},
		{Text: "Cancel", X: 200, Y: 200, W: 60, H: 20},
	}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "detect_text", map[string]any{"text": "submit"})
	assert.Equal(t, true, result["found"])
	assert.Equal(t, 1, result["count"])

	result = callTool(t, reg, "detect_text", nil)
	assert.Equal(t, 2, result["count"])

	result = callTool(t, reg, "detect_text", map[string]any{"text": "missing"})
	assert.Equal(t, false, result["found"])
}

func TestMouseClickValidation(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "mouse_click", map[string]any{"x": 150, "y": 80})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "left", result["button"])
	assert.Equal(t, 1, result["clicks"])
	require.Len(t, sim.Events, 1)
	assert.Equal(t, "click left x1 (150,80)", sim.Events[0])

	result = callTool(t, reg, "mouse_click", map[string]any{"x": 99999, "y": 80})
	assert.Equal(t, "coordinates out of bounds", result["error"])

	result = callTool(t, reg, "mouse_click", map[string]any{"x": 1, "y": 2, "button": "side"})
	assert.Contains(t, result["error"], "invalid button")

	result = callTool(t, reg, "mouse_click", map[string]any{"x": 1, "y": 2, "clicks": 5})
	assert.Equal(t, "clicks must be 1-3", result["error"])
}

func TestKeyboardShortcutFuzzyMatch(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"new tab", "new tab"},
		{"open browser", "browser"},
		{"reload", "refresh"},
		{"tab", "new tab"},
		// Substring matching fires before word overlap: "browser" is the
		// only map key contained in the query.
		{"close the browser tab", "browser"},
		{"quantum flux", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := matchShortcut(tt.query)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			// Substring matching may resolve to any key containing the
			// query; assert the specific expectations that matter.
			if tt.query == "tab" {
				assert.Contains(t, got, "tab")
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyboardShortcutExecution(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "keyboard_shortcut", map[string]any{"action": "copy"})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "ctrl + c", result["executed"])
	assert.Equal(t, []string{"hotkey ctrl+c"}, sim.Events)

	result = callTool(t, reg, "keyboard_shortcut", map[string]any{"action": "quantum flux"})
	assert.Equal(t, "unknown_action", result["error"])
}

func TestTypeText(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "type_text", map[string]any{"text": "hello world"})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, 11, result["char_count"])

	result = callTool(t, reg, "type_text", map[string]any{"text": ""})
	assert.Equal(t, "text cannot be empty", result["error"])
}

func TestPressKeyValidation(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "press_key", map[string]any{"key": "enter"})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, 1, result["presses"])

	result = callTool(t, reg, "press_key", map[string]any{"key": "bogus_key"})
	assert.Contains(t, result["error"], "invalid key")

	result = callTool(t, reg, "press_key", map[string]any{"key": "tab", "presses": 11})
	assert.Equal(t, "presses must be 1-10", result["error"])
}

func TestHoldKeys(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "hold_keys", map[string]any{"keys": "ctrl, shift, t"})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "ctrl + shift + t", result["keys"])

	result = callTool(t, reg, "hold_keys", map[string]any{"keys": "a,b,c,d,e"})
	assert.Contains(t, result["error"], "maximum 4 keys")
}

func TestDrawOverlay(t *testing.T) {
	sim := desktop.NewSim()
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "draw_overlay", map[string]any{"coords": "150 80"})
	assert.Equal(t, true, result["ok"])
	assert.Equal(t, "circle", result["type"])

	result = callTool(t, reg, "draw_overlay", map[string]any{"coords": "50, 35, 1870, 75"})
	assert.Equal(t, "rect", result["type"])

	result = callTool(t, reg, "draw_overlay", map[string]any{"coords": "clear"})
	assert.Equal(t, "clear", result["type"])

	result = callTool(t, reg, "draw_overlay", map[string]any{"coords": "1 2 3"})
	assert.Equal(t, false, result["ok"])
	assert.Contains(t, result["error"], "need 2 coords")

	result = callTool(t, reg, "draw_overlay", map[string]any{"coords": "a b"})
	assert.Equal(t, false, result["ok"])

	assert.Equal(t, []string{
		"overlay circle (150,80)",
		"overlay rect (50,35)-(1870,75)",
		"overlay clear",
	}, sim.Events)
}

func TestFindFile(t *testing.T) {
	sim := desktop.NewSim()
	sim.Files = []string{
		"/home/user/notes.txt",
		"/home/user/docs/config.yaml",
		"/home/user/src/config_test.go",
	}
	reg := newTestRegistry(t, sim)

	result := callTool(t, reg, "find_file", map[string]any{"filename": "config"})
	assert.Equal(t, true, result["found"])
	assert.Equal(t, 2, result["count"])

	result = callTool(t, reg, "find_file", map[string]any{"filename": "missing"})
	assert.Equal(t, false, result["found"])
	assert.Equal(t, 0, result["count"])
}

func TestConflictsTableIsSymmetricEnough(t *testing.T) {
	conflicts := Conflicts()
	assert.Contains(t, conflicts["draw_overlay"], "mouse_click")
	assert.Contains(t, conflicts["mouse_click"], "draw_overlay")
}

func TestSimilarityScoring(t *testing.T) {
	assert.Equal(t, 1.0, similarity("browser_logo", "browser_logo"))
	assert.Greater(t, similarity("browser logo", "browser_logo"), similarity("logo", "close_button"))
	assert.Equal(t, 0.0, similarity("quantum", "browser_logo"))
}
