//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"fmt"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

func newGetSystemState(screen desktop.Screen) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "get_system_state",
		Description: `Get comprehensive system state information: active application
and window title, window geometry, the list of visible windows, the screen
resolution and the likely visible UI regions.

USE THIS FIRST before any UI interaction to ensure correct context.`,
		Category:       tool.CategorySystem,
		Behavior:       tool.BehaviorRequiresFollowup,
		ExecutionDelay: 0,
		SuccessKeys:    []string{"success"},
		FailureKeys:    []string{"error"},
		FollowupSuggestions: []string{
			"keyboard_shortcut", "retrieve_ui_reference", "detect_ui_elements",
		},
		SummaryTemplate: "Active app: {active_app}",
		ContextKeys:     map[string]string{"active_app": session.KeyActiveApp},
	}
	return function.New(decl, func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		state, err := screen.State(ctx)
		if err != nil {
			return failure(err.Error(), nil), nil
		}
		fields := map[string]any{
			"success":           true,
			"screen_resolution": fmt.Sprintf("%dx%d", state.ScreenWidth, state.ScreenHeight),
			"visible_windows":   windowTitles(state.VisibleWindows),
		}
		if state.ActiveWindow != nil {
			fields["active_app"] = state.ActiveWindow.App
			fields["active_window_title"] = state.ActiveWindow.Title
			fields["active_window_id"] = state.ActiveWindow.ID
		}
		if len(state.VisibleRegions) > 0 {
			fields["likely_visible_regions"] = state.VisibleRegions
		}
		return fields, nil
	})
}

func windowTitles(windows []desktop.Window) []string {
	titles := make([]string, 0, len(windows))
	for _, w := range windows {
		titles = append(titles, w.Title)
	}
	return titles
}
