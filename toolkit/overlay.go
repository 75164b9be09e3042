//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"strconv"
	"strings"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

func newDrawOverlay(overlay desktop.Overlay) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "draw_overlay",
		Description: `Draw visual overlays on screen to highlight UI elements.

The coords string selects the shape:
  "x y"           circle at (x, y)
  "x1 y1 x2 y2"   rectangle from (x1,y1) to (x2,y2)
  "clear"         remove all overlays

CRITICAL:
- Use EXACT coordinates from the detect tools.
- Only use when the user explicitly asks to "highlight", "show" or "mark".`,
		Args: []tool.Arg{
			{Name: "coords", Type: tool.ArgString, Description: `space-separated numbers, or "clear"`},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorTerminal,
		SuccessKeys:     []string{"ok"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Overlay {type} drawn",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		coords := args["coords"].(string)
		if strings.EqualFold(strings.TrimSpace(coords), "clear") {
			if err := overlay.Clear(ctx); err != nil {
				return failure(err.Error(), map[string]any{"ok": false}), nil
			}
			return map[string]any{"ok": true, "type": "clear"}, nil
		}

		nums, err := parseCoords(coords)
		if err != nil {
			return failure("invalid coordinates - must be numbers", map[string]any{"ok": false}), nil
		}
		switch len(nums) {
		case 2:
			if err := overlay.DrawCircle(ctx, nums[0], nums[1]); err != nil {
				return failure(err.Error(), map[string]any{"ok": false}), nil
			}
			return map[string]any{"ok": true, "type": "circle", "coords": nums}, nil
		case 4:
			rect := desktop.Rect{X1: nums[0], Y1: nums[1], X2: nums[2], Y2: nums[3]}
			if err := overlay.DrawRect(ctx, rect); err != nil {
				return failure(err.Error(), map[string]any{"ok": false}), nil
			}
			return map[string]any{"ok": true, "type": "rect", "coords": nums}, nil
		default:
			return failure("need 2 coords for circle or 4 for rectangle", map[string]any{"ok": false}), nil
		}
	})
}

// parseCoords accepts space, comma or semicolon separated numbers; floats
// are truncated to pixels.
func parseCoords(s string) ([]int, error) {
	s = strings.NewReplacer(",", " ", ";", " ").Replace(s)
	fields := strings.Fields(s)
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		nums = append(nums, int(v))
	}
	return nums, nil
}
