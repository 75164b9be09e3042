//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"fmt"
	"time"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

var validButtons = map[string]bool{"left": true, "right": true, "middle": true}

// inBounds validates a coordinate against the current screen size. A nil
// screen (or a state error) skips validation rather than blocking input.
func inBounds(ctx context.Context, screen desktop.Screen, x, y int) (bool, string) {
	state, err := screen.State(ctx)
	if err != nil || state == nil {
		return true, ""
	}
	if x < 0 || x > state.ScreenWidth || y < 0 || y > state.ScreenHeight {
		return false, fmt.Sprintf("%dx%d", state.ScreenWidth, state.ScreenHeight)
	}
	return true, ""
}

func newMouseClick(screen desktop.Screen, input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "mouse_click",
		Description: `Click at specific screen coordinates. Use after detecting UI
elements: detect_ui_elements returns the x and y to click.`,
		Args: []tool.Arg{
			{Name: "x", Type: tool.ArgInt, Description: "X coordinate"},
			{Name: "y", Type: tool.ArgInt, Description: "Y coordinate"},
			{Name: "button", Type: tool.ArgString, Optional: true, Description: `"left" (default), "right" or "middle"`},
			{Name: "clicks", Type: tool.ArgInt, Optional: true, Description: "number of clicks, 1-3 (2 for double-click)"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  300 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Clicked at ({x}, {y})",
		ContextKeys: map[string]string{
			"coordinates": session.KeyLastCoordinates,
		},
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		x := args["x"].(int)
		y := args["y"].(int)
		button := "left"
		if b, ok := args["button"].(string); ok && b != "" {
			button = b
		}
		clicks := 1
		if c, ok := args["clicks"].(int); ok && c != 0 {
			clicks = c
		}

		if ok, size := inBounds(ctx, screen, x, y); !ok {
			return failure("coordinates out of bounds", map[string]any{
				"screen_size": size,
				"provided":    fmt.Sprintf("(%d, %d)", x, y),
			}), nil
		}
		if !validButtons[button] {
			return failure(fmt.Sprintf("invalid button %q", button), map[string]any{
				"valid": []string{"left", "right", "middle"},
			}), nil
		}
		if clicks < 1 || clicks > 3 {
			return failure("clicks must be 1-3", nil), nil
		}

		if err := input.Click(ctx, x, y, button, clicks); err != nil {
			return failure(err.Error(), map[string]any{"x": x, "y": y}), nil
		}
		return map[string]any{
			"success":     true,
			"x":           x,
			"y":           y,
			"button":      button,
			"clicks":      clicks,
			"coordinates": desktop.Point{X: x, Y: y},
		}, nil
	})
}

func newMouseMove(screen desktop.Screen, input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "mouse_move",
		Description: `Move the mouse cursor to coordinates without clicking. Useful for
hover actions or positioning.`,
		Args: []tool.Arg{
			{Name: "x", Type: tool.ArgInt, Description: "target X coordinate"},
			{Name: "y", Type: tool.ArgInt, Description: "target Y coordinate"},
			{Name: "smooth", Type: tool.ArgBool, Optional: true, Description: "move smoothly over time (default true)"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Moved cursor to ({x}, {y})",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		x := args["x"].(int)
		y := args["y"].(int)
		smooth := true
		if s, ok := args["smooth"].(bool); ok {
			smooth = s
		}

		if ok, _ := inBounds(ctx, screen, x, y); !ok {
			return failure("coordinates out of bounds", nil), nil
		}
		if err := input.Move(ctx, x, y, smooth); err != nil {
			return failure(err.Error(), nil), nil
		}
		return map[string]any{"success": true, "x": x, "y": y, "smooth": smooth}, nil
	})
}

func newMouseScroll(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "mouse_scroll",
		Description: `Scroll the mouse wheel. Positive amount scrolls up, negative
scrolls down. Optionally scroll at a specific position.`,
		Args: []tool.Arg{
			{Name: "amount", Type: tool.ArgInt, Description: "scroll amount (positive=up, negative=down)"},
			{Name: "x", Type: tool.ArgInt, Optional: true, Description: "scroll at this X position"},
			{Name: "y", Type: tool.ArgInt, Optional: true, Description: "scroll at this Y position"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Scrolled {direction} by {amount}",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		amount := args["amount"].(int)
		if x, ok := args["x"].(int); ok {
			if y, ok := args["y"].(int); ok {
				if err := input.Move(ctx, x, y, true); err != nil {
					return failure(err.Error(), nil), nil
				}
			}
		}
		if err := input.Scroll(ctx, amount); err != nil {
			return failure(err.Error(), nil), nil
		}
		direction := "up"
		abs := amount
		if amount < 0 {
			direction = "down"
			abs = -amount
		}
		return map[string]any{"success": true, "amount": abs, "direction": direction}, nil
	})
}

func newMouseDrag(screen desktop.Screen, input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "mouse_drag",
		Description: `Drag from one position to another. Useful for selecting text,
moving windows, or drag-and-drop.`,
		Args: []tool.Arg{
			{Name: "x1", Type: tool.ArgInt, Description: "start X coordinate"},
			{Name: "y1", Type: tool.ArgInt, Description: "start Y coordinate"},
			{Name: "x2", Type: tool.ArgInt, Description: "end X coordinate"},
			{Name: "y2", Type: tool.ArgInt, Description: "end Y coordinate"},
			{Name: "button", Type: tool.ArgString, Optional: true, Description: `"left" (default), "right" or "middle"`},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  300 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Dragged ({x1},{y1}) to ({x2},{y2})",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		x1, y1 := args["x1"].(int), args["y1"].(int)
		x2, y2 := args["x2"].(int), args["y2"].(int)
		button := "left"
		if b, ok := args["button"].(string); ok && b != "" {
			button = b
		}

		for _, p := range []desktop.Point{{X: x1, Y: y1}, {X: x2, Y: y2}} {
			if ok, _ := inBounds(ctx, screen, p.X, p.Y); !ok {
				return failure("coordinates out of bounds", nil), nil
			}
		}
		if !validButtons[button] {
			return failure(fmt.Sprintf("invalid button %q", button), nil), nil
		}
		from := desktop.Point{X: x1, Y: y1}
		to := desktop.Point{X: x2, Y: y2}
		if err := input.Drag(ctx, from, to, button, 300*time.Millisecond); err != nil {
			return failure(err.Error(), nil), nil
		}
		return map[string]any{
			"success": true,
			"x1":      x1, "y1": y1,
			"x2": x2, "y2": y2,
			"button": button,
		}, nil
	})
}
