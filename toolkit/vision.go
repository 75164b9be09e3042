//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

func newDetectUIElements(matcher desktop.Matcher) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "detect_ui_elements",
		Description: `Detect specific UI elements (icons, buttons, logos) on screen using
template matching and return center coordinates.

CRITICAL: always use retrieve_ui_reference first to get the correct
template name.`,
		Args: []tool.Arg{
			{Name: "template", Type: tool.ArgString, Description: "EXACT template name from retrieve_ui_reference"},
		},
		Category:            tool.CategoryDetection,
		Behavior:            tool.BehaviorIntermediate,
		SuccessKeys:         []string{"found"},
		FailureKeys:         []string{"error"},
		FollowupSuggestions: []string{"draw_overlay", "mouse_click"},
		SummaryTemplate:     "Found {template} at ({x}, {y})",
		ContextKeys: map[string]string{
			"coordinates": session.KeyLastCoordinates,
		},
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		template := args["template"].(string)
		hit, err := matcher.FindTemplate(ctx, template)
		if err != nil {
			return failure(err.Error(), map[string]any{"found": false, "template": template}), nil
		}
		if hit == nil {
			return map[string]any{
				"found":    false,
				"template": template,
				"hint":     "use retrieve_ui_reference to find the correct template name",
			}, nil
		}
		return map[string]any{
			"found":       true,
			"template":    template,
			"x":           hit.X,
			"y":           hit.Y,
			"score":       hit.Score,
			"coordinates": desktop.Point{X: hit.X, Y: hit.Y},
		}, nil
	})
}

func newDetectUIRegions(matcher desktop.Matcher) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "detect_ui_regions",
		Description: `Get the bounding box of a predefined UI region such as a sidebar,
address bar or toolbar. Coordinates define a rectangle: (x1,y1) top-left,
(x2,y2) bottom-right.

CRITICAL: always use retrieve_ui_reference first to get the correct region
name.`,
		Args: []tool.Arg{
			{Name: "region", Type: tool.ArgString, Description: "EXACT region name from retrieve_ui_reference"},
		},
		Category:            tool.CategoryDetection,
		Behavior:            tool.BehaviorIntermediate,
		SuccessKeys:         []string{"found"},
		FailureKeys:         []string{"error"},
		FollowupSuggestions: []string{"draw_overlay", "mouse_click"},
		SummaryTemplate:     "Region {region}: ({x1},{y1})-({x2},{y2})",
		ContextKeys: map[string]string{
			"bounds": session.KeyLastRegion,
		},
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		region := args["region"].(string)
		rect, err := matcher.FindRegion(ctx, region)
		if err != nil {
			return failure(err.Error(), map[string]any{"found": false, "region": region}), nil
		}
		if rect == nil {
			return map[string]any{
				"found":  false,
				"region": region,
				"hint":   "use retrieve_ui_reference to find the correct region name",
			}, nil
		}
		return map[string]any{
			"found":  true,
			"region": region,
			"x1":     rect.X1,
			"y1":     rect.Y1,
			"x2":     rect.X2,
			"y2":     rect.Y2,
			"bounds": *rect,
		}, nil
	})
}

func newDetectText(ocr desktop.OCR) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "detect_text",
		Description: `Detect and read text on screen using OCR. Scans the entire screen;
an optional filter returns only matching text. Each item carries text, x,
y, w, h.`,
		Args: []tool.Arg{
			{Name: "text", Type: tool.ArgString, Optional: true, Description: "only return text matching this term"},
		},
		Category:        tool.CategoryDetection,
		Behavior:        tool.BehaviorTerminal,
		SuccessKeys:     []string{"found"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Found {count} text match(es)",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		filter, _ := args["text"].(string)
		hits, err := ocr.DetectText(ctx, filter)
		if err != nil {
			return failure(err.Error(), map[string]any{"found": false, "count": 0}), nil
		}
		return map[string]any{
			"found": len(hits) > 0,
			"count": len(hits),
			"items": hits,
		}, nil
	})
}
