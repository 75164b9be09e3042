//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package toolkit assembles the desktop automation tool catalog: each tool
// pairs an immutable declaration with a function over the collaborator
// capabilities declared in package desktop. Collaborator errors never
// propagate as Go errors; they are folded into the result fields the
// interpreter classifies.
package toolkit

import (
	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// Deps bundles the collaborator capabilities the catalog is built on.
type Deps struct {
	Screen  desktop.Screen
	OCR     desktop.OCR
	Matcher desktop.Matcher
	Overlay desktop.Overlay
	Input   desktop.Input
	Files   desktop.FileSearcher
}

// Register adds the full catalog to the registry, then finalizes it. The
// registration order is the order tools appear in prompts.
func Register(reg *tool.Registry, deps Deps) error {
	catalog := []tool.CallableTool{
		newGetSystemState(deps.Screen),
		newRetrieveUIReference(deps.Matcher),
		newDetectUIElements(deps.Matcher),
		newDetectUIRegions(deps.Matcher),
		newDetectText(deps.OCR),
		newMouseClick(deps.Screen, deps.Input),
		newMouseMove(deps.Screen, deps.Input),
		newMouseScroll(deps.Input),
		newMouseDrag(deps.Screen, deps.Input),
		newTypeText(deps.Input),
		newClearAndType(deps.Input),
		newPressKey(deps.Input),
		newHoldKeys(deps.Input),
		newKeyboardShortcut(deps.Input),
		newDrawOverlay(deps.Overlay),
		newFindFile(deps.Files),
	}
	for _, t := range catalog {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return reg.Finalize()
}

// Conflicts returns the pairwise conflict table: a tool may not run inside
// the conflict window after any of the listed tools. Overlay drawing and
// input injection fight over the same screen, so they are kept apart.
func Conflicts() map[string][]string {
	return map[string][]string{
		"draw_overlay":      {"keyboard_shortcut", "mouse_click", "type_text"},
		"keyboard_shortcut": {"draw_overlay"},
		"mouse_click":       {"draw_overlay"},
		"type_text":         {"draw_overlay"},
	}
}

// failure builds a result carrying an error detail under the conventional
// "error" key plus any extra fields.
func failure(detail string, extra map[string]any) map[string]any {
	fields := map[string]any{"error": detail}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}
