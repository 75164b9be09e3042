//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package toolkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

// shortcutMap binds human action names to key chords. Application launchers
// assume the window manager bindings from the target environment.
var shortcutMap = map[string][]string{
	// Applications.
	"browser":      {"alt", "b"},
	"terminal":     {"alt", "t"},
	"finder":       {"alt", "f"},
	"file manager": {"alt", "f"},
	"files":        {"alt", "f"},

	// Browser.
	"new tab":         {"ctrl", "t"},
	"close tab":       {"ctrl", "w"},
	"reopen tab":      {"ctrl", "shift", "t"},
	"next tab":        {"ctrl", "tab"},
	"previous tab":    {"ctrl", "shift", "tab"},
	"refresh":         {"ctrl", "r"},
	"hard refresh":    {"ctrl", "shift", "r"},
	"address bar":     {"ctrl", "l"},
	"bookmarks":       {"ctrl", "shift", "b"},
	"history":         {"ctrl", "h"},
	"downloads":       {"ctrl", "j"},
	"find":            {"ctrl", "f"},
	"fullscreen":      {"f11"},
	"developer tools": {"f12"},

	// Terminal.
	"new terminal tab": {"ctrl", "shift", "t"},
	"close terminal":   {"ctrl", "shift", "w"},
	"clear terminal":   {"ctrl", "l"},

	// Text editing.
	"copy":       {"ctrl", "c"},
	"paste":      {"ctrl", "v"},
	"cut":        {"ctrl", "x"},
	"undo":       {"ctrl", "z"},
	"redo":       {"ctrl", "shift", "z"},
	"select all": {"ctrl", "a"},
	"save":       {"ctrl", "s"},

	// Window management.
	"close window":  {"alt", "f4"},
	"minimize":      {"alt", "f9"},
	"maximize":      {"alt", "f10"},
	"switch window": {"alt", "tab"},
}

var shortcutAliases = map[string]string{
	"open browser":   "browser",
	"launch browser": "browser",
	"open terminal":  "terminal",
	"open files":     "file manager",
	"reload":         "refresh",
	"go fullscreen":  "fullscreen",
}

// matchShortcut resolves a free-form action to a shortcut name: exact match,
// then alias, then substring, then best word overlap. Empty string means no
// match.
func matchShortcut(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if _, ok := shortcutMap[query]; ok {
		return query
	}
	if alias, ok := shortcutAliases[query]; ok {
		return alias
	}
	for key := range shortcutMap {
		if strings.Contains(key, query) || strings.Contains(query, key) {
			return key
		}
	}

	queryWords := strings.Fields(query)
	best, bestScore := "", 0
	for key := range shortcutMap {
		keyWords := make(map[string]bool)
		for _, w := range strings.Fields(key) {
			keyWords[w] = true
		}
		score := 0
		for _, w := range queryWords {
			if keyWords[w] {
				score++
			}
		}
		// Ties break on name so matching is deterministic.
		if score > bestScore || (score == bestScore && score > 0 && key < best) {
			best, bestScore = key, score
		}
	}
	return best
}

func newKeyboardShortcut(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "keyboard_shortcut",
		Description: `Execute keyboard shortcuts for common actions: application
launching, browser control, text editing and window management.

Common actions:
- Applications: "browser", "terminal", "files"
- Browser: "new tab", "close tab", "refresh", "address bar"
- Text: "copy", "paste", "save", "undo"
- Windows: "close window", "switch window"

Uses fuzzy matching, so similar phrases work ("open browser" = "browser").`,
		Args: []tool.Arg{
			{Name: "action", Type: tool.ArgString, Description: "action name"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  800 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Executed: {executed}",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		action := args["action"].(string)
		matched := matchShortcut(action)
		if matched == "" {
			return failure("unknown_action", map[string]any{
				"action": action,
				"hint":   "try: 'browser', 'new tab', 'terminal'",
			}), nil
		}
		keys := shortcutMap[matched]
		if err := input.Hotkey(ctx, keys...); err != nil {
			return failure(err.Error(), map[string]any{"action": matched}), nil
		}
		return map[string]any{
			"success":  true,
			"action":   matched,
			"keys":     keys,
			"executed": strings.Join(keys, " + "),
		}, nil
	})
}

const typeTextPreview = 50

func newTypeText(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "type_text",
		Description: `Type text at the current cursor position. Click on a text field
or focus an input area first.`,
		Args: []tool.Arg{
			{Name: "text", Type: tool.ArgString, Description: "text to type"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Typed {char_count} characters",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		text := args["text"].(string)
		if text == "" {
			return failure("text cannot be empty", nil), nil
		}
		if err := input.TypeText(ctx, text, 50*time.Millisecond); err != nil {
			return failure(err.Error(), nil), nil
		}
		preview := text
		if len(preview) > typeTextPreview {
			preview = preview[:typeTextPreview] + "..."
		}
		return map[string]any{
			"success":    true,
			"text":       preview,
			"char_count": len(text),
		}, nil
	})
}

func newClearAndType(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "clear_and_type",
		Description: `Clear the existing text in a field and type new text: performs
select-all then types the replacement. Click on the field first.`,
		Args: []tool.Arg{
			{Name: "text", Type: tool.ArgString, Description: "replacement text"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Cleared and typed {char_count} characters",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		text := args["text"].(string)
		if text == "" {
			return failure("text cannot be empty", nil), nil
		}
		if err := input.Hotkey(ctx, "ctrl", "a"); err != nil {
			return failure(err.Error(), nil), nil
		}
		if err := input.TypeText(ctx, text, 50*time.Millisecond); err != nil {
			return failure(err.Error(), nil), nil
		}
		preview := text
		if len(preview) > typeTextPreview {
			preview = preview[:typeTextPreview] + "..."
		}
		return map[string]any{
			"success":    true,
			"text":       preview,
			"char_count": len(text),
		}, nil
	})
}

var specialKeys = map[string]bool{
	"enter": true, "return": true, "tab": true, "space": true,
	"backspace": true, "delete": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"shift": true, "ctrl": true, "alt": true, "win": true, "command": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
	"escape": true, "esc": true, "insert": true, "pause": true,
	"printscreen": true, "capslock": true, "numlock": true, "scrolllock": true,
}

func newPressKey(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "press_key",
		Description: `Press a specific key one or more times. For special keys like
Enter, Tab or arrow keys.

Common keys: enter, tab, escape, space, backspace, delete, up, down, left,
right, home, end, f1-f12.`,
		Args: []tool.Arg{
			{Name: "key", Type: tool.ArgString, Description: `key name, e.g. "enter", "tab", "f5", or a single character`},
			{Name: "presses", Type: tool.ArgInt, Optional: true, Description: "number of presses, 1-10 (default 1)"},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Pressed {key} x{presses}",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		key := args["key"].(string)
		presses := 1
		if p, ok := args["presses"].(int); ok && p != 0 {
			presses = p
		}

		if len(key) > 1 && !specialKeys[strings.ToLower(key)] {
			return failure(fmt.Sprintf("invalid key %q", key), map[string]any{
				"hint": "use single characters or special keys like 'enter', 'tab'",
			}), nil
		}
		if presses < 1 || presses > 10 {
			return failure("presses must be 1-10", nil), nil
		}
		if err := input.PressKey(ctx, key, presses); err != nil {
			return failure(err.Error(), map[string]any{"key": key}), nil
		}
		return map[string]any{"success": true, "key": key, "presses": presses}, nil
	})
}

const maxChordKeys = 4

func newHoldKeys(input desktop.Input) tool.CallableTool {
	decl := &tool.Declaration{
		Name: "hold_keys",
		Description: `Hold down multiple keys simultaneously for arbitrary combinations
like "ctrl,shift,t". Prefer keyboard_shortcut for common actions.`,
		Args: []tool.Arg{
			{Name: "keys", Type: tool.ArgString, Description: `comma-separated keys, e.g. "ctrl,c"`},
		},
		Category:        tool.CategoryAction,
		Behavior:        tool.BehaviorIntermediate,
		ExecutionDelay:  200 * time.Millisecond,
		SuccessKeys:     []string{"success"},
		FailureKeys:     []string{"error"},
		SummaryTemplate: "Held {keys}",
	}
	return function.New(decl, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		raw := args["keys"].(string)
		var keys []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return failure("keys cannot be empty", nil), nil
		}
		if len(keys) > maxChordKeys {
			return failure(fmt.Sprintf("maximum %d keys in combination", maxChordKeys), nil), nil
		}
		if err := input.Hotkey(ctx, keys...); err != nil {
			return failure(err.Error(), map[string]any{"keys": raw}), nil
		}
		return map[string]any{"success": true, "keys": strings.Join(keys, " + ")}, nil
	})
}
