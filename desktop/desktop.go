//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package desktop declares the collaborator capabilities tools are built on:
// screen state, OCR, template matching, overlay drawing, input injection and
// file search. The core never calls these directly; tools do, and the loop
// only ever sees the key-value results they produce. Implementations wrap
// OS-level facilities and are opaque to the rest of the system.
package desktop

import (
	"context"
	"time"
)

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a screen-aligned bounding box, (X1,Y1) top-left to (X2,Y2)
// bottom-right.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Window describes one visible window.
type Window struct {
	ID       string `json:"id"`
	App      string `json:"app"`
	Title    string `json:"title"`
	Geometry Rect   `json:"geometry"`
}

// State is a snapshot of the desktop.
type State struct {
	ActiveWindow   *Window  `json:"active_window,omitempty"`
	VisibleWindows []Window `json:"visible_windows"`
	ScreenWidth    int      `json:"screen_width"`
	ScreenHeight   int      `json:"screen_height"`
	VisibleRegions []string `json:"visible_regions,omitempty"`
}

// TextHit is one piece of text found by OCR.
type TextHit struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// TemplateHit is a template-matching result: the center of the best match
// and its confidence score.
type TemplateHit struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`
}

// Screen queries window and display state.
type Screen interface {
	// State returns the current desktop snapshot.
	State(ctx context.Context) (*State, error)
}

// OCR detects text on the current screen. An empty filter returns
// everything readable; otherwise only case-insensitive matches.
type OCR interface {
	DetectText(ctx context.Context, filter string) ([]TextHit, error)
}

// Matcher locates known templates and regions on the current screen and
// enumerates the reference names available for semantic search.
type Matcher interface {
	FindTemplate(ctx context.Context, name string) (*TemplateHit, error)
	FindRegion(ctx context.Context, name string) (*Rect, error)
	Templates() []string
	Regions() []string
}

// Overlay draws transient highlight shapes over the screen.
type Overlay interface {
	DrawCircle(ctx context.Context, x, y int) error
	DrawRect(ctx context.Context, r Rect) error
	Clear(ctx context.Context) error
}

// Input injects keyboard and mouse events. Implementations are expected to
// pace themselves; callers do not rate-limit individual events.
type Input interface {
	Click(ctx context.Context, x, y int, button string, clicks int) error
	Move(ctx context.Context, x, y int, smooth bool) error
	Drag(ctx context.Context, from, to Point, button string, duration time.Duration) error
	Scroll(ctx context.Context, amount int) error
	TypeText(ctx context.Context, text string, interval time.Duration) error
	PressKey(ctx context.Context, key string, times int) error
	Hotkey(ctx context.Context, keys ...string) error
	CursorPosition(ctx context.Context) (Point, error)
}

// FileSearcher finds files by partial, case-insensitive name match.
type FileSearcher interface {
	Find(ctx context.Context, pattern string) ([]string, error)
}
