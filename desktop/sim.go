//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Sim is an in-memory implementation of every collaborator capability. It
// backs tests and dry runs: detections answer from configured fixtures and
// injected input is recorded instead of performed.
type Sim struct {
	mu sync.Mutex

	// ScreenState is returned by State. Nil yields a minimal default.
	ScreenState *State
	// Texts are the OCR fixtures.
	Texts []TextHit
	// TemplateHits and RegionRects answer template/region lookups by name.
	TemplateHits map[string]TemplateHit
	RegionRects  map[string]Rect
	// Files answers file searches; every path containing the pattern
	// (case-insensitively) matches.
	Files []string

	// Events records every injected input and overlay call, in order.
	Events []string
}

// NewSim creates an empty simulator.
func NewSim() *Sim {
	return &Sim{
		TemplateHits: make(map[string]TemplateHit),
		RegionRects:  make(map[string]Rect),
	}
}

var (
	_ Screen       = (*Sim)(nil)
	_ OCR          = (*Sim)(nil)
	_ Matcher      = (*Sim)(nil)
	_ Overlay      = (*Sim)(nil)
	_ Input        = (*Sim)(nil)
	_ FileSearcher = (*Sim)(nil)
)

func (s *Sim) record(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, fmt.Sprintf(format, args...))
}

// State implements the Screen interface.
func (s *Sim) State(_ context.Context) (*State, error) {
	if s.ScreenState != nil {
		return s.ScreenState, nil
	}
	return &State{ScreenWidth: 1920, ScreenHeight: 1080}, nil
}

// DetectText implements the OCR interface.
func (s *Sim) DetectText(_ context.Context, filter string) ([]TextHit, error) {
	if filter == "" {
		return s.Texts, nil
	}
	var hits []TextHit
	needle := strings.ToLower(filter)
	for _, hit := range s.Texts {
		if strings.Contains(strings.ToLower(hit.Text), needle) {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// FindTemplate implements the Matcher interface.
func (s *Sim) FindTemplate(_ context.Context, name string) (*TemplateHit, error) {
	hit, ok := s.TemplateHits[name]
	if !ok {
		return nil, nil
	}
	return &hit, nil
}

// FindRegion implements the Matcher interface.
func (s *Sim) FindRegion(_ context.Context, name string) (*Rect, error) {
	r, ok := s.RegionRects[name]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Templates implements the Matcher interface.
func (s *Sim) Templates() []string {
	names := make([]string, 0, len(s.TemplateHits))
	for name := range s.TemplateHits {
		names = append(names, name)
	}
	return names
}

// Regions implements the Matcher interface.
func (s *Sim) Regions() []string {
	names := make([]string, 0, len(s.RegionRects))
	for name := range s.RegionRects {
		names = append(names, name)
	}
	return names
}

// DrawCircle implements the Overlay interface.
func (s *Sim) DrawCircle(_ context.Context, x, y int) error {
	s.record("overlay circle (%d,%d)", x, y)
	return nil
}

// DrawRect implements the Overlay interface.
func (s *Sim) DrawRect(_ context.Context, r Rect) error {
	s.record("overlay rect (%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	return nil
}

// Clear implements the Overlay interface.
func (s *Sim) Clear(_ context.Context) error {
	s.record("overlay clear")
	return nil
}

// Click implements the Input interface.
func (s *Sim) Click(_ context.Context, x, y int, button string, clicks int) error {
	s.record("click %s x%d (%d,%d)", button, clicks, x, y)
	return nil
}

// Move implements the Input interface.
func (s *Sim) Move(_ context.Context, x, y int, smooth bool) error {
	s.record("move (%d,%d) smooth=%t", x, y, smooth)
	return nil
}

// Drag implements the Input interface.
func (s *Sim) Drag(_ context.Context, from, to Point, button string, _ time.Duration) error {
	s.record("drag %s (%d,%d)->(%d,%d)", button, from.X, from.Y, to.X, to.Y)
	return nil
}

// Scroll implements the Input interface.
func (s *Sim) Scroll(_ context.Context, amount int) error {
	s.record("scroll %d", amount)
	return nil
}

// TypeText implements the Input interface.
func (s *Sim) TypeText(_ context.Context, text string, _ time.Duration) error {
	s.record("type %q", text)
	return nil
}

// PressKey implements the Input interface.
func (s *Sim) PressKey(_ context.Context, key string, times int) error {
	s.record("press %s x%d", key, times)
	return nil
}

// Hotkey implements the Input interface.
func (s *Sim) Hotkey(_ context.Context, keys ...string) error {
	s.record("hotkey %s", strings.Join(keys, "+"))
	return nil
}

// CursorPosition implements the Input interface.
func (s *Sim) CursorPosition(_ context.Context) (Point, error) {
	return Point{X: 960, Y: 540}, nil
}

// Find implements the FileSearcher interface.
func (s *Sim) Find(_ context.Context, pattern string) ([]string, error) {
	needle := strings.ToLower(pattern)
	var matches []string
	for _, path := range s.Files {
		if strings.Contains(strings.ToLower(path), needle) {
			matches = append(matches, path)
		}
	}
	return matches, nil
}
