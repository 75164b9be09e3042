//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package session holds the loop-lifetime state of one agent run: the
// context tracker accumulating cross-step facts and the append-only step
// records forming the execution history.
package session

// Well-known context-state keys. Tools map result fields onto these via
// their declaration's ContextKeys so later steps can reuse detected facts
// without re-detection.
const (
	// KeyLastCoordinates holds the most recently detected point on screen.
	KeyLastCoordinates = "last_coordinates"
	// KeyLastRegion holds the most recently detected bounding box.
	KeyLastRegion = "last_region"
	// KeyLastReference holds the most recently retrieved UI reference name.
	KeyLastReference = "last_reference"
	// KeyActiveApp holds the application reported by the last system-state
	// query.
	KeyActiveApp = "active_app"
)

// Tracker owns the mutable context state of a single loop instance. It is
// created at loop start, mutated only by the control loop after a result is
// interpreted, and discarded when the loop stops. It is not safe for
// concurrent use; the single-threaded loop is its only writer.
type Tracker struct {
	values map[string]any
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (t *Tracker) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (t *Tracker) Set(key string, value any) {
	t.values[key] = value
}

// Snapshot returns a copy of the current state. The loop finishes all
// updates for a step before building the next prompt, so callers never
// observe a partial update.
func (t *Tracker) Snapshot() map[string]any {
	snapshot := make(map[string]any, len(t.values))
	for k, v := range t.values {
		snapshot[k] = v
	}
	return snapshot
}

// Reset discards all accumulated state.
func (t *Tracker) Reset() {
	t.values = make(map[string]any)
}
