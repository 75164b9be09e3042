//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/tool"
)

func TestTrackerGetSet(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.Get(KeyLastCoordinates)
	assert.False(t, ok)

	tr.Set(KeyLastCoordinates, map[string]int{"x": 150, "y": 80})
	v, ok := tr.Get(KeyLastCoordinates)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"x": 150, "y": 80}, v)

	tr.Set(KeyLastCoordinates, "replaced")
	v, _ = tr.Get(KeyLastCoordinates)
	assert.Equal(t, "replaced", v)
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Set(KeyActiveApp, "browser")

	snap := tr.Snapshot()
	snap[KeyActiveApp] = "mutated"
	snap["extra"] = true

	v, ok := tr.Get(KeyActiveApp)
	require.True(t, ok)
	assert.Equal(t, "browser", v)
	_, ok = tr.Get("extra")
	assert.False(t, ok)
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Set(KeyLastReference, "browser_logo")
	tr.Reset()

	_, ok := tr.Get(KeyLastReference)
	assert.False(t, ok)
	assert.Empty(t, tr.Snapshot())
}

func TestStepRecordSucceeded(t *testing.T) {
	assert.True(t, StepRecord{Classification: tool.ClassificationSuccess}.Succeeded())
	assert.False(t, StepRecord{Classification: tool.ClassificationFailure}.Succeeded())
}
