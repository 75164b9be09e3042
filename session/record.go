//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package session

import (
	"time"

	"github.com/deskpilot-ai/deskpilot/tool"
)

// StepRecord is the immutable log entry of one executed tool call. Records
// are appended by the control loop after interpretation and never mutated;
// together they form the execution history shown to the decision-maker on
// the next prompt cycle.
type StepRecord struct {
	// ID uniquely identifies the record within the run.
	ID string
	// Tool is the executed tool's name.
	Tool string
	// Arguments are the validated arguments the tool ran with.
	Arguments map[string]any
	// Result holds the raw result fields the tool returned.
	Result map[string]any
	// Classification is the derived success/failure verdict.
	Classification tool.Classification
	// Summary is the rendered human-readable result summary.
	Summary string
	// Elapsed is the wall-clock duration of the execution.
	Elapsed time.Duration
	// Timestamp records when the step finished.
	Timestamp time.Time
}

// Succeeded reports whether the step was classified as a success.
func (r StepRecord) Succeeded() bool {
	return r.Classification == tool.ClassificationSuccess
}
