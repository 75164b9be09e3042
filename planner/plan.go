//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package planner synthesizes and tracks multi-step execution plans. A plan
// is an ordered list of tool calls with dependencies and a per-step retry
// budget; the control loop consumes it step by step instead of asking the
// model before every action.
package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a plan or plan step.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusBlocked    Status = "blocked"
	StatusRetrying   Status = "retrying"
)

// DefaultMaxRetries is the per-step retry budget.
const DefaultMaxRetries = 3

// Step is a single planned tool call.
type Step struct {
	Number       int            `json:"step_number"`
	Tool         string         `json:"tool_name"`
	Arguments    map[string]any `json:"arguments"`
	Purpose      string         `json:"purpose"`
	Dependencies []int          `json:"dependencies"`

	Status      Status         `json:"status"`
	Result      map[string]any `json:"-"`
	Err         string         `json:"error,omitempty"`
	Retries     int            `json:"retry_count"`
	MaxRetries  int            `json:"max_retries"`
	StartedAt   time.Time      `json:"-"`
	CompletedAt time.Time      `json:"-"`
}

// CanRetry reports whether a failed step still has retry budget.
func (s *Step) CanRetry() bool {
	return s.Status == StatusFailed && s.Retries < s.MaxRetries
}

// Start marks the step in progress.
func (s *Step) Start() {
	s.Status = StatusInProgress
	s.StartedAt = time.Now()
}

// Complete records a successful result.
func (s *Step) Complete(result map[string]any) {
	s.Status = StatusCompleted
	s.Result = result
	s.CompletedAt = time.Now()
}

// Fail records a failure.
func (s *Step) Fail(detail string) {
	s.Status = StatusFailed
	s.Err = detail
	s.CompletedAt = time.Now()
}

// Retry consumes one retry and rearms the step.
func (s *Step) Retry() {
	s.Retries++
	s.Status = StatusRetrying
	s.Err = ""
}

// Plan is a full execution plan for one goal.
type Plan struct {
	Goal  string
	Steps []*Step

	Status      Status
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// Start marks the plan in progress.
func (p *Plan) Start() {
	p.Status = StatusInProgress
	p.StartedAt = time.Now()
}

// Finish marks the plan completed or failed depending on the step states.
func (p *Plan) Finish() {
	if p.Complete() {
		p.Status = StatusCompleted
	} else {
		p.Status = StatusFailed
	}
	p.CompletedAt = time.Now()
}

// NextStep returns the next executable step: the first pending or retrying
// step whose dependencies have all completed, or a failed step with retry
// budget left. Nil means nothing is executable.
func (p *Plan) NextStep() *Step {
	for _, step := range p.Steps {
		switch step.Status {
		case StatusCompleted, StatusInProgress:
			continue
		case StatusFailed:
			if step.CanRetry() {
				return step
			}
			continue
		}
		if p.dependenciesMet(step) {
			return step
		}
	}
	return nil
}

func (p *Plan) dependenciesMet(step *Step) bool {
	for _, dep := range step.Dependencies {
		if dep < 1 || dep > len(p.Steps) {
			continue
		}
		if p.Steps[dep-1].Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Complete reports whether every step completed.
func (p *Plan) Complete() bool {
	for _, step := range p.Steps {
		if step.Status != StatusCompleted {
			return false
		}
	}
	return len(p.Steps) > 0
}

// Blocked reports whether work remains but no step is executable, either
// because a dependency failed for good or because the dependency graph is
// stuck.
func (p *Plan) Blocked() bool {
	hasPending := false
	for _, step := range p.Steps {
		switch step.Status {
		case StatusPending, StatusRetrying:
			hasPending = true
		case StatusFailed:
			if step.CanRetry() {
				hasPending = true
			}
		}
	}
	return hasPending && p.NextStep() == nil
}

// Progress returns completed, failed and total step counts.
func (p *Plan) Progress() (completed, failed, total int) {
	for _, step := range p.Steps {
		switch step.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}
	return completed, failed, len(p.Steps)
}

// Summary renders a human-readable progress report.
func (p *Plan) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan: %s\n", p.Goal)
	for _, step := range p.Steps {
		args := "{}"
		if raw, err := json.Marshal(step.Arguments); err == nil && step.Arguments != nil {
			args = string(raw)
		}
		fmt.Fprintf(&sb, "[%s] step %d: %s(%s) - %s\n",
			step.Status, step.Number, step.Tool, args, step.Purpose)
		if len(step.Dependencies) > 0 {
			fmt.Fprintf(&sb, "  depends on: %v\n", step.Dependencies)
		}
		if step.Retries > 0 {
			fmt.Fprintf(&sb, "  retries: %d/%d\n", step.Retries, step.MaxRetries)
		}
		if step.Status == StatusFailed && step.Err != "" {
			fmt.Fprintf(&sb, "  error: %s\n", step.Err)
		}
	}
	completed, failed, total := p.Progress()
	fmt.Fprintf(&sb, "progress: %d/%d completed, %d failed\n", completed, total, failed)
	return sb.String()
}
