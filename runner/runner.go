//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package runner drives the agentic control loop: select a tool, execute
// it, interpret the result, decide whether to continue. The loop is
// single-threaded and strictly sequential; one registry may back any number
// of concurrent loops because it is read-only after finalization.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/log"
	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/prompt"
	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// ErrStepLimitExceeded indicates the loop hit its iteration bound without
// reaching a terminal state. It is fatal and never retried.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// Default loop parameters, matching the delays a real desktop needs to
// settle between injected actions.
const (
	DefaultMaxSteps         = 20
	DefaultSelectionRetries = 2
	DefaultMinStepDelay     = time.Second
	DefaultCooldown         = 500 * time.Millisecond
	DefaultConflictWindow   = 2 * time.Second
)

const tracerName = "github.com/deskpilot-ai/deskpilot/runner"

// Status is the terminal disposition of a run.
type Status string

const (
	// StatusCompleted means a terminal tool succeeded.
	StatusCompleted Status = "completed"
	// StatusFailed means the loop stopped on a failure, an exhausted retry
	// budget or the step limit.
	StatusFailed Status = "failed"
	// StatusCancelled means the context was cancelled before the next
	// selection.
	StatusCancelled Status = "cancelled"
)

// Outcome is the structured final report of one run. Execution failures are
// data, not errors: the loop always produces an outcome, and Run returns a
// non-nil error only for loop-fatal conditions.
type Outcome struct {
	// RunID uniquely identifies the run.
	RunID string
	// Task is the goal the run pursued.
	Task string
	// Status is the terminal disposition.
	Status Status
	// Reason explains the disposition in one line.
	Reason string
	// Steps is the full execution history.
	Steps []session.StepRecord
	// ToolCalls counts executed calls per tool name.
	ToolCalls map[string]int
	// Context is the final context state.
	Context map[string]any
	// Elapsed is the total run duration.
	Elapsed time.Duration
}

// Succeeded reports whether the run completed its task.
func (o *Outcome) Succeeded() bool {
	return o.Status == StatusCompleted
}

// Options configure a Loop.
type Options struct {
	// MaxSteps bounds the number of executed tool calls.
	MaxSteps int
	// SelectionRetries is the extra selection attempts allowed per step when
	// the decision-maker names an unknown tool, violates a follow-up
	// constraint or supplies mistyped arguments.
	SelectionRetries int
	// MinStepDelay is the pause between consecutive loop iterations.
	MinStepDelay time.Duration
	// Cooldown is the minimum spacing between two calls of the same tool.
	Cooldown time.Duration
	// ConflictWindow is how long a tool blocks its conflicting tools.
	ConflictWindow time.Duration
	// Conflicts maps a tool to the tools it must not follow within the
	// conflict window.
	Conflicts map[string][]string
	// Builder renders the decision-maker instruction. Defaults to
	// prompt.NewBuilder().
	Builder *prompt.Builder
}

// Option configures Options.
type Option func(*Options)

// WithMaxSteps sets the loop iteration bound.
func WithMaxSteps(n int) Option {
	return func(o *Options) { o.MaxSteps = n }
}

// WithSelectionRetries sets the per-step selection retry budget.
func WithSelectionRetries(n int) Option {
	return func(o *Options) { o.SelectionRetries = n }
}

// WithMinStepDelay sets the pause between loop iterations.
func WithMinStepDelay(d time.Duration) Option {
	return func(o *Options) { o.MinStepDelay = d }
}

// WithCooldown sets the per-tool cooldown.
func WithCooldown(d time.Duration) Option {
	return func(o *Options) { o.Cooldown = d }
}

// WithConflictWindow sets the conflict window.
func WithConflictWindow(d time.Duration) Option {
	return func(o *Options) { o.ConflictWindow = d }
}

// WithConflicts installs the pairwise conflict table.
func WithConflicts(conflicts map[string][]string) Option {
	return func(o *Options) { o.Conflicts = conflicts }
}

// WithBuilder replaces the prompt builder.
func WithBuilder(b *prompt.Builder) Option {
	return func(o *Options) { o.Builder = b }
}

// Loop is one control loop bound to a registry and a decision-maker. All
// mutable run state lives inside Run and is discarded when it returns, so a
// Loop may be reused for sequential runs.
type Loop struct {
	registry *tool.Registry
	selector model.Selector
	opts     Options
	tracer   trace.Tracer
}

// New creates a Loop.
func New(registry *tool.Registry, selector model.Selector, opts ...Option) *Loop {
	options := Options{
		MaxSteps:         DefaultMaxSteps,
		SelectionRetries: DefaultSelectionRetries,
		MinStepDelay:     DefaultMinStepDelay,
		Cooldown:         DefaultCooldown,
		ConflictWindow:   DefaultConflictWindow,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Builder == nil {
		options.Builder = prompt.NewBuilder()
	}
	return &Loop{
		registry: registry,
		selector: selector,
		opts:     options,
		tracer:   otel.Tracer(tracerName),
	}
}

// runState is the loop-lifetime mutable state, created at run start and
// discarded at STOPPED.
type runState struct {
	tracker    *session.Tracker
	history    []session.StepRecord
	candidates []string
	lastCall   map[string]time.Time
	lastTool   string
	lastToolAt time.Time
	argRetries int
}

// Run executes the loop for one task until a terminal tool resolves it, a
// failure stops it, the context is cancelled or the step limit is hit. The
// outcome is always non-nil; the error is non-nil only for loop-fatal
// conditions (ErrStepLimitExceeded, exhausted selection retries).
func (l *Loop) Run(ctx context.Context, task string) (*Outcome, error) {
	runID := uuid.NewString()
	started := time.Now()
	state := &runState{
		tracker:  session.NewTracker(),
		lastCall: make(map[string]time.Time),
	}
	outcome := &Outcome{RunID: runID, Task: task}
	log.Infof("run %s: starting task %q (max %d steps)", runID, task, l.opts.MaxSteps)

	finish := func(status Status, reason string) *Outcome {
		outcome.Status = status
		outcome.Reason = reason
		outcome.Steps = state.history
		outcome.ToolCalls = tallyCalls(state.history)
		outcome.Context = state.tracker.Snapshot()
		outcome.Elapsed = time.Since(started)
		log.Infof("run %s: %s after %d step(s): %s",
			runID, status, len(state.history), reason)
		return outcome
	}

	for step := 0; step < l.opts.MaxSteps; step++ {
		// Cancellation is cooperative: checked before each selection, never
		// mid-execution.
		if ctx.Err() != nil {
			return finish(StatusCancelled, "cancelled before selection"), nil
		}
		if step > 0 {
			time.Sleep(l.opts.MinStepDelay)
		}

		callable, call, err := l.selectTool(ctx, task, state)
		if err != nil {
			if ctx.Err() != nil {
				return finish(StatusCancelled, "cancelled during selection"), nil
			}
			return finish(StatusFailed, err.Error()), err
		}
		decl := callable.Declaration()

		record, ok := l.executeStep(ctx, callable, call, state)
		if !ok {
			// Mistyped arguments re-enter SELECTING without recording a
			// step, up to the same retry budget as bad selections.
			state.argRetries++
			if state.argRetries > l.opts.SelectionRetries {
				err := fmt.Errorf("argument retries exhausted for %s", decl.Name)
				return finish(StatusFailed, err.Error()), err
			}
			continue
		}
		state.argRetries = 0
		state.history = append(state.history, record)

		if record.Succeeded() {
			updateContext(state.tracker, decl, record.Result)
		}

		// DECIDING: the behavior transition table.
		switch {
		case !record.Succeeded():
			return finish(StatusFailed, fmt.Sprintf("%s failed: %s", decl.Name, record.Summary)), nil
		case decl.Behavior == tool.BehaviorTerminal:
			return finish(StatusCompleted, record.Summary), nil
		case decl.Behavior == tool.BehaviorRequiresFollowup:
			state.candidates = decl.FollowupSuggestions
		default:
			state.candidates = nil
		}
	}

	err := fmt.Errorf("%w: no terminal tool within %d steps", ErrStepLimitExceeded, l.opts.MaxSteps)
	return finish(StatusFailed, err.Error()), err
}

// selectTool drives the SELECTING state: ask the decision-maker, validate
// the selection against the registry and the follow-up constraint, retry up
// to the budget on recoverable selection errors.
func (l *Loop) selectTool(ctx context.Context, task string, state *runState) (tool.CallableTool, *model.ToolCall, error) {
	instruction := l.opts.Builder.Build(
		l.registry.All(), state.history, state.tracker.Snapshot(), state.candidates)
	req := &model.Request{
		Instruction:  instruction,
		Task:         task,
		Declarations: l.registry.All(),
		Candidates:   state.candidates,
	}

	var lastErr error
	for attempt := 0; attempt <= l.opts.SelectionRetries; attempt++ {
		call, err := l.selector.SelectTool(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, err
			}
			lastErr = err
			log.Warnf("selection attempt %d/%d failed: %v",
				attempt+1, l.opts.SelectionRetries+1, err)
			continue
		}
		callable, err := l.registry.Resolve(call.Name)
		if err != nil {
			lastErr = err
			log.Warnf("selection attempt %d/%d: %v",
				attempt+1, l.opts.SelectionRetries+1, err)
			continue
		}
		if len(state.candidates) > 0 && !contains(state.candidates, call.Name) {
			lastErr = fmt.Errorf("%w: %s violates follow-up constraint %v",
				tool.ErrUnknownTool, call.Name, state.candidates)
			log.Warnf("selection attempt %d/%d: %v",
				attempt+1, l.opts.SelectionRetries+1, lastErr)
			continue
		}
		if blocked, recent := l.conflicted(call.Name, state); blocked {
			lastErr = fmt.Errorf("tool %s conflicts with recent %s", call.Name, recent)
			log.Warnf("selection attempt %d/%d: %v",
				attempt+1, l.opts.SelectionRetries+1, lastErr)
			continue
		}
		return callable, call, nil
	}
	return nil, nil, fmt.Errorf("selection retries exhausted: %w", lastErr)
}

// executeStep drives EXECUTING and INTERPRETING for one validated call. The
// bool result is false when the call failed on a recoverable argument type
// error and should be re-selected instead of recorded.
func (l *Loop) executeStep(ctx context.Context, callable tool.CallableTool, call *model.ToolCall, state *runState) (session.StepRecord, bool) {
	decl := callable.Declaration()

	// Per-tool cooldown: wait out the remainder instead of failing.
	if last, ok := state.lastCall[decl.Name]; ok {
		if wait := l.opts.Cooldown - time.Since(last); wait > 0 {
			time.Sleep(wait)
		}
	}

	stepCtx, span := l.tracer.Start(ctx, "runner.step",
		trace.WithAttributes(attribute.String("tool.name", decl.Name)))
	defer span.End()

	executed := time.Now()
	result, err := callable.Call(stepCtx, call.Arguments)
	elapsed := time.Since(executed)
	state.lastCall[decl.Name] = time.Now()
	state.lastTool = decl.Name
	state.lastToolAt = time.Now()

	var argErr *tool.ArgumentTypeError
	if errors.As(err, &argErr) {
		span.SetAttributes(attribute.String("step.error", argErr.Error()))
		log.Warnf("argument validation failed: %v", argErr)
		return session.StepRecord{}, false
	}
	if err != nil {
		// Collaborator errors become failure data, never raised errors.
		result = map[string]any{"error": err.Error()}
	}

	// Settling time for the tool's UI effect.
	time.Sleep(decl.ExecutionDelay)

	classification := tool.Interpret(decl, result)
	summary := tool.Summarize(decl, result, classification)
	span.SetAttributes(attribute.String("step.classification", string(classification)))
	log.Infof("step %s -> %s: %s", decl.Name, classification, summary)

	return session.StepRecord{
		ID:             uuid.NewString(),
		Tool:           decl.Name,
		Arguments:      call.Arguments,
		Result:         result,
		Classification: classification,
		Summary:        summary,
		Elapsed:        elapsed,
		Timestamp:      time.Now(),
	}, true
}

// conflicted reports whether name conflicts with the most recent tool
// within the conflict window.
func (l *Loop) conflicted(name string, state *runState) (bool, string) {
	if state.lastTool == "" || time.Since(state.lastToolAt) >= l.opts.ConflictWindow {
		return false, ""
	}
	for _, other := range l.opts.Conflicts[name] {
		if other == state.lastTool {
			return true, state.lastTool
		}
	}
	return false, ""
}

// updateContext maps the result fields a declaration names onto context
// keys. Only successful steps update context.
func updateContext(tracker *session.Tracker, decl *tool.Declaration, result map[string]any) {
	for field, key := range decl.ContextKeys {
		if v, ok := result[field]; ok {
			tracker.Set(key, v)
		}
	}
}

// tallyCalls counts executed calls per tool name over a run's history.
func tallyCalls(history []session.StepRecord) map[string]int {
	if len(history) == 0 {
		return nil
	}
	calls := make(map[string]int, len(history))
	for _, record := range history {
		calls[record.Tool]++
	}
	return calls
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
