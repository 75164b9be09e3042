//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskpilot-ai/deskpilot/log"
	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/planner"
	"github.com/deskpilot-ai/deskpilot/session"
)

// RunPlan synthesizes a plan for the task and executes its steps in
// dependency order instead of asking the decision-maker before every step.
// Failed steps are retried up to their per-step budget; a blocked plan
// (work remaining but nothing executable) stops the run as a failure. The
// same interpretation, context-update and step-limit rules as free-form
// Run apply.
func (l *Loop) RunPlan(ctx context.Context, task string, p *planner.Planner) (*Outcome, error) {
	runID := uuid.NewString()
	started := time.Now()
	state := &runState{
		tracker:  session.NewTracker(),
		lastCall: make(map[string]time.Time),
	}
	outcome := &Outcome{RunID: runID, Task: task}

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

	planCtx, span := l.tracer.Start(ctx, "runner.plan",
		trace.WithAttributes(attribute.String("plan.goal", task)))
	plan, err := p.CreatePlan(planCtx, task, l.registry.All())
	span.End()
	if err != nil {
		return finish(StatusFailed, err.Error()), err
	}
	log.Infof("run %s: plan with %d step(s) for %q", runID, len(plan.Steps), task)
	plan.Start()

	for iteration := 0; iteration < l.opts.MaxSteps; iteration++ {
		if ctx.Err() != nil {
			return finish(StatusCancelled, "cancelled before next plan step"), nil
		}
		if plan.Complete() {
			plan.Finish()
			return finish(StatusCompleted, plan.Summary()), nil
		}
		if plan.Blocked() {
			plan.Finish()
			return finish(StatusFailed, "plan blocked: "+plan.Summary()), nil
		}
		step := plan.NextStep()
		if step == nil {
			plan.Finish()
			return finish(StatusFailed, "plan has no executable step"), nil
		}
		if iteration > 0 {
			time.Sleep(l.opts.MinStepDelay)
		}

		record, execErr := l.executePlanStep(ctx, step, state)
		if execErr != nil {
			plan.Finish()
			return finish(StatusFailed, execErr.Error()), execErr
		}
		state.history = append(state.history, record)

		if record.Succeeded() {
			step.Complete(record.Result)
			if callable, err := l.registry.Resolve(step.Tool); err == nil {
				updateContext(state.tracker, callable.Declaration(), record.Result)
			}
		} else {
			step.Fail(record.Summary)
			if step.CanRetry() {
				log.Warnf("step %d (%s) failed, retrying %d/%d",
					step.Number, step.Tool, step.Retries+1, step.MaxRetries)
				step.Retry()
			}
		}
	}

	plan.Finish()
	err = fmt.Errorf("%w: plan unfinished after %d iterations", ErrStepLimitExceeded, l.opts.MaxSteps)
	return finish(StatusFailed, err.Error()), err
}

// executePlanStep resolves and runs one planned call. Unknown tools and
// mistyped arguments are fatal here: the plan was synthesized against the
// registry, so a bad reference means the plan itself is unusable.
func (l *Loop) executePlanStep(ctx context.Context, step *planner.Step, state *runState) (session.StepRecord, error) {
	callable, err := l.registry.Resolve(step.Tool)
	if err != nil {
		return session.StepRecord{}, fmt.Errorf("plan step %d: %w", step.Number, err)
	}
	step.Start()

	call := &model.ToolCall{Name: step.Tool, Arguments: step.Arguments}
	record, ok := l.executeStep(ctx, callable, call, state)
	if !ok {
		return session.StepRecord{}, fmt.Errorf("plan step %d (%s): arguments do not match declaration",
			step.Number, step.Tool)
	}
	return record, nil
}
