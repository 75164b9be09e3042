//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/tool/function"
)

// fastOpts removes every delay so loop tests run instantly.
func fastOpts(extra ...Option) []Option {
	opts := []Option{
		WithMinStepDelay(0),
		WithCooldown(0),
		WithConflictWindow(0),
	}
	return append(opts, extra...)
}

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()

	register := func(decl *tool.Declaration, result map[string]any) {
		require.NoError(t, reg.Register(function.New(decl,
			func(_ context.Context, _ map[string]any) (map[string]any, error) {
				return result, nil
			})))
	}

	register(&tool.Declaration{
		Name: "finish", Category: tool.CategoryAction, Behavior: tool.BehaviorTerminal,
		SuccessKeys: []string{"success"}, FailureKeys: []string{"error"},
	}, map[string]any{"success": true})

	register(&tool.Declaration{
		Name: "step", Category: tool.CategoryAction, Behavior: tool.BehaviorIntermediate,
		SuccessKeys: []string{"success"}, FailureKeys: []string{"error"},
	}, map[string]any{"success": true})

	register(&tool.Declaration{
		Name: "boom", Category: tool.CategoryDetection, Behavior: tool.BehaviorIntermediate,
		SuccessKeys: []string{"found"}, FailureKeys: []string{"error"},
	}, map[string]any{"error": "not found"})

	register(&tool.Declaration{
		Name: "probe", Category: tool.CategorySearch, Behavior: tool.BehaviorRequiresFollowup,
		SuccessKeys: []string{"found"}, FailureKeys: []string{"error"},
		FollowupSuggestions: []string{"finish"},
		ContextKeys:         map[string]string{"best_key": "last_reference"},
	}, map[string]any{"found": true, "best_key": "browser_logo"})

	require.NoError(t, reg.Register(function.New(&tool.Declaration{
		Name: "typed", Category: tool.CategoryAction, Behavior: tool.BehaviorTerminal,
		Args:        []tool.Arg{{Name: "x", Type: tool.ArgInt}},
		SuccessKeys: []string{"success"},
	}, func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return map[string]any{"success": true}, nil
	})))

	require.NoError(t, reg.Finalize())
	return reg
}

// recordingSelector wraps another selector and records the candidate sets
// each selection request carried.
type recordingSelector struct {
	inner      model.Selector
	candidates [][]string
}

func (r *recordingSelector) SelectTool(ctx context.Context, req *model.Request) (*model.ToolCall, error) {
	r.candidates = append(r.candidates, req.Candidates)
	return r.inner.SelectTool(ctx, req)
}

func TestRunTerminalSuccessStopsAfterOneStep(t *testing.T) {
	loop := New(testRegistry(t), model.NewScripted(model.ToolCall{Name: "finish"}), fastOpts()...)

	outcome, err := loop.Run(context.Background(), "finish the task")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.True(t, outcome.Succeeded())
	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, "finish", outcome.Steps[0].Tool)
}

func TestRunIntermediateFailureStopsLoop(t *testing.T) {
	// Even though no success key is present in boom's result, the truthy
	// failure key classifies the step as failure and the loop stops.
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "boom"},
		model.ToolCall{Name: "finish"},
	), fastOpts()...)

	outcome, err := loop.Run(context.Background(), "detect something")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	require.Len(t, outcome.Steps, 1)
	assert.Contains(t, outcome.Reason, "boom failed")
}

func TestRunFollowupConstraint(t *testing.T) {
	sel := &recordingSelector{inner: model.NewScripted(
		model.ToolCall{Name: "probe"},
		model.ToolCall{Name: "finish"},
	)}
	loop := New(testRegistry(t), sel, fastOpts()...)

	outcome, err := loop.Run(context.Background(), "probe then finish")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, outcome.Status)
	require.Len(t, outcome.Steps, 2)

	// The first selection is unconstrained, the second carries probe's
	// follow-up suggestions.
	require.Len(t, sel.candidates, 2)
	assert.Empty(t, sel.candidates[0])
	assert.Equal(t, []string{"finish"}, sel.candidates[1])
}

func TestRunFollowupConstraintViolationExhaustsRetries(t *testing.T) {
	// After probe succeeds the selector keeps naming a tool outside the
	// candidate set; the budget runs out and the loop stops fatally.
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "probe"},
		model.ToolCall{Name: "step"},
		model.ToolCall{Name: "step"},
	), fastOpts(WithSelectionRetries(1))...)

	outcome, err := loop.Run(context.Background(), "probe then wander")
	require.Error(t, err)
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Equal(t, StatusFailed, outcome.Status)
	require.Len(t, outcome.Steps, 1)
}

func TestRunUnknownToolExhaustsRetries(t *testing.T) {
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "no_such_tool"},
		model.ToolCall{Name: "still_wrong"},
	), fastOpts(WithSelectionRetries(1))...)

	outcome, err := loop.Run(context.Background(), "hallucinate")
	require.Error(t, err)
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, outcome.Steps)
}

func TestRunStepLimit(t *testing.T) {
	calls := make([]model.ToolCall, 10)
	for i := range calls {
		calls[i] = model.ToolCall{Name: "step"}
	}
	loop := New(testRegistry(t), model.NewScripted(calls...),
		fastOpts(WithMaxSteps(3))...)

	outcome, err := loop.Run(context.Background(), "never finish")
	require.ErrorIs(t, err, ErrStepLimitExceeded)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Len(t, outcome.Steps, 3)
}

func TestRunUpdatesContextOnSuccess(t *testing.T) {
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "probe"},
		model.ToolCall{Name: "finish"},
	), fastOpts()...)

	outcome, err := loop.Run(context.Background(), "probe then finish")
	require.NoError(t, err)
	assert.Equal(t, "browser_logo", outcome.Context["last_reference"])
	assert.Equal(t, map[string]int{"probe": 1, "finish": 1}, outcome.ToolCalls)
}

func TestRunArgumentTypeErrorExhaustsRetries(t *testing.T) {
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "typed", Arguments: map[string]any{"x": "not a number"}},
		model.ToolCall{Name: "typed", Arguments: map[string]any{"x": "still wrong"}},
	), fastOpts(WithSelectionRetries(0))...)

	outcome, err := loop.Run(context.Background(), "call with bad args")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument retries exhausted")
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, outcome.Steps)
}

func TestRunArgumentRecovery(t *testing.T) {
	// First call is mistyped, the re-selection succeeds within budget.
	loop := New(testRegistry(t), model.NewScripted(
		model.ToolCall{Name: "typed", Arguments: map[string]any{"x": "oops"}},
		model.ToolCall{Name: "typed", Arguments: map[string]any{"x": 7}},
	), fastOpts(WithSelectionRetries(1))...)

	outcome, err := loop.Run(context.Background(), "recover")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, outcome.Status)
	require.Len(t, outcome.Steps, 1)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := New(testRegistry(t), model.NewScripted(model.ToolCall{Name: "finish"}), fastOpts()...)
	outcome, err := loop.Run(ctx, "never starts")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, outcome.Status)
	assert.Empty(t, outcome.Steps)
}

func TestRunNoToolCallExhaustsRetries(t *testing.T) {
	// An exhausted script returns ErrNoToolCall on every selection.
	loop := New(testRegistry(t), model.NewScripted(), fastOpts(WithSelectionRetries(1))...)

	outcome, err := loop.Run(context.Background(), "silence")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoToolCall)
	assert.Equal(t, StatusFailed, outcome.Status)
}

func TestManagerSharesRegistryAcrossRuns(t *testing.T) {
	reg := testRegistry(t)
	mgr, err := NewManager(2, reg)
	require.NoError(t, err)
	defer mgr.Close()

	for i := 0; i < 4; i++ {
		selector := model.NewScripted(model.ToolCall{Name: "finish"})
		require.NoError(t, mgr.Submit(context.Background(), selector, "task", fastOpts()...))
	}

	outcomes := mgr.Wait()
	require.Len(t, outcomes, 4)
	for _, outcome := range outcomes {
		assert.Equal(t, StatusCompleted, outcome.Status)
	}
}
