//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package runner

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// Manager runs independent loop instances on a bounded goroutine pool. All
// loops share one finalized registry; each run owns its own tracker and
// history, so no cross-run state is shared.
type Manager struct {
	registry *tool.Registry
	pool     *ants.Pool

	mu       sync.Mutex
	outcomes []*Outcome
	wg       sync.WaitGroup
}

// NewManager creates a Manager with at most size concurrent runs.
func NewManager(size int, registry *tool.Registry) (*Manager, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Manager{registry: registry, pool: pool}, nil
}

// Submit schedules one run for the task using the given selector and loop
// options. The outcome is collected and returned by Wait.
func (m *Manager) Submit(ctx context.Context, selector model.Selector, task string, opts ...Option) error {
	loop := New(m.registry, selector, opts...)
	m.wg.Add(1)
	err := m.pool.Submit(func() {
		defer m.wg.Done()
		outcome, _ := loop.Run(ctx, task)
		m.mu.Lock()
		m.outcomes = append(m.outcomes, outcome)
		m.mu.Unlock()
	})
	if err != nil {
		m.wg.Done()
		return err
	}
	return nil
}

// Wait blocks until all submitted runs finish and returns their outcomes.
func (m *Manager) Wait() []*Outcome {
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	outcomes := make([]*Outcome, len(m.outcomes))
	copy(outcomes, m.outcomes)
	return outcomes
}

// Close releases the pool. Pending runs are waited for first.
func (m *Manager) Close() {
	m.wg.Wait()
	m.pool.Release()
}
