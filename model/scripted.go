//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package model

import "context"

// Scripted is a Selector that replays a fixed sequence of tool calls. It
// backs deterministic tests and dry runs where no model endpoint is
// available.
type Scripted struct {
	calls []ToolCall
	next  int
}

var _ Selector = (*Scripted)(nil)

// NewScripted creates a scripted selector replaying calls in order.
func NewScripted(calls ...ToolCall) *Scripted {
	return &Scripted{calls: calls}
}

// SelectTool implements the Selector interface. Once the script is
// exhausted it returns ErrNoToolCall.
func (s *Scripted) SelectTool(_ context.Context, _ *Request) (*ToolCall, error) {
	if s.next >= len(s.calls) {
		return nil, ErrNoToolCall
	}
	call := s.calls[s.next]
	s.next++
	return &call, nil
}
