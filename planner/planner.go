//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deskpilot-ai/deskpilot/model"
	"github.com/deskpilot-ai/deskpilot/prompt"
	"github.com/deskpilot-ai/deskpilot/tool"
)

const planningInstruction = `You are a desktop automation planner. You turn a
user goal into a minimal step-by-step tool execution plan.`

// Planner turns goals into execution plans via a text-generation model.
type Planner struct {
	gen model.Generator
}

// New creates a Planner backed by the given generator.
func New(gen model.Generator) *Planner {
	return &Planner{gen: gen}
}

// CreatePlan asks the model for a plan and parses it. The declarations are
// rendered into the prompt so the model only plans with registered tools.
func (p *Planner) CreatePlan(ctx context.Context, goal string, decls []*tool.Declaration) (*Plan, error) {
	response, err := p.gen.Generate(ctx, planningInstruction, BuildPrompt(goal, decls))
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	plan, err := Parse(response, goal)
	if err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return plan, nil
}

// BuildPrompt renders the plan synthesis prompt for a goal.
func BuildPrompt(goal string, decls []*tool.Declaration) string {
	var sb strings.Builder
	sb.WriteString("# AVAILABLE TOOLS\n")
	sb.WriteString(prompt.ToolCatalog(decls))
	fmt.Fprintf(&sb, `
# YOUR TASK

**User Goal:** %s

Create a step-by-step execution plan to achieve this goal.

# PLANNING RULES

1. Direct action: if the goal provides all necessary information for a
   tool, create a one-step plan.
2. Multi-step: if information is missing, plan to gather it before acting.
3. Simplicity: always prefer the simplest, most direct plan.

# COMMON PATTERNS

Direct action (all info provided):
- "draw circle at 800 900" -> draw_overlay(coords="800 900")
- "find file 'notes'" -> find_file(filename="notes")

Multi-step (info missing), e.g. "click the button":
1. get_system_state() - check current app
2. retrieve_ui_reference(query="button") - find the element name
3. detect_ui_elements(template=<result.best_key>) - get coordinates
4. mouse_click(x=<result.x>, y=<result.y>) - click it

# OUTPUT FORMAT

Return ONLY valid JSON (no markdown):

{
  "reasoning": "brief explanation of approach",
  "steps": [
    {
      "step_number": 1,
      "tool_name": "tool_name",
      "arguments": {"arg": "value"},
      "purpose": "do something",
      "dependencies": []
    }
  ]
}

CRITICAL:
- Output ONLY JSON.
- Only use draw_overlay when the user explicitly asks to highlight, show
  or mark something.
- Keep plans minimal.

Create the plan for: **%s**
`, goal, goal)
	return sb.String()
}

type planPayload struct {
	Reasoning string `json:"reasoning"`
	Steps     []struct {
		Number       int            `json:"step_number"`
		Tool         string         `json:"tool_name"`
		Arguments    map[string]any `json:"arguments"`
		Purpose      string         `json:"purpose"`
		Dependencies []int          `json:"dependencies"`
	} `json:"steps"`
}

// Parse decodes a model response into a Plan. Markdown code fences around
// the JSON are tolerated. Dependencies referencing steps outside the plan
// are dropped.
func Parse(response, goal string) (*Plan, error) {
	cleaned := stripCodeFence(response)

	var payload planPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode plan JSON: %w", err)
	}
	if len(payload.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}

	steps := make([]*Step, 0, len(payload.Steps))
	for i, raw := range payload.Steps {
		if raw.Tool == "" {
			return nil, fmt.Errorf("step %d missing tool_name", i+1)
		}
		number := raw.Number
		if number == 0 {
			number = i + 1
		}
		step := &Step{
			Number:     number,
			Tool:       raw.Tool,
			Arguments:  raw.Arguments,
			Purpose:    raw.Purpose,
			Status:     StatusPending,
			MaxRetries: DefaultMaxRetries,
		}
		for _, dep := range raw.Dependencies {
			if dep >= 1 && dep <= len(payload.Steps) {
				step.Dependencies = append(step.Dependencies, dep)
			}
		}
		steps = append(steps, step)
	}
	return &Plan{Goal: goal, Steps: steps, Status: StatusPending}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) >= 2 {
		s = strings.Join(lines[1:len(lines)-1], "\n")
	}
	s = strings.ReplaceAll(s, "```json", "")
	return strings.ReplaceAll(s, "```", "")
}
