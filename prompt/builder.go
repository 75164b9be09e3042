//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package prompt renders the instruction text supplied to the decision-maker
// from the registered declarations, the execution history and the context
// state. Building is a pure function of its inputs: identical inputs yield
// byte-identical output.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/deskpilot-ai/deskpilot/session"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// DefaultPreamble is the standing instruction placed before the generated
// tool documentation.
const DefaultPreamble = `You are a desktop automation agent.

# YOUR APPROACH

1. Understand the goal - parse what the user wants clearly.
2. Act efficiently - prefer the simplest, most direct tool sequence.
3. Execute safely - follow the tool documentation and declared workflows.

# CORE PRINCIPLES

- Start with get_system_state before interacting with the UI when the
  current application matters.
- Use retrieve_ui_reference to find element names; pass the EXACT best_key
  to detection tools. Never guess template or region names.
- Use EXACT values between steps. If a detection returns {x: 150, y: 80},
  use exactly those numbers.
- Only use draw_overlay when the user explicitly asks to highlight, show or
  mark something.`

// Option configures a Builder.
type Option func(*Builder)

// WithPreamble replaces the default preamble text.
func WithPreamble(preamble string) Option {
	return func(b *Builder) {
		b.preamble = preamble
	}
}

// Builder renders decision-maker instructions.
type Builder struct {
	preamble string
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{preamble: DefaultPreamble}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders the full instruction text. Tools appear in the given
// (registration) order, history in execution order and context keys in
// sorted order, so the output is reproducible. When candidates is non-empty
// the next selection is constrained to those names and the text says so.
func (b *Builder) Build(
	decls []*tool.Declaration,
	history []session.StepRecord,
	contextState map[string]any,
	candidates []string,
) string {
	var sb strings.Builder
	sb.WriteString(b.preamble)
	sb.WriteString("\n\n# AVAILABLE TOOLS\n")
	for _, decl := range decls {
		writeToolDoc(&sb, decl)
	}
	if len(history) > 0 {
		sb.WriteString("\n# EXECUTION HISTORY\n")
		for i, record := range history {
			writeHistoryEntry(&sb, i+1, record)
		}
	}
	if len(contextState) > 0 {
		sb.WriteString("\n# KNOWN CONTEXT\n")
		writeContext(&sb, contextState)
	}
	sb.WriteString("\n# NEXT ACTION\n")
	if len(candidates) > 0 {
		sb.WriteString("The previous tool requires a follow-up. You MUST select one of: ")
		sb.WriteString(strings.Join(candidates, ", "))
		sb.WriteString(".\n")
	} else {
		sb.WriteString("Select the single best tool call to make progress on the task.\n")
	}
	return sb.String()
}

// ToolCatalog renders just the documentation block for the given
// declarations, in order. The plan synthesis prompt embeds it.
func ToolCatalog(decls []*tool.Declaration) string {
	var sb strings.Builder
	for _, decl := range decls {
		writeToolDoc(&sb, decl)
	}
	return sb.String()
}

func writeToolDoc(sb *strings.Builder, decl *tool.Declaration) {
	fmt.Fprintf(sb, "\n## %s [%s]\n", decl.Name, decl.Category)
	sb.WriteString(decl.Description)
	sb.WriteString("\n")
	if len(decl.Args) > 0 {
		sb.WriteString("Arguments:\n")
		for _, arg := range decl.Args {
			requirement := "required"
			if arg.Optional {
				requirement = "optional"
			}
			fmt.Fprintf(sb, "- %s (%s, %s)", arg.Name, arg.Type, requirement)
			if arg.Description != "" {
				fmt.Fprintf(sb, ": %s", arg.Description)
			}
			sb.WriteString("\n")
		}
	}
	if len(decl.FollowupSuggestions) > 0 {
		fmt.Fprintf(sb, "Follow up with: %s\n", strings.Join(decl.FollowupSuggestions, ", "))
	}
}

func writeHistoryEntry(sb *strings.Builder, number int, record session.StepRecord) {
	args := "{}"
	// json.Marshal sorts map keys, keeping the rendering deterministic.
	if raw, err := json.Marshal(record.Arguments); err == nil && record.Arguments != nil {
		args = string(raw)
	}
	fmt.Fprintf(sb, "%d. %s(%s) -> %s: %s\n",
		number, record.Tool, args, record.Classification, record.Summary)
}

func writeContext(sb *strings.Builder, contextState map[string]any) {
	keys := make([]string, 0, len(contextState))
	for k := range contextState {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := fmt.Sprintf("%v", contextState[k])
		if raw, err := json.Marshal(contextState[k]); err == nil {
			value = string(raw)
		}
		fmt.Fprintf(sb, "- %s: %s\n", k, value)
	}
}
