//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package tool provides the tool descriptor contract, the registry and the
// result interpreter for the agent system.
package tool

import (
	"context"
	"time"
)

// Category classifies what a tool does. It is informational only and has no
// effect on loop transitions.
type Category string

// Category constants.
const (
	CategoryAction    Category = "action"
	CategoryDetection Category = "detection"
	CategorySearch    Category = "search"
	CategoryRetrieval Category = "retrieval"
	CategorySystem    Category = "system"
)

// IsValid checks if the category is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAction, CategoryDetection, CategorySearch, CategoryRetrieval, CategorySystem:
		return true
	default:
		return false
	}
}

// Behavior governs how the control loop transitions after a tool executes.
type Behavior string

// Behavior constants.
const (
	// BehaviorTerminal stops the loop after the tool runs, whatever the
	// classification.
	BehaviorTerminal Behavior = "terminal"
	// BehaviorIntermediate continues the loop on success and stops it on
	// failure.
	BehaviorIntermediate Behavior = "intermediate"
	// BehaviorRequiresFollowup continues the loop on success but constrains
	// the next selection to the declared follow-up suggestions.
	BehaviorRequiresFollowup Behavior = "requires_followup"
)

// IsValid checks if the behavior is one of the defined constants.
func (b Behavior) IsValid() bool {
	switch b {
	case BehaviorTerminal, BehaviorIntermediate, BehaviorRequiresFollowup:
		return true
	default:
		return false
	}
}

// ArgType is the primitive type tag of a declared argument.
type ArgType string

// Argument type tags.
const (
	ArgString ArgType = "string"
	ArgInt    ArgType = "int"
	ArgFloat  ArgType = "float"
	ArgBool   ArgType = "bool"
)

// IsValid checks if the argument type is one of the defined tags.
func (a ArgType) IsValid() bool {
	switch a {
	case ArgString, ArgInt, ArgFloat, ArgBool:
		return true
	default:
		return false
	}
}

// Arg declares one named argument of a tool's call signature.
type Arg struct {
	Name     string
	Type     ArgType
	Optional bool
	// Description is injected into the schema shown to the decision-maker.
	Description string
}

// Declaration is the static metadata record describing one tool: its
// identity, call signature and flow-control behavior. It is immutable once
// registered.
type Declaration struct {
	// Name uniquely identifies the tool within a registry.
	Name string
	// Description is natural-language text injected into prompts.
	Description string
	// Args is the ordered call signature exposed to the decision-maker.
	Args []Arg
	// Category classifies the tool. Informational only.
	Category Category
	// Behavior governs loop transitions after execution.
	Behavior Behavior
	// ExecutionDelay is the pause after execution, before results are
	// interpreted. Models settling time of UI effects.
	ExecutionDelay time.Duration
	// SuccessKeys are result fields whose truthy presence marks success.
	SuccessKeys []string
	// FailureKeys are result fields whose truthy presence marks failure.
	// Failure takes precedence over success.
	FailureKeys []string
	// SummaryTemplate optionally renders a short result summary using
	// {field} placeholders. A missing field falls back to the generic
	// summary rather than failing the step.
	SummaryTemplate string
	// FollowupSuggestions names the tools the next selection is constrained
	// to when Behavior is BehaviorRequiresFollowup. Mandatory non-empty in
	// that case.
	FollowupSuggestions []string
	// ContextKeys maps result fields to context-state keys. After a
	// successful execution the loop copies each present field into the
	// context tracker under the mapped key.
	ContextKeys map[string]string
}

// Validate checks the declaration's local invariants. Cross-tool invariants
// (follow-up suggestions resolving in the registry) are checked by
// Registry.Finalize.
func (d *Declaration) Validate() error {
	if d.Name == "" {
		return invalidDescriptorf("declaration has no name")
	}
	if !d.Category.IsValid() {
		return invalidDescriptorf("tool %s: unknown category %q", d.Name, d.Category)
	}
	if !d.Behavior.IsValid() {
		return invalidDescriptorf("tool %s: unknown behavior %q", d.Name, d.Behavior)
	}
	if d.ExecutionDelay < 0 {
		return invalidDescriptorf("tool %s: negative execution delay", d.Name)
	}
	if d.Behavior == BehaviorRequiresFollowup && len(d.FollowupSuggestions) == 0 {
		return invalidDescriptorf("tool %s: requires_followup without followup suggestions", d.Name)
	}
	seen := make(map[string]bool, len(d.Args))
	for _, arg := range d.Args {
		if arg.Name == "" {
			return invalidDescriptorf("tool %s: argument with empty name", d.Name)
		}
		if seen[arg.Name] {
			return invalidDescriptorf("tool %s: duplicate argument %q", d.Name, arg.Name)
		}
		seen[arg.Name] = true
		if !arg.Type.IsValid() {
			return invalidDescriptorf("tool %s: argument %q has unknown type %q", d.Name, arg.Name, arg.Type)
		}
	}
	return nil
}

// Tool is the interface every tool must satisfy to expose its declaration.
type Tool interface {
	// Declaration returns the tool's static metadata.
	Declaration() *Declaration
}

// CallableTool is a tool that can be invoked with named arguments.
type CallableTool interface {
	Tool

	// Call executes the tool with the given arguments, each validated
	// against the declared primitive type, and returns the result fields.
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}
