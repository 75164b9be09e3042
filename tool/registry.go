//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package tool

import (
	"fmt"

	"github.com/deskpilot-ai/deskpilot/log"
)

// Registry maintains the authoritative mapping from tool name to callable
// tool. It is populated once at startup and read-only after Finalize, so a
// single registry may be shared by any number of concurrent loop instances
// without synchronization.
type Registry struct {
	order     []string
	tools     map[string]CallableTool
	finalized bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]CallableTool)}
}

// Register adds a tool under its declared name. It fails with
// ErrDuplicateTool if the name is taken and ErrInvalidDescriptor if the
// declaration violates a descriptor invariant.
func (r *Registry) Register(t CallableTool) error {
	if r.finalized {
		return ErrRegistryFinalized
	}
	decl := t.Declaration()
	if decl == nil {
		return invalidDescriptorf("tool has no declaration")
	}
	if err := decl.Validate(); err != nil {
		return err
	}
	if _, ok := r.tools[decl.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, decl.Name)
	}
	r.tools[decl.Name] = t
	r.order = append(r.order, decl.Name)
	log.Debugf("registered tool %s (%s/%s)", decl.Name, decl.Category, decl.Behavior)
	return nil
}

// Finalize validates cross-tool invariants and marks the registry read-only.
// Every follow-up suggestion must name a registered tool.
func (r *Registry) Finalize() error {
	for _, name := range r.order {
		decl := r.tools[name].Declaration()
		for _, followup := range decl.FollowupSuggestions {
			if _, ok := r.tools[followup]; !ok {
				return invalidDescriptorf(
					"tool %s: followup suggestion %q is not registered", name, followup)
			}
		}
	}
	r.finalized = true
	return nil
}

// Resolve returns the tool registered under name. It fails with
// ErrUnknownTool if the name is absent.
func (r *Registry) Resolve(name string) (CallableTool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// All returns the declarations of every registered tool in registration
// order. The stable order keeps rendered prompts reproducible.
func (r *Registry) All() []*Declaration {
	decls := make([]*Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
