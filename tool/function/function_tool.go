//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package function provides function-based tool implementations for the
// agent system.
package function

import (
	"context"
	"encoding/json"
	"math"

	"github.com/deskpilot-ai/deskpilot/log"
	"github.com/deskpilot-ai/deskpilot/tool"
)

// Func is the invocation operation a function tool wraps. It receives the
// declared arguments by name, already coerced to their declared primitive
// types, and returns the result fields.
type Func func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool wraps a plain function together with its declaration so it satisfies
// tool.CallableTool. Argument validation happens at the call boundary; the
// wrapped function only ever sees well-typed values.
type Tool struct {
	decl *tool.Declaration
	fn   Func
}

var _ tool.CallableTool = (*Tool)(nil)

// New creates a function tool from a declaration and an implementation.
func New(decl *tool.Declaration, fn Func) *Tool {
	if decl.Name == "" {
		log.Warnf("function tool created with empty name")
	}
	return &Tool{decl: decl, fn: fn}
}

// Declaration implements the tool.Tool interface.
func (t *Tool) Declaration() *tool.Declaration {
	return t.decl
}

// Call implements the tool.CallableTool interface. Each declared argument is
// coerced against its type tag; a mismatch or a missing required argument
// fails with *tool.ArgumentTypeError before the function runs. Arguments not
// present in the declaration are dropped with a warning.
func (t *Tool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	coerced, err := t.coerceArgs(args)
	if err != nil {
		return nil, err
	}
	return t.fn(ctx, coerced)
}

func (t *Tool) coerceArgs(args map[string]any) (map[string]any, error) {
	declared := make(map[string]bool, len(t.decl.Args))
	coerced := make(map[string]any, len(t.decl.Args))
	for _, arg := range t.decl.Args {
		declared[arg.Name] = true
		raw, ok := args[arg.Name]
		if !ok || raw == nil {
			if arg.Optional {
				continue
			}
			return nil, &tool.ArgumentTypeError{Tool: t.decl.Name, Argument: arg.Name, Want: arg.Type}
		}
		v, ok := coerceValue(raw, arg.Type)
		if !ok {
			return nil, &tool.ArgumentTypeError{Tool: t.decl.Name, Argument: arg.Name, Want: arg.Type, Got: raw}
		}
		coerced[arg.Name] = v
	}
	for name := range args {
		if !declared[name] {
			log.Warnf("tool %s: dropping undeclared argument %q", t.decl.Name, name)
		}
	}
	return coerced, nil
}

// coerceValue converts a raw argument to the declared primitive type.
// JSON decoding hands every number over as float64, so integral floats are
// accepted for int arguments.
func coerceValue(raw any, want tool.ArgType) (any, bool) {
	switch want {
	case tool.ArgString:
		s, ok := raw.(string)
		return s, ok
	case tool.ArgBool:
		b, ok := raw.(bool)
		return b, ok
	case tool.ArgInt:
		switch n := raw.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			if n == math.Trunc(n) {
				return int(n), true
			}
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return int(i), true
			}
		}
		return nil, false
	case tool.ArgFloat:
		switch n := raw.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
		return nil, false
	}
	return nil, false
}
