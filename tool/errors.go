//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

package tool

import (
	"errors"
	"fmt"
)

// Sentinel errors define a shared vocabulary for registry and argument
// failures. Registration-time errors are fatal at startup; selection-time
// and argument-time errors are recoverable up to the loop's retry budget.
var (
	// ErrDuplicateTool indicates a registration under an already-taken name.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrInvalidDescriptor indicates a declaration violating a descriptor
	// invariant.
	ErrInvalidDescriptor = errors.New("invalid tool descriptor")

	// ErrUnknownTool indicates a lookup of a name absent from the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrRegistryFinalized indicates a registration attempted after the
	// registry was finalized.
	ErrRegistryFinalized = errors.New("registry is finalized")
)

func invalidDescriptorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDescriptor, fmt.Sprintf(format, args...))
}

// ArgumentTypeError reports a call argument that does not match its declared
// primitive type tag.
type ArgumentTypeError struct {
	Tool     string
	Argument string
	Want     ArgType
	Got      any
}

// Error implements the error interface.
func (e *ArgumentTypeError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("tool %s: argument %q: required %s value is missing", e.Tool, e.Argument, e.Want)
	}
	return fmt.Sprintf("tool %s: argument %q: expected %s, got %T", e.Tool, e.Argument, e.Want, e.Got)
}
