// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that leaves a command is tagged with a Kind so the root command can
// pick an exit code and decide how much detail to show. Underlying errors are kept
// and remain reachable through errors.Is / errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Usage indicates missing or conflicting command-line inputs.
	Usage Kind = "usage"
	// Template indicates a query template that failed to render or references
	// a parameter that was not supplied.
	Template Kind = "template"
	// Staging indicates malformed temporary-table input.
	Staging Kind = "staging"
	// External indicates a failure in the model API or the database.
	External Kind = "external"
	// Config indicates an unreadable or invalid configuration.
	Config Kind = "config"
	// IO indicates a local file read or write failure.
	IO Kind = "io"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the outermost *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *E
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Success
	ExitError    = 1 // General error (config, local I/O, anything untyped)
	ExitUsage    = 2 // Missing or conflicting arguments
	ExitData     = 3 // Template or staging input could not be used
	ExitExternal = 4 // Model API or database failure
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case Usage:
		return ExitUsage
	case Template, Staging:
		return ExitData
	case External:
		return ExitExternal
	default:
		return ExitError
	}
}
