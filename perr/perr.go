// Copyright © 2024 Galvanized Logic Inc.

// Package perr defines the error kinds raised by the physics core.
// Every path is straight-line: initialization errors are returned to the
// caller, per-constraint and per-contact failures are local and silent
// (the caller just gets false/skip), and there is no panic or non-local
// unwind across the step loop.
package perr

import "fmt"

// Kind identifies one of the error categories the core can raise.
type Kind int

const (
	// InvalidIndex: a particle index is out of range for the state store.
	InvalidIndex Kind = iota
	// DegenerateGeometry: a singular rest matrix, zero-area/volume
	// measure, or coincident particles were found at constraint init.
	DegenerateGeometry
	// WrongTopology: a constraint kind was requested against a mesh
	// topology it cannot bind to (e.g. a volume constraint on a
	// triangle-only mesh).
	WrongTopology
	// Unconfigured: a step was requested before geometry was set.
	Unconfigured
	// BudgetExceeded: a soft resource limit was hit and truncated.
	// Warning-only, never fatal.
	BudgetExceeded
)

// Error lets a bare Kind be used as the target of errors.Is(err, perr.DegenerateGeometry).
func (k Kind) Error() string { return k.String() }

func (k Kind) String() string {
	switch k {
	case InvalidIndex:
		return "InvalidIndex"
	case DegenerateGeometry:
		return "DegenerateGeometry"
	case WrongTopology:
		return "WrongTopology"
	case Unconfigured:
		return "Unconfigured"
	case BudgetExceeded:
		return "BudgetExceeded"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the core's initialization
// paths. Op names the operation that failed; Detail carries a short
// human-readable explanation.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
}

// Is makes errors.Is(err, perr.DegenerateGeometry) etc. work without
// callers needing to unwrap to *Error and compare Kind by hand.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// New builds an *Error for the given kind, operation and detail.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}
