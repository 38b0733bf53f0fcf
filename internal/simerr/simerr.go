// Package simerr defines the typed error taxonomy shared by the engine
// and its front-end adapters.
package simerr

import (
	"errors"
	"fmt"
)

// Kind classifies a simulation error for callers that need to branch on it.
type Kind string

const (
	LookupKind        Kind = "lookup"
	BusyKind          Kind = "busy"
	InvalidIntentKind Kind = "invalid_intent"
	UnknownToolKind   Kind = "unknown_tool"
	PlannerKind       Kind = "planner"
	TransportKind     Kind = "transport"
	ConfigKind        Kind = "config"
)

// Error carries a kind plus a human-readable message. Command submission
// surfaces these to the caller without mutating world state.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, unwrapping as needed; "" when err
// is not a simulation error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a simulation error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
