// Package facade is the coordination engine's single operation surface.
// It composes the store, compliance, and event-bus packages with the
// cross-cutting validation and gating invariants: every mutating call
// validates inputs, runs its preconditions, and executes its store
// writes. Task-lifecycle operations then emit changelog entries and
// events; intent, claim, evidence and agent operations only publish
// events.
package facade

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the error taxonomy: not a Go type hierarchy, just a closed
// set of tags callers switch on to decide how to react.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindNotFound          Kind = "NotFound"
	KindConflict          Kind = "ConflictError"
	KindPreconditionFailed Kind = "PreconditionFailed"
	KindDeadlineExceeded  Kind = "DeadlineExceeded"
	KindInternal          Kind = "Internal"
)

// Reason is the closed vocabulary of PreconditionFailed/ConflictError
// sub-codes.
type Reason string

const (
	ReasonNoIntent           Reason = "NO_INTENT"
	ReasonNoEvidence         Reason = "NO_EVIDENCE"
	ReasonDependencyBlocked  Reason = "DEPENDENCY_BLOCKED"
	ReasonWipExceeded        Reason = "WIP_EXCEEDED"
	ReasonComplianceFailed   Reason = "COMPLIANCE_FAILED"
	ReasonBoundaryViolation  Reason = "BOUNDARY_VIOLATION"
	ReasonComplianceBlocked  Reason = "COMPLIANCE_BLOCKED"
	ReasonSelfDependency     Reason = "SELF_DEPENDENCY"
	ReasonDuplicate          Reason = "DUPLICATE"
	ReasonCycle              Reason = "CYCLE"
	ReasonClaimConflict      Reason = "CLAIM_CONFLICT"
)

// selfCorrectingReasons get an actionable nextSteps list.
var selfCorrectingReasons = map[Reason][]string{
	ReasonComplianceFailed: {
		"attach evidence covering every file you modified",
		"post an intent declaring every file before claiming or modifying it",
	},
	ReasonComplianceBlocked: {
		"ensure every agent that touched this task has posted intent, attached evidence, and stayed within declared files and boundaries",
	},
	ReasonNoIntent: {
		"call postIntent for the files you intend to claim before calling createClaim",
	},
	ReasonNoEvidence: {
		"attach at least one evidence record before releasing claims",
	},
}

// Error is the rejection object returned to callers instead of a bare
// Go error, carrying a kind/reason/message/details/nextSteps shape.
type Error struct {
	Kind      Kind
	Reason    Reason
	Message   string
	Details   map[string]any
	NextSteps []string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, reason Reason, message string, details map[string]any) *Error {
	return &Error{
		Kind:      kind,
		Reason:    reason,
		Message:   message,
		Details:   details,
		NextSteps: selfCorrectingReasons[reason],
	}
}

func validationError(message string, details map[string]any) *Error {
	return newError(KindValidation, "", message, details)
}

func notFoundError(message string, details map[string]any) *Error {
	return newError(KindNotFound, "", message, details)
}

func conflictError(reason Reason, message string, details map[string]any) *Error {
	return newError(KindConflict, reason, message, details)
}

func preconditionError(reason Reason, message string, details map[string]any) *Error {
	return newError(KindPreconditionFailed, reason, message, details)
}

func deadlineExceededError(message string) *Error {
	return newError(KindDeadlineExceeded, "", message, nil)
}

// internalError wraps a store-layer failure. A store call that failed
// because the caller's deadline expired mid-transaction is reported as
// DeadlineExceeded rather than Internal, per the "no side effects on
// cancellation" contract: every store method threads ctx through to its
// sql calls, so a cancelled/expired context surfaces here as
// context.Canceled or context.DeadlineExceeded.
func internalError(message string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return deadlineExceededError(fmt.Sprintf("%s: %v", message, err))
	}
	return newError(KindInternal, "", fmt.Sprintf("%s: %v", message, err), nil)
}
