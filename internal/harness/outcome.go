package harness

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// TerminationMode selects what a failed invocation does to its caller.
type TerminationMode int

const (
	// Propagate re-raises the original error; batch callers fail the
	// whole process with it.
	Propagate TerminationMode = iota
	// Halt signals a graceful stop with a code; interactive-session
	// callers end the session instead of failing.
	Halt
)

// NullInputHaltCode is the halt code for the null-input failure class.
const NullInputHaltCode = 10

// Outcome is the terminal result of a single invocation: either a success
// carrying the result value, or a failure carrying the error and its
// termination mode. It is determined once; invocations are never retried.
type Outcome struct {
	Result   cty.Value
	Err      error
	Mode     TerminationMode
	HaltCode int
}

// Failed reports whether the invocation failed.
func (o *Outcome) Failed() bool { return o.Err != nil }

// AsError maps the outcome onto the error a batch caller should surface:
// nil on success, a HaltError for graceful stops, the original error
// otherwise.
func (o *Outcome) AsError() error {
	switch {
	case o.Err == nil:
		return nil
	case o.Mode == Halt:
		return &HaltError{Code: o.HaltCode, Err: o.Err}
	default:
		return o.Err
	}
}

// HaltError wraps a failure that requests a graceful stop with a specific
// process exit code rather than error propagation.
type HaltError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *HaltError) Error() string {
	return fmt.Sprintf("halt with code %d: %v", e.Code, e.Err)
}

// Unwrap exposes the original failure.
func (e *HaltError) Unwrap() error { return e.Err }
