package pegvm

import (
	"errors"
	"fmt"
)

// Sentinels for the VM's three classes of fatal (never-retried) error.
// A plain non-match is never represented by an error — Result.Matched
// false, with a nil error, is what "the pattern did not match" looks
// like.
var (
	// ErrBacktrackOverflow means the backtrack stack grew past its
	// configured bound. Resource exhaustion.
	ErrBacktrackOverflow = errors.New("pegvm: backtrack stack overflow")

	// ErrTooManyCaptures means the capture buffer grew past its
	// configured bound. Resource exhaustion.
	ErrTooManyCaptures = errors.New("pegvm: too many captures")

	// ErrTooManyCaptureLists means the capture-stack (left-recursion
	// snapshot) depth grew past its configured bound. Resource
	// exhaustion.
	ErrTooManyCaptureLists = errors.New("pegvm: too many nested capture lists")

	// ErrTooManyResults means a match-time function returned more
	// result values than fit in the dynamic-value index space.
	ErrTooManyResults = errors.New("pegvm: too many results from match-time function")

	// ErrInvalidPosition means a match-time function returned a subject
	// position outside the bounds of the current match window.
	ErrInvalidPosition = errors.New("pegvm: match-time function returned an invalid position")

	// The sentinels below guard internal invariants of well-formed
	// bytecode (frame kinds lining up with the opcode that pops them,
	// indices in range). They should never fire against bytecode
	// produced by this package's own Assembler; they exist so that
	// hostile or corrupt bytecode is reported, not panicked on.
	errEmptyStack      = errors.New("pegvm: backtrack stack exhausted unexpectedly")
	errWrongFrameKind  = errors.New("pegvm: popped stack frame of unexpected kind")
	errIndexRange      = errors.New("pegvm: index out of range")
	errNoOpenGroup     = errors.New("pegvm: no open capture group for runtime capture")
)

// MatchError wraps one of the sentinels above with the position context
// at which it was raised. errors.Is(err, ErrBacktrackOverflow) and friends
// still work against a *MatchError via Unwrap.
type MatchError struct {
	Err error

	// XP is the instruction index at which the error was raised.
	XP int

	// DP is the subject position at which the error was raised.
	DP int
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("pegvm: match error @ ip %d pos %d: %v", e.XP, e.DP, e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }
