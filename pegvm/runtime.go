package pegvm

// RunTimeFunc is a host-supplied match-time function, invoked by
// ICloseRunTime. input is the full subject; pos is the current subject
// position; nested carries the dynamic values produced by any runtime
// captures already closed inside this function's own capture group.
//
// The calling convention this type encodes is a direct, statically-typed
// rendering of the reference VM's dynamic "falsy means fail, an integer
// means reposition, anything else means keep going" protocol — picking a
// concrete host language for that protocol is outside this package's
// scope, so the three cases are spelled out as fields instead.
type RunTimeFunc func(input []byte, pos int, nested []Value) (RunTimeResult, error)

// RunTimeResult is the decision a RunTimeFunc hands back to the VM.
type RunTimeResult struct {
	// Reject, if true, fails the match-time capture as though the
	// pattern itself had failed at this point.
	Reject bool

	// NewPos repositions the subject pointer to an absolute offset when
	// >= 0. A negative value leaves the subject position unchanged.
	NewPos int

	// Captures holds zero or more extra values; each becomes one new
	// Cruntime capture record at the current position.
	Captures []Value
}

// unchangedPos is the RunTimeResult.NewPos value meaning "leave s alone".
const unchangedPos = -1
