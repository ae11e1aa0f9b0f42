package pegvm

// frameKind distinguishes the three shapes of backtrack-stack entry.
type frameKind uint8

const (
	// frameChoice is pushed by IChoice (including the sentinel entry
	// pushed at the start of every match) and records an alternative to
	// resume at on failure.
	frameChoice frameKind = iota

	// frameReturn is pushed by an ordinary (non-left-recursive) ICall
	// and records where to resume after the matching IRet.
	frameReturn

	// frameLR is pushed by a left-recursive ICall and records both a
	// return address and the in-progress seed-and-grow state for that
	// call.
	frameLR
)

// lrSeedPending is the sentinel value of a left-recursion frame (or
// lambda-table entry)'s X field before any iteration has produced a
// result: "no seed yet".
const lrSeedPending = -1

// frame is one entry on the backtrack stack.
type frame struct {
	Kind frameKind

	// S is the subject position to restore on failure (frameChoice), or
	// the rule's call-site position (frameLR, used as part of the
	// lambda-table key).
	S int

	// P is the instruction to jump to: the alternative (frameChoice), or
	// the return address (frameReturn, frameLR).
	P int

	// CapLevel is the capture-buffer length to truncate back to on
	// failure. Only meaningful for frameChoice.
	CapLevel int

	// PA is the target rule's entry address. Only meaningful for
	// frameLR.
	PA int

	// X is the best subject position reached by the current seed so
	// far, or lrSeedPending if no iteration has succeeded yet. Only
	// meaningful for frameLR.
	X int
}
