package pegvm

import "fmt"

// Capture is one entry in the append-only capture buffer built up during a
// match. Open records (Siz == 0) are later closed by ICloseCapture or
// IFullCapture; a standalone full record already carries its whole span.
type Capture struct {
	// S is the subject position at which this capture opens (or, for a
	// close record, the position at which it closes).
	S int

	// Idx is the capture index (IOpenCapture/ICloseCapture/IFullCapture)
	// or, for a Cruntime record, the position of its value within the
	// set of dynamic values most recently pushed on the host value
	// stack.
	Idx int

	// Kind tags what this record represents.
	Kind CaptureKind

	// Siz is 0 for an open record. For a closed record it is 1 plus the
	// byte length of the captured span (so Siz == 1 denotes a
	// zero-length capture, distinguishing it from "still open").
	Siz int
}

func (c Capture) isOpen() bool { return c.Siz == 0 }

func (c Capture) String() string {
	if c.isOpen() {
		return fmt.Sprintf("{%d %s open}", c.S, c.Kind)
	}
	return fmt.Sprintf("{%d %s %d}", c.S, c.Kind, c.Siz-1)
}

// CaptureInfo records compile-time metadata about a named user capture,
// kept on Program for disassembly and for mapping capture indices back to
// grammar rule names.
type CaptureInfo struct {
	Name string
	Kind CaptureKind
}
