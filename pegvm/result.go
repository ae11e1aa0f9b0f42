package pegvm

import (
	"bytes"
	"fmt"
)

// Result is the outcome of one Match call.
type Result struct {
	// Matched is true iff the pattern matched the subject.
	Matched bool

	// End is the subject position just past the match. Only meaningful
	// when Matched is true.
	End int

	// Captures is the flat, append-only list of capture records produced
	// by the match. Only meaningful when Matched is true.
	Captures []Capture
}

func (r Result) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "{%v", r.Matched)
	if r.Matched {
		fmt.Fprintf(&buf, " end=%d [", r.End)
		for i, c := range r.Captures {
			if i != 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%d:%s", i, c)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.String()
}
