package pegvm

import (
	"bytes"
	"errors"
	"fmt"
)

// assert panics if cond is false. Used only for internal invariants of
// well-formed, self-generated bytecode (e.g. an Assembler label defined
// twice) — never for conditions that hostile or corrupt bytecode handed to
// Match could trigger, which are reported as errors instead.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		var buf bytes.Buffer
		buf.WriteString("assertion failed: ")
		fmt.Fprintf(&buf, format, args...)
		panic(errors.New(buf.String()))
	}
}
