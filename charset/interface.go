// Package charset implements the character-class sets used by the PEG
// VM's ISet, ITestSet, and ISpan instructions.
//
// A grammar's character class ("[0-9]", "[a-zA-Z_]", "!['\"]", ...) is
// compiled down to a single 256-bit membership bitmap before the VM
// ever sees it — the dispatch loop only ever needs an O(1) bit test.
// This package provides the composable builders (Ranges, Or, And, Not,
// ...) a front end would use to build that bitmap, plus the concrete
// Dense representation the VM embeds directly in an Instruction.
package charset

// Matcher is a predicate that returns true for certain bytes.
//
// For the sake of all that is good and holy, implementations of Matcher
// must *not* change their state on a call to Match.
type Matcher interface {
	// Match returns true iff byte b is in the set.
	Match(b byte) bool

	// ForEach calls f exactly once for each byte in the set. The arguments
	// for successive calls are guaranteed to be in ascending order.
	ForEach(f func(b byte))

	// Optimize returns a Matcher that matches the same set of bytes, but
	// possibly in a more efficient way. If no better implementation can be
	// found, returns this matcher.
	Optimize() Matcher

	// String returns a string representation of the set.
	String() string
}

type asDenser interface {
	asDense() *Dense
}

// Bytes appends each byte matched by m to out, then returns the updated slice.
func Bytes(m Matcher, out []byte) []byte {
	m.ForEach(func(b byte) { out = append(out, b) })
	return out
}

// ToDense materializes m as a *Dense bitmap, the form an ISet/ITestSet/
// ISpan instruction operand requires. Matchers built from combinators
// (Or, And, Not, Ranges, ...) are collapsed to their bitmap once, at
// assembly time, so the interpreter loop never walks a Matcher tree.
func ToDense(m Matcher) *Dense {
	if md, ok := m.(*Dense); ok {
		return md
	}
	if mx, ok := m.(asDenser); ok {
		return mx.asDense()
	}
	mm := &Dense{}
	m.ForEach(func(b byte) {
		index, mask := denseIM(b)
		mm.Set[index] |= mask
	})
	return mm
}
