// Package pegvm implements a stack-based bytecode virtual machine for
// Parsing Expression Grammars: ordered choice with backtracking, rule
// calls, bounded left recursion via seed-and-grow, UTF-8 range tests,
// character-class sets, and both structural and match-time captures.
//
// A compiled Program is a flat []Instruction; instruction addresses are
// simply indices into that slice. Each Instruction is a fixed-width
// tagged struct (see Instruction) rather than a variable-length encoding,
// so jump arithmetic never needs a disassembly pass to find instruction
// boundaries — the usual reason a VM like this reaches for packed,
// variable-width bytecode in the first place.
//
// Match drives one Matcher through the program against a subject slice.
// The Matcher owns:
//
//   - a backtrack stack of choice, return, and left-recursion frames
//     (see frame)
//   - an append-only capture buffer (see Capture)
//   - a lambda table memoizing in-progress left-recursive call sites
//     (see lambdaTable)
//   - a capture stack of snapshots taken whenever a left-recursive call
//     seeds, so its iterations build captures against a clean buffer
//     (see capStackEntry)
//   - a ValueStack of host-supplied values threaded through match-time
//     (ICloseRunTime) captures
//
// Left recursion works by seed-and-grow: the first call to a rule at a
// given position fails with no match (the "seed"), then each subsequent
// return from that rule re-invokes its body, keeping the result only if
// it advanced strictly further than the previous attempt. The call stops
// growing — converges — the first time an iteration fails to advance, or
// fails outright; whichever subject position was reached by the last
// successful iteration becomes the rule's result at that call site.
//
// Instruction reference:
//
//	IAny            consume one byte, any value
//	IChar           consume one byte equal to Aux
//	ISet            consume one byte in Set
//	ITestAny        lookahead form of IAny: jump on failure, no frame
//	ITestChar       lookahead form of IChar
//	ITestSet        lookahead form of ISet
//	ISpan           consume a maximal run of bytes in Set; never fails
//	IUTFR           consume one UTF-8 sequence in code point range [lo,hi]
//	IBehind         rewind the subject position by Aux bytes
//	IJmp            unconditional jump
//	ICall           invoke a rule; left-recursive if Aux (precedence) != 0
//	IRet            return from ICall, or continue/conclude left recursion
//	IChoice         push a choice frame recording an alternative
//	ICommit         pop a choice frame and jump, discarding it
//	IPartialCommit  refresh the top choice frame in place and jump
//	IBackCommit     pop a choice frame, restore its position, and jump
//	IFailTwice      pop one choice frame, then fail
//	IFail           unwind to the nearest choice frame, or fail the match
//	IGiveup         unconditionally fail the match
//	IOpenCapture    push an open capture record
//	ICloseCapture   close the most recently opened capture record
//	IFullCapture    push one already-closed capture record
//	ICloseRunTime   invoke a host function and splice its result
//	IEmpty          no-op, used as assembler padding/label anchor
//	IEnd            succeed the match
package pegvm
