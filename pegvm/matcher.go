package pegvm

import (
	"fmt"
	"unicode/utf8"
)

const (
	initCaptureSize  = 32
	initBacktrack    = 16
	initCaptureStack = 4

	maxCaptures      = 1 << 22
	maxCaptureStacks = 1 << 16
	maxDynCapIndex   = 1 << 16
)

// Matcher holds all of the mutable state for one in-progress match: the
// subject window, the instruction pointer, the backtrack stack, the
// capture buffer, and the left-recursion bookkeeping. Bundling every piece
// of that state into a single struct (instead of passing each piece as its
// own parameter, or reaching for package-level globals) keeps Match
// reentrant and keeps every helper method's signature small.
type Matcher struct {
	input []byte
	prog  *Program
	vals  *ValueStack

	o, e int // subject window: valid positions are [o, e]
	s    int // current subject position

	stack   []frame
	capture []Capture
	lambda  lambdaTable
	capstk  []capStackEntry
	ndyncap int
}

// Match runs prog against input[s:e] (o is the window's own absolute base,
// normally 0; it need not be 0 when the caller matches within a larger
// enclosing buffer), returning whether it matched, how far it advanced,
// and what it captured. vals supplies and collects the dynamic values
// exchanged with any match-time (ICloseRunTime) functions in prog; pass
// NewValueStack() for a pattern with none.
func Match(prog *Program, input []byte, o, s, e int, vals *ValueStack) (Result, error) {
	m := &Matcher{
		input:   input,
		prog:    prog,
		vals:    vals,
		o:       o,
		e:       e,
		s:       s,
		stack:   make([]frame, 0, initBacktrack),
		capture: make([]Capture, 0, initCaptureSize),
		lambda:  make(lambdaTable),
		capstk:  make([]capStackEntry, 0, initCaptureStack),
	}
	// Sentinel choice frame: on ultimate failure, fail() pops this and
	// returns its P, which is the virtual address just past the
	// program — run treats that as IGiveup.
	m.stack = append(m.stack, frame{Kind: frameChoice, S: s, P: len(prog.Instructions), CapLevel: 0})
	return m.run(0)
}

func (m *Matcher) raise(p int, err error) (Result, error) {
	return Result{}, &MatchError{Err: err, XP: p, DP: m.s}
}

func (m *Matcher) run(p int) (Result, error) {
	for {
		if p >= len(m.prog.Instructions) {
			return Result{Matched: false}, nil
		}
		ins := m.prog.Instructions[p]
		next := p + 1

		switch ins.Code {
		case IEmpty:
			p = next

		case IAny:
			if m.s < m.e {
				m.s++
				p = next
			} else {
				np, err := m.fail(p)
				if err != nil {
					return Result{}, err
				}
				p = np
			}

		case IChar:
			if m.s < m.e && m.input[m.s] == ins.Aux {
				m.s++
				p = next
			} else {
				np, err := m.fail(p)
				if err != nil {
					return Result{}, err
				}
				p = np
			}

		case ISet:
			if m.s < m.e && ins.Set.Match(m.input[m.s]) {
				m.s++
				p = next
			} else {
				np, err := m.fail(p)
				if err != nil {
					return Result{}, err
				}
				p = np
			}

		case ITestAny:
			if m.s < m.e {
				p = next
			} else {
				p = next + int(ins.Offset)
			}

		case ITestChar:
			if m.s < m.e && m.input[m.s] == ins.Aux {
				p = next
			} else {
				p = next + int(ins.Offset)
			}

		case ITestSet:
			if m.s < m.e && ins.Set.Match(m.input[m.s]) {
				p = next
			} else {
				p = next + int(ins.Offset)
			}

		case ISpan:
			for m.s < m.e && ins.Set.Match(m.input[m.s]) {
				m.s++
			}
			p = next

		case IUTFR:
			lo, hi := ins.utfRange()
			r, size := utf8.DecodeRune(m.input[m.s:m.e])
			if !(r == utf8.RuneError && size <= 1) && r >= lo && r <= hi {
				m.s += size
				p = next
			} else {
				np, err := m.fail(p)
				if err != nil {
					return Result{}, err
				}
				p = np
			}

		case IBehind:
			if m.s-m.o >= int(ins.Aux) {
				m.s -= int(ins.Aux)
				p = next
			} else {
				np, err := m.fail(p)
				if err != nil {
					return Result{}, err
				}
				p = np
			}

		case IJmp:
			p = next + int(ins.Offset)

		case IChoice:
			if len(m.stack) >= maxBacktrackDepth {
				return m.raise(p, backtrackOverflow())
			}
			m.stack = append(m.stack, frame{
				Kind:     frameChoice,
				S:        m.s,
				P:        next + int(ins.Offset),
				CapLevel: len(m.capture),
			})
			p = next

		case ICommit:
			if _, err := m.popFrame(p, frameChoice); err != nil {
				return Result{}, err
			}
			p = next + int(ins.Offset)

		case IPartialCommit:
			if len(m.stack) == 0 || m.stack[len(m.stack)-1].Kind != frameChoice {
				return m.raise(p, errWrongFrameKind)
			}
			top := &m.stack[len(m.stack)-1]
			top.S = m.s
			top.CapLevel = len(m.capture)
			p = next + int(ins.Offset)

		case IBackCommit:
			fr, err := m.popFrame(p, frameChoice)
			if err != nil {
				return Result{}, err
			}
			m.s = fr.S
			m.capture = m.capture[:fr.CapLevel]
			p = next + int(ins.Offset)

		case IFailTwice:
			if _, err := m.popFrame(p, frameChoice); err != nil {
				return Result{}, err
			}
			np, err := m.fail(p)
			if err != nil {
				return Result{}, err
			}
			p = np

		case IFail:
			np, err := m.fail(p)
			if err != nil {
				return Result{}, err
			}
			p = np

		case IGiveup:
			return Result{Matched: false}, nil

		case IRet:
			np, err := m.ret(p, next)
			if err != nil {
				return Result{}, err
			}
			p = np

		case ICall:
			np, err := m.call(p, next, ins)
			if err != nil {
				return Result{}, err
			}
			p = np

		case IOpenCapture:
			if err := m.appendCapture(p, Capture{S: m.s, Idx: ins.captureIdx(), Kind: ins.captureKind(), Siz: 0}); err != nil {
				return Result{}, err
			}
			p = next

		case ICloseCapture:
			m.closeCapture(ins)
			p = next

		case IFullCapture:
			span := int(ins.Offset)
			if err := m.appendCapture(p, Capture{S: m.s - span, Idx: ins.captureIdx(), Kind: ins.captureKind(), Siz: span + 1}); err != nil {
				return Result{}, err
			}
			p = next

		case ICloseRunTime:
			np, err := m.closeRunTime(p, next, ins)
			if err != nil {
				return Result{}, err
			}
			p = np

		case IEnd:
			m.capture = append(m.capture, Capture{Kind: Cclose, S: -1, Siz: 1})
			out := make([]Capture, len(m.capture))
			copy(out, m.capture)
			return Result{Matched: true, End: m.s, Captures: out}, nil

		default:
			return m.raise(p, errIndexRange)
		}
	}
}

const maxBacktrackDepth = 1 << 20

// backtrackOverflow wraps ErrBacktrackOverflow with the configured limit,
// per the fatal-error contract's "current limit is N" diagnostic text.
func backtrackOverflow() error {
	return fmt.Errorf("%w (current limit is %d)", ErrBacktrackOverflow, maxBacktrackDepth)
}

func (m *Matcher) appendCapture(p int, c Capture) error {
	if len(m.capture) >= maxCaptures {
		_, err := m.raise(p, ErrTooManyCaptures)
		return err
	}
	m.capture = append(m.capture, c)
	return nil
}

func (m *Matcher) popFrame(p int, want frameKind) (frame, error) {
	if len(m.stack) == 0 {
		_, err := m.raise(p, errEmptyStack)
		return frame{}, err
	}
	fr := m.stack[len(m.stack)-1]
	if fr.Kind != want {
		_, err := m.raise(p, errWrongFrameKind)
		return frame{}, err
	}
	m.stack = m.stack[:len(m.stack)-1]
	return fr, nil
}

// closeCapture closes the most recently opened capture record. When that
// record is the top of the buffer it is always coalesced into a full
// record in place, whatever its span; otherwise a separate close record
// is appended.
func (m *Matcher) closeCapture(ins Instruction) {
	if len(m.capture) > 0 && m.capture[len(m.capture)-1].isOpen() {
		top := &m.capture[len(m.capture)-1]
		span := m.s - top.S
		top.Siz = span + 1
		return
	}
	m.capture = append(m.capture, Capture{S: m.s, Idx: ins.captureIdx(), Kind: ins.captureKind(), Siz: 1})
}

// fail implements the failure protocol: unwind backtrack-stack frames
// until a plain choice frame is found (restoring it), resolving any
// left-recursive frames encountered along the way per the bounded
// left-recursion rules. p is only used for error context.
func (m *Matcher) fail(p int) (int, error) {
	for {
		if len(m.stack) == 0 {
			_, err := m.raise(p, errEmptyStack)
			return 0, err
		}
		fr := m.stack[len(m.stack)-1]

		switch fr.Kind {
		case frameReturn:
			m.stack = m.stack[:len(m.stack)-1]
			continue

		case frameLR:
			m.stack = m.stack[:len(m.stack)-1]
			key := lambdaKey{Rule: fr.PA, Pos: fr.S}
			entry := m.lambda[key]
			if fr.X == lrSeedPending {
				// This call never produced a single successful
				// iteration: it fails entirely. Restore the outer
				// scope and keep unwinding.
				m.popCaptureStack()
				delete(m.lambda, key)
				continue
			}
			// At least one iteration succeeded (inc.2): treat the
			// best seed reached so far as the final result.
			m.s = fr.X
			m.popCaptureStack()
			m.spliceCommit(entry.CommitCap, entry.CommitDynCap)
			delete(m.lambda, key)
			return fr.P, nil

		default: // frameChoice
			m.stack = m.stack[:len(m.stack)-1]
			if m.ndyncap > 0 {
				m.dropDynamicCapturesAtOrAbove(fr.CapLevel)
			}
			m.s = fr.S
			m.capture = m.capture[:fr.CapLevel]
			return fr.P, nil
		}
	}
}

func (m *Matcher) dropDynamicCapturesAtOrAbove(level int) {
	n := 0
	for i := level; i < len(m.capture); i++ {
		if m.capture[i].Kind == Cruntime {
			n++
		}
	}
	if n > 0 {
		m.vals.Drop(n)
		m.ndyncap -= n
	}
}

// pushCaptureStack snapshots the current capture buffer and dynamic
// values, then resets both to empty so a seed iteration runs against a
// clean slate.
func (m *Matcher) pushCaptureStack() error {
	if len(m.capstk) >= maxCaptureStacks {
		return ErrTooManyCaptureLists
	}
	saved := m.vals.Drain(m.ndyncap)
	m.capstk = append(m.capstk, capStackEntry{
		Captures:    m.capture,
		DynCapTop:   m.ndyncap,
		SavedValues: saved,
	})
	m.capture = make([]Capture, 0, initCaptureSize)
	m.ndyncap = 0
	return nil
}

func (m *Matcher) popCaptureStack() capStackEntry {
	n := len(m.capstk) - 1
	e := m.capstk[n]
	m.capstk = m.capstk[:n]
	m.capture = e.Captures
	m.ndyncap = e.DynCapTop
	m.vals.PushAll(e.SavedValues)
	return e
}

// spliceCommit appends a snapshot of captures (with Cruntime indices
// translated to the current dynamic-value stack) on top of the current
// capture buffer, and pushes the corresponding dynamic values.
func (m *Matcher) spliceCommit(capBuf []Capture, dynVals []Value) {
	base := m.ndyncap
	for _, c := range capBuf {
		if c.Kind == Cruntime {
			c.Idx += base
		}
		m.capture = append(m.capture, c)
	}
	m.vals.PushAll(dynVals)
	m.ndyncap += len(dynVals)
}

// call implements ICall: either an ordinary rule invocation, or — when
// ins.Aux (the call's precedence k) is nonzero — a left-recursive one,
// following the bounded seed-and-grow protocol.
func (m *Matcher) call(p, next int, ins Instruction) (int, error) {
	target := next + int(ins.Offset)
	if ins.Aux == 0 {
		if len(m.stack) >= maxBacktrackDepth {
			_, err := m.raise(p, backtrackOverflow())
			return 0, err
		}
		m.stack = append(m.stack, frame{Kind: frameReturn, P: next})
		return target, nil
	}

	key := lambdaKey{Rule: target, Pos: m.s}
	entry, found := m.lambda[key]
	if !found {
		// Seed this call site for the first time.
		if err := m.pushCaptureStack(); err != nil {
			_, rerr := m.raise(p, err)
			return 0, rerr
		}
		entry = &lambdaEntry{X: lrSeedPending, K: ins.Aux}
		m.lambda[key] = entry
		if len(m.stack) >= maxBacktrackDepth {
			_, err := m.raise(p, backtrackOverflow())
			return 0, err
		}
		m.stack = append(m.stack, frame{Kind: frameLR, S: m.s, P: next, PA: target, X: lrSeedPending})
		return target, nil
	}
	if entry.X == lrSeedPending || ins.Aux < entry.K {
		// Either the seed never succeeded once, or this call wants a
		// tighter precedence than the one that's currently growing:
		// fail immediately rather than recursing further.
		np, err := m.fail(p)
		return np, err
	}
	// Reuse the best result produced so far for this call site.
	m.spliceCommit(entry.CommitCap, entry.CommitDynCap)
	m.s = entry.X
	return next, nil
}

// ret implements IRet: an ordinary return, or — for a left-recursive
// frame — either restarting the rule body for another growth iteration, or
// concluding the recursion once it has stopped advancing.
func (m *Matcher) ret(p, next int) (int, error) {
	if len(m.stack) == 0 {
		_, err := m.raise(p, errEmptyStack)
		return 0, err
	}
	fr := m.stack[len(m.stack)-1]
	switch fr.Kind {
	case frameReturn:
		m.stack = m.stack[:len(m.stack)-1]
		return fr.P, nil

	case frameChoice:
		_, err := m.raise(p, errWrongFrameKind)
		return 0, err

	default: // frameLR
		key := lambdaKey{Rule: fr.PA, Pos: fr.S}
		entry := m.lambda[key]
		if fr.X == lrSeedPending || m.s > fr.X {
			// The seed improved: snapshot this iteration's captures
			// and restart the rule body for another try.
			m.stack[len(m.stack)-1].X = m.s
			entry.X = m.s
			entry.CommitCap = append([]Capture(nil), m.capture...)
			entry.CommitDynCap = m.vals.Tail(m.ndyncap)
			m.vals.Drop(m.ndyncap)
			m.capture = m.capture[:0]
			m.ndyncap = 0
			m.s = fr.S
			return fr.PA, nil
		}
		// Converged: this iteration made no further progress, so the
		// previous one is the final result.
		m.stack = m.stack[:len(m.stack)-1]
		m.s = fr.X
		m.popCaptureStack()
		m.spliceCommit(entry.CommitCap, entry.CommitDynCap)
		delete(m.lambda, key)
		return fr.P, nil
	}
}

// closeRunTime implements ICloseRunTime: locate the enclosing open group,
// gather its nested captures and dynamic values as arguments, invoke the
// host function, and splice its decision back into the capture stream.
func (m *Matcher) closeRunTime(p, next int, ins Instruction) (int, error) {
	fnIdx := int(ins.Key)
	if fnIdx < 0 || fnIdx >= len(m.prog.RunTimeFuncs) {
		_, err := m.raise(p, errIndexRange)
		return 0, err
	}
	groupIdx := -1
	for i := len(m.capture) - 1; i >= 0; i-- {
		if m.capture[i].isOpen() {
			groupIdx = i
			break
		}
	}
	if groupIdx < 0 {
		_, err := m.raise(p, errNoOpenGroup)
		return 0, err
	}

	nested := m.capture[groupIdx+1:]
	rem := 0
	for _, c := range nested {
		if c.Kind == Cruntime {
			rem++
		}
	}
	args := m.vals.Tail(rem)

	fn := m.prog.RunTimeFuncs[fnIdx]
	result, err := fn(m.input, m.s, args)
	if err != nil {
		_, rerr := m.raise(p, err)
		return 0, rerr
	}
	if result.Reject {
		return m.fail(p)
	}
	if result.NewPos >= 0 {
		if result.NewPos < m.s || result.NewPos > m.e {
			_, rerr := m.raise(p, ErrInvalidPosition)
			return 0, rerr
		}
		m.s = result.NewPos
	}

	m.capture = m.capture[:groupIdx+1]
	m.vals.Drop(rem)
	m.ndyncap -= rem

	if len(result.Captures) == 0 {
		m.capture = m.capture[:groupIdx]
	} else {
		if m.ndyncap+len(result.Captures) > maxDynCapIndex {
			_, rerr := m.raise(p, ErrTooManyResults)
			return 0, rerr
		}
		for _, v := range result.Captures {
			m.capture = append(m.capture, Capture{S: m.s, Idx: m.ndyncap, Kind: Cruntime, Siz: 1})
			m.vals.Push(v)
			m.ndyncap++
		}
		m.capture = append(m.capture, Capture{Kind: Cclose, S: m.s, Siz: 1})
	}
	return next, nil
}
