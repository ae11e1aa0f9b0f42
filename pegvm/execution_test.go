package pegvm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyonlabs/lpegvm/charset"
)

// buildOneOrMoreA assembles 'a'^+ : one or more 'a' bytes, compiled the
// classic choice/partial-commit way rather than with ISpan, so the
// backtrack-frame machinery gets exercised end to end.
func buildOneOrMoreA() *Program {
	a := NewAssembler()
	a.Char('a')
	a.Label("loop")
	a.Choice("done")
	a.Char('a')
	a.PartialCommit("loop")
	a.Label("done")
	a.End()
	return a.Finish()
}

func TestOneOrMore(t *testing.T) {
	prog := buildOneOrMoreA()

	res, err := Match(prog, []byte("aaab"), 0, 0, 4, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 3, res.End)

	res, err = Match(prog, []byte("baaa"), 0, 0, 4, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)

	res, err = Match(prog, []byte(""), 0, 0, 0, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

// buildDigitRun assembles [0-9]+ using ISpan for the tail and a leading
// ISet for the mandatory first digit.
func buildDigitRun() *Program {
	digit := charset.ToDense(charset.Ranges(charset.Range{Lo: '0', Hi: '9'}))
	a := NewAssembler()
	a.Set(digit)
	a.Span(digit)
	a.End()
	return a.Finish()
}

func TestDigitRun(t *testing.T) {
	prog := buildDigitRun()

	res, err := Match(prog, []byte("042x"), 0, 0, 4, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 3, res.End)

	res, err = Match(prog, []byte("x042"), 0, 0, 4, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

// buildLeftRecursiveSum assembles the classic left-recursive grammar
//
//	E <- E '+' 'n' / 'n'
//
// using a single precedence level (k=1) for both the entry call and the
// recursive call within E's own body, per the bounded seed-and-grow
// left-recursion protocol.
func buildLeftRecursiveSum() *Program {
	a := NewAssembler()
	a.Call("E", 1)
	a.End()

	a.Label("E")
	a.Choice("alt")
	a.Call("E", 1)
	a.Char('+')
	a.Char('n')
	a.Commit("end")
	a.Label("alt")
	a.Char('n')
	a.Label("end")
	a.Ret()

	return a.Finish()
}

func TestLeftRecursion(t *testing.T) {
	prog := buildLeftRecursiveSum()

	res, err := Match(prog, []byte("n+n+n"), 0, 0, 5, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 5, res.End)

	res, err = Match(prog, []byte("n"), 0, 0, 1, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.End)

	res, err = Match(prog, []byte("+n"), 0, 0, 2, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)

	// A dangling trailing '+' leaves the best-so-far iteration as the
	// final result: the match stops after the last complete "+n".
	res, err = Match(prog, []byte("n+n+"), 0, 0, 4, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 3, res.End)
}

// buildMatchTimeDigit wraps one digit in a group closed by a match-time
// function, so the function sees exactly the digit byte just consumed.
func buildMatchTimeDigit(fn RunTimeFunc) *Program {
	digit := charset.ToDense(charset.Ranges(charset.Range{Lo: '0', Hi: '9'}))
	a := NewAssembler()
	fnIdx := a.DeclareRunTimeFunc(fn)
	a.OpenCapture(0, Cgroup)
	a.Set(digit)
	a.CloseRunTime(fnIdx)
	a.End()
	return a.Finish()
}

func TestMatchTimeCapture(t *testing.T) {
	reject0 := func(input []byte, pos int, nested []Value) (RunTimeResult, error) {
		if input[pos-1] == '0' {
			return RunTimeResult{Reject: true}, nil
		}
		return RunTimeResult{
			NewPos:   unchangedPos,
			Captures: []Value{"digit:" + string(input[pos-1])},
		}, nil
	}
	prog := buildMatchTimeDigit(reject0)

	res, err := Match(prog, []byte("5"), 0, 0, 1, NewValueStack())
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, 1, res.End)

	var runtimeVals []int
	for i, c := range res.Captures {
		if c.Kind == Cruntime {
			runtimeVals = append(runtimeVals, i)
		}
	}
	require.Len(t, runtimeVals, 1)

	res, err = Match(prog, []byte("0"), 0, 0, 1, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestMatchTimeCaptureValuesReachValueStack(t *testing.T) {
	echo := func(input []byte, pos int, nested []Value) (RunTimeResult, error) {
		return RunTimeResult{NewPos: unchangedPos, Captures: []Value{"ok"}}, nil
	}
	prog := buildMatchTimeDigit(echo)
	vals := NewValueStack()

	res, err := Match(prog, []byte("7"), 0, 0, 1, vals)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, 1, vals.Len())
	assert.Equal(t, []Value{"ok"}, vals.All())
}

// TestMatchTimeInvalidPosition checks the match-time reposition boundary:
// a returned position equal to the window's end e is accepted, while one
// byte past it is a fatal contract violation.
func TestMatchTimeInvalidPosition(t *testing.T) {
	acceptBoundary := func(input []byte, pos int, nested []Value) (RunTimeResult, error) {
		return RunTimeResult{NewPos: len(input)}, nil
	}
	prog := buildMatchTimeDigit(acceptBoundary)

	res, err := Match(prog, []byte("5"), 0, 0, 1, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.End)

	rejectPastBoundary := func(input []byte, pos int, nested []Value) (RunTimeResult, error) {
		return RunTimeResult{NewPos: len(input) + 1}, nil
	}
	prog = buildMatchTimeDigit(rejectPastBoundary)

	_, err = Match(prog, []byte("5"), 0, 0, 1, NewValueStack())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPosition))

	var merr *MatchError
	require.True(t, errors.As(err, &merr))
}

// TestMatchTimeTooManyResults checks that a match-time function returning
// more values than fit in the dynamic-value index space is a fatal
// contract violation rather than a silent truncation.
func TestMatchTimeTooManyResults(t *testing.T) {
	tooMany := func(input []byte, pos int, nested []Value) (RunTimeResult, error) {
		caps := make([]Value, maxDynCapIndex+1)
		for i := range caps {
			caps[i] = i
		}
		return RunTimeResult{NewPos: unchangedPos, Captures: caps}, nil
	}
	prog := buildMatchTimeDigit(tooMany)

	_, err := Match(prog, []byte("5"), 0, 0, 1, NewValueStack())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyResults))
}

// buildUTFRange assembles a single IUTFR test over the two-byte UTF-8
// range [U+0080, U+07FF] — the full span encodable in exactly two bytes.
func buildUTFRange() *Program {
	a := NewAssembler()
	a.UTFRange(0x80, 0x7FF)
	a.End()
	return a.Finish()
}

func TestUTF8Range(t *testing.T) {
	prog := buildUTFRange()

	// U+0080, the low boundary, encoded properly in two bytes.
	res, err := Match(prog, []byte{0xC2, 0x80}, 0, 0, 2, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 2, res.End)

	// U+07FF, the high boundary.
	res, err = Match(prog, []byte{0xDF, 0xBF}, 0, 0, 2, NewValueStack())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 2, res.End)

	// U+0000 overlong-encoded in two bytes: Go's UTF-8 decoder reports
	// this as invalid, so the range test must fail rather than accept
	// rune 0.
	res, err = Match(prog, []byte{0xC0, 0x80}, 0, 0, 2, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)

	// U+0800, one past the range's high boundary, needs three bytes and
	// must be rejected.
	res, err = Match(prog, []byte{0xE0, 0xA0, 0x80}, 0, 0, 3, NewValueStack())
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

// buildUnboundedChoiceLoop assembles an IChoice/IJmp cycle that never
// commits or fails, so every iteration pushes one more backtrack frame
// until the bound is hit.
func buildUnboundedChoiceLoop() *Program {
	a := NewAssembler()
	a.Label("loop")
	a.Choice("done")
	a.Jmp("loop")
	a.Label("done")
	a.Giveup()
	return a.Finish()
}

func TestBacktrackOverflow(t *testing.T) {
	prog := buildUnboundedChoiceLoop()

	_, err := Match(prog, []byte("x"), 0, 0, 1, NewValueStack())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBacktrackOverflow))

	var merr *MatchError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 0, merr.DP)
}
