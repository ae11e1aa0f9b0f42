package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allBytes []byte

func init() {
	allBytes = make([]byte, 256)
	for i := 0; i < 256; i++ {
		allBytes[i] = byte(i)
	}
}

func collect(m Matcher) []byte {
	var out []byte
	m.ForEach(func(b byte) { out = append(out, b) })
	return out
}

func TestAll(t *testing.T) {
	m := All()
	assert.True(t, m.Match('0'))
	assert.True(t, m.Match(0xff))
	assert.Equal(t, allBytes, collect(m))
	assert.Equal(t, ".", m.String())
}

func TestNone(t *testing.T) {
	m := None()
	assert.False(t, m.Match('0'))
	assert.Empty(t, collect(m))
}

func TestExactly(t *testing.T) {
	m := Exactly('+')
	assert.True(t, m.Match('+'))
	assert.False(t, m.Match('-'))
	assert.Equal(t, []byte{'+'}, collect(m))
}

func TestRanges_Digit(t *testing.T) {
	// grammar class "[0-9]"
	digit := Ranges(Range{'0', '9'})
	for b := byte(0); b < 255; b++ {
		assert.Equal(t, b >= '0' && b <= '9', digit.Match(b), "byte %#02x", b)
	}
	assert.Equal(t, b9(), collect(digit))
}

func b9() []byte {
	out := make([]byte, 0, 10)
	for b := byte('0'); b <= '9'; b++ {
		out = append(out, b)
	}
	return out
}

func TestRanges_CoalescesOverlapAndAdjacency(t *testing.T) {
	m := Ranges(Range{'a', 'f'}, Range{'d', 'm'}, Range{'n', 'z'}, Range{'A', 'A'})
	mr, ok := m.(*mRange)
	require.True(t, ok)
	require.Len(t, mr.Ranges, 2)
	assert.Equal(t, Range{'A', 'A'}, mr.Ranges[0])
	assert.Equal(t, Range{'a', 'z'}, mr.Ranges[1])
}

func TestOr_LetterOrDigit(t *testing.T) {
	// grammar class "[a-zA-Z0-9]"
	m := Or(Ranges(Range{'a', 'z'}, Range{'A', 'Z'}), Ranges(Range{'0', '9'}))
	assert.True(t, m.Match('Q'))
	assert.True(t, m.Match('7'))
	assert.False(t, m.Match('_'))
}

func TestAnd_Intersection(t *testing.T) {
	m := And(Ranges(Range{'0', '9'}), Ranges(Range{'5', 0xff}))
	assert.True(t, m.Match('7'))
	assert.False(t, m.Match('3'))
}

func TestNot_Negates(t *testing.T) {
	// grammar class "![\n\r]" used by line comments: any but newline/cr
	m := Not(DenseSet('\n', '\r'))
	assert.True(t, m.Match('x'))
	assert.False(t, m.Match('\n'))
}

func TestNot_OptimizeEliminatesDoubleNegation(t *testing.T) {
	digits := Ranges(Range{'0', '9'})
	notNotDigits := Not(Not(digits))
	assert.Same(t, digits, notNotDigits.Optimize())
}

func TestSparseSet(t *testing.T) {
	m := SparseSet('+', '-', '*', '/')
	assert.True(t, m.Match('*'))
	assert.False(t, m.Match('%'))
	assert.Equal(t, []byte{'*', '+', '-', '/'}, collect(m))
}

func TestToDense_RoundTripsMembership(t *testing.T) {
	cases := []Matcher{
		All(),
		None(),
		Exactly('z'),
		Ranges(Range{'0', '9'}),
		Or(Ranges(Range{'a', 'z'}), Exactly('_')),
		SparseSet(' ', '\t', '\n'),
	}
	for _, m := range cases {
		dense := ToDense(m)
		for b := 0; b < 256; b++ {
			assert.Equal(t, m.Match(byte(b)), dense.Match(byte(b)), "matcher %s byte %#02x", m, b)
		}
	}
}

func TestDense_OptimizeCollapsesTrivialSets(t *testing.T) {
	assert.Equal(t, None(), ToDense(None()).Optimize())
	assert.Equal(t, All(), ToDense(All()).Optimize())
	assert.Equal(t, Exactly('x'), ToDense(Exactly('x')).Optimize())
}
