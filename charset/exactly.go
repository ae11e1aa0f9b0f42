package charset

// Exactly returns a Matcher that matches one specific byte, the form an
// IChar instruction's literal operand takes when built via this package.
//
// • Match performance: fast
//
// • ForEach performance: fast
//
// • Usefulness: situational
//
func Exactly(b byte) Matcher {
	return &mExact{Byte: b}
}

type mExact struct{ Byte byte }

var _ Matcher = (*mExact)(nil)

func (m *mExact) Match(b byte) bool {
	return b == m.Byte
}

func (m *mExact) ForEach(f func(b byte)) {
	f(m.Byte)
}

func (m *mExact) Optimize() Matcher {
	return m
}

func (m *mExact) String() string {
	return genericString(m)
}

func (m *mExact) asDense() *Dense {
	index, mask := denseIM(m.Byte)
	mm := &Dense{}
	mm.Set[index] = mask
	return mm
}
