package pegvm

import (
	"sort"

	"github.com/tachyonlabs/lpegvm/charset"
)

// Assembler builds a Program out of a straight-line sequence of
// instructions and labels. Because every Instruction occupies exactly one
// fixed-width slot, resolving a jump is just "target index minus next
// index" — none of the iterative length-fixpointing a variable-length
// encoding would need.
type Assembler struct {
	instructions []Instruction
	pendingLabel []string // labels attached to the *next* emitted instruction

	labelAddr map[string]int
	fixups    []fixup

	captures     []CaptureInfo
	runTimeFuncs []RunTimeFunc
}

type fixup struct {
	addr  int    // instruction index needing its Offset patched
	label string // target label name
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		labelAddr: make(map[string]int),
	}
}

// DeclareCapture reserves the next capture index and associates it with a
// name (which may be empty) for disassembly and lookup purposes. It
// returns the assigned index.
func (a *Assembler) DeclareCapture(name string, kind CaptureKind) int {
	idx := len(a.captures)
	a.captures = append(a.captures, CaptureInfo{Name: name, Kind: kind})
	return idx
}

// DeclareRunTimeFunc registers a host function for use by ICloseRunTime and
// returns its index.
func (a *Assembler) DeclareRunTimeFunc(fn RunTimeFunc) int {
	idx := len(a.runTimeFuncs)
	a.runTimeFuncs = append(a.runTimeFuncs, fn)
	return idx
}

// Label attaches name to the address of the next instruction emitted.
func (a *Assembler) Label(name string) {
	_, dup := a.labelAddr[name]
	assert(!dup, "label %q defined twice", name)
	a.pendingLabel = append(a.pendingLabel, name)
}

func (a *Assembler) emit(ins Instruction) int {
	addr := len(a.instructions)
	for _, name := range a.pendingLabel {
		a.labelAddr[name] = addr
	}
	a.pendingLabel = a.pendingLabel[:0]
	a.instructions = append(a.instructions, ins)
	return addr
}

// emitJump appends an instruction whose Offset will be patched to reach
// target once Finish resolves every label.
func (a *Assembler) emitJump(ins Instruction, target string) int {
	addr := a.emit(ins)
	a.fixups = append(a.fixups, fixup{addr: addr, label: target})
	return addr
}

func (a *Assembler) Any() int      { return a.emit(Instruction{Code: IAny}) }
func (a *Assembler) Char(b byte) int { return a.emit(Instruction{Code: IChar, Aux: b}) }
func (a *Assembler) Set(m *charset.Dense) int {
	return a.emit(Instruction{Code: ISet, Set: m})
}
func (a *Assembler) Span(m *charset.Dense) int {
	return a.emit(Instruction{Code: ISpan, Set: m})
}
func (a *Assembler) UTFRange(lo, hi rune) int {
	return a.emit(Instruction{Code: IUTFR, Offset: int32(lo), Key: uint16(int32(hi) >> 8), Aux: uint8(int32(hi))})
}
func (a *Assembler) Behind(n uint8) int { return a.emit(Instruction{Code: IBehind, Aux: n}) }
func (a *Assembler) Ret() int           { return a.emit(Instruction{Code: IRet}) }
func (a *Assembler) End() int           { return a.emit(Instruction{Code: IEnd}) }
func (a *Assembler) Commit(target string) int {
	return a.emitJump(Instruction{Code: ICommit}, target)
}
func (a *Assembler) PartialCommit(target string) int {
	return a.emitJump(Instruction{Code: IPartialCommit}, target)
}
func (a *Assembler) BackCommit(target string) int {
	return a.emitJump(Instruction{Code: IBackCommit}, target)
}
func (a *Assembler) Choice(target string) int {
	return a.emitJump(Instruction{Code: IChoice}, target)
}
func (a *Assembler) Jmp(target string) int {
	return a.emitJump(Instruction{Code: IJmp}, target)
}
func (a *Assembler) Call(target string, k uint8) int {
	return a.emitJump(Instruction{Code: ICall, Aux: k}, target)
}
func (a *Assembler) TestAny(target string) int {
	return a.emitJump(Instruction{Code: ITestAny}, target)
}
func (a *Assembler) TestChar(b byte, target string) int {
	return a.emitJump(Instruction{Code: ITestChar, Aux: b}, target)
}
func (a *Assembler) TestSet(m *charset.Dense, target string) int {
	return a.emitJump(Instruction{Code: ITestSet, Set: m}, target)
}
func (a *Assembler) FailTwice() int { return a.emit(Instruction{Code: IFailTwice}) }
func (a *Assembler) Fail() int      { return a.emit(Instruction{Code: IFail}) }
func (a *Assembler) Giveup() int    { return a.emit(Instruction{Code: IGiveup}) }
func (a *Assembler) Empty() int     { return a.emit(Instruction{Code: IEmpty}) }

func (a *Assembler) OpenCapture(idx int, kind CaptureKind) int {
	return a.emit(Instruction{Code: IOpenCapture, Key: uint16(idx), Aux: uint8(kind)})
}
func (a *Assembler) CloseCapture(idx int, kind CaptureKind) int {
	return a.emit(Instruction{Code: ICloseCapture, Key: uint16(idx), Aux: uint8(kind)})
}
func (a *Assembler) FullCapture(idx int, kind CaptureKind, span int32) int {
	return a.emit(Instruction{Code: IFullCapture, Key: uint16(idx), Aux: uint8(kind), Offset: span})
}
func (a *Assembler) CloseRunTime(fnIdx int) int {
	return a.emit(Instruction{Code: ICloseRunTime, Key: uint16(fnIdx)})
}

// Finish resolves every label reference and returns the assembled Program.
// It panics if any referenced label was never defined — a programming
// error in the caller building the bytecode, not a runtime condition.
func (a *Assembler) Finish() *Program {
	for _, fx := range a.fixups {
		target, ok := a.labelAddr[fx.label]
		assert(ok, "undefined label %q", fx.label)
		a.instructions[fx.addr].Offset = int32(target - (fx.addr + 1))
	}

	p := &Program{
		Instructions: a.instructions,
		Captures:     a.captures,
		RunTimeFuncs: a.runTimeFuncs,
		LabelsByName: make(map[string]*Label),
	}
	for name, addr := range a.labelAddr {
		l := &Label{Offset: addr, Name: name, Public: len(name) == 0 || name[0] != '.'}
		p.Labels = append(p.Labels, l)
		p.LabelsByName[name] = l
	}
	sort.Sort(Labels(p.Labels))
	return p
}
