package pegvm

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Program is a grammar that has been compiled to pegvm bytecode.
type Program struct {
	// Instructions is the bytecode to execute. Instruction addresses are
	// simply indices into this slice; running off the end behaves as
	// though an IGiveup instruction were found there (the virtual
	// sentinel the initial backtrack frame points to).
	Instructions []Instruction

	// Captures holds metadata about the pattern's user-visible captures,
	// indexed the same way IOpenCapture/ICloseCapture/IFullCapture's Key
	// operand indexes them.
	Captures []CaptureInfo

	// RunTimeFuncs holds the match-time functions that ICloseRunTime's
	// Key operand indexes into.
	RunTimeFuncs []RunTimeFunc

	// Labels is auxiliary debugging information: human-readable names
	// for instruction addresses, used by Disassemble.
	Labels       []*Label
	LabelsByName map[string]*Label
}

// FindLabel returns the best available label for the given instruction
// address, synthesizing an anonymous one if none was recorded.
func (p *Program) FindLabel(addr int) *Label {
	i := sort.Search(len(p.Labels), func(i int) bool {
		return p.Labels[i].Offset >= addr
	})
	if i < len(p.Labels) && p.Labels[i].Offset == addr {
		return p.Labels[i]
	}
	return &Label{Offset: addr, Name: fmt.Sprintf(".anon@%d", addr)}
}

// Disassemble writes a human-readable listing of the program's bytecode.
func (p *Program) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	fmt.Fprintf(&buf, "%%captures %d\n", len(p.Captures))
	if err := flush(); err != nil {
		return total, err
	}
	for i, c := range p.Captures {
		if c.Name != "" {
			fmt.Fprintf(&buf, "%%namedcapture %d %q\n", i, c.Name)
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	fmt.Fprintf(&buf, "%%runtimefuncs %d\n\n", len(p.RunTimeFuncs))
	if err := flush(); err != nil {
		return total, err
	}

	labelAt := make(map[int]*Label, len(p.Labels))
	for _, l := range p.Labels {
		labelAt[l.Offset] = l
	}

	for addr, ins := range p.Instructions {
		if l, ok := labelAt[addr]; ok {
			buf.WriteString(l.Name)
			buf.WriteString(":\n")
			if err := flush(); err != nil {
				return total, err
			}
		}
		buf.WriteByte('\t')
		buf.WriteString(ins.String())
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) String() string {
	var buf bytes.Buffer
	p.Disassemble(&buf)
	return buf.String()
}
