package pegvm

import (
	"fmt"

	"github.com/tachyonlabs/lpegvm/charset"
)

// Instruction is one fixed-width bytecode slot. Rather than reusing
// adjacent words the way a C union or a variable-length encoding would,
// each operand gets its own named field; which fields are meaningful
// depends entirely on Code.
//
//   - Aux holds: the literal byte for IChar; the byte count for IBehind;
//     the call precedence k for ICall (0 means an ordinary, non-LR
//     call); the low 8 bits of a UTF-8 range's upper bound for IUTFR;
//     the CaptureKind for IOpenCapture/ICloseCapture/IFullCapture.
//   - Key holds: the capture index for IOpenCapture/ICloseCapture/
//     IFullCapture; the RunTimeFuncs index for ICloseRunTime; the high
//     8 bits of a UTF-8 range's upper bound for IUTFR (combined with
//     Aux as hi = Key<<8 | Aux).
//   - Offset holds: the jump displacement for IChoice, IJmp, ICall,
//     ICommit, IPartialCommit, IBackCommit, ITestAny, ITestChar,
//     ITestSet (relative to the instruction immediately following this
//     one); the lower bound of a UTF-8 range for IUTFR; the backward
//     span for IFullCapture.
//   - Set holds the character class for ISet, ITestSet, and ISpan.
type Instruction struct {
	Code   OpCode
	Aux    uint8
	Key    uint16
	Offset int32
	Set    *charset.Dense
}

func (ins Instruction) utfRange() (lo, hi rune) {
	return rune(ins.Offset), rune(int32(ins.Key)<<8 | int32(ins.Aux))
}

func (ins Instruction) captureKind() CaptureKind { return CaptureKind(ins.Aux) }
func (ins Instruction) captureIdx() int           { return int(ins.Key) }

func (ins Instruction) String() string {
	switch ins.Code {
	case IChar:
		return fmt.Sprintf("%s %s", ins.Code, quoteByte(ins.Aux))
	case ISet, ITestSet:
		s := "<nil>"
		if ins.Set != nil {
			s = ins.Set.String()
		}
		if ins.Code == ITestSet {
			return fmt.Sprintf("%s %s, %+d", ins.Code, s, ins.Offset)
		}
		return fmt.Sprintf("%s %s", ins.Code, s)
	case ITestAny, ITestChar:
		if ins.Code == ITestChar {
			return fmt.Sprintf("%s %s, %+d", ins.Code, quoteByte(ins.Aux), ins.Offset)
		}
		return fmt.Sprintf("%s %+d", ins.Code, ins.Offset)
	case ISpan:
		s := "<nil>"
		if ins.Set != nil {
			s = ins.Set.String()
		}
		return fmt.Sprintf("%s %s", ins.Code, s)
	case IUTFR:
		lo, hi := ins.utfRange()
		return fmt.Sprintf("%s [U+%04X, U+%04X]", ins.Code, lo, hi)
	case IBehind:
		return fmt.Sprintf("%s %d", ins.Code, ins.Aux)
	case IChoice, IJmp, ICommit, IPartialCommit, IBackCommit:
		return fmt.Sprintf("%s %+d", ins.Code, ins.Offset)
	case ICall:
		if ins.Aux == 0 {
			return fmt.Sprintf("%s %+d", ins.Code, ins.Offset)
		}
		return fmt.Sprintf("%s %+d, k=%d", ins.Code, ins.Offset, ins.Aux)
	case IOpenCapture, ICloseCapture:
		return fmt.Sprintf("%s %d, %s", ins.Code, ins.Key, ins.captureKind())
	case IFullCapture:
		return fmt.Sprintf("%s %d, %s, %d", ins.Code, ins.Key, ins.captureKind(), ins.Offset)
	case ICloseRunTime:
		return fmt.Sprintf("%s fn=%d", ins.Code, ins.Key)
	default:
		return ins.Code.String()
	}
}

func (k CaptureKind) String() string {
	names := [...]string{
		Cclose: "close", Cposition: "position", Cconst: "const",
		Cbackref: "backref", Cargument: "argument", Csimple: "simple",
		Ctable: "table", Cfunction: "function", Cquery: "query",
		Cstring: "string", Cnum: "num", Csubst: "subst", Cfold: "fold",
		Cruntime: "runtime", Cgroup: "group",
	}
	if int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return "unknown"
}

func quoteByte(b uint8) string {
	if b >= 0x20 && b < 0x7f && b != '\'' && b != '\\' {
		return fmt.Sprintf("'%c'", b)
	}
	return fmt.Sprintf("0x%02x", b)
}
