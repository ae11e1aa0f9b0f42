package pegvm

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/renstrom/dedent"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var reNL = regexp.MustCompile(`(?m)^`)

// diff renders a readable diff of two disassembly strings for a test
// failure message, matching the teacher's own disassembly-comparison
// test style.
func diff(l, r string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(l, r, false)
	pretty := dmp.DiffPrettyText(diffs)
	return reNL.ReplaceAllLiteralString(pretty, "\t")
}

func TestProgramDisassemble(t *testing.T) {
	type testrow struct {
		Name     string
		Program  *Program
		Expected string
	}

	data := []testrow{
		{
			Name:    "one-or-more-a",
			Program: buildOneOrMoreA(),
			Expected: `
%captures 0
%runtimefuncs 0

	IChar 'a'
loop:
	IChoice +2
	IChar 'a'
	IPartialCommit -3
done:
	IEnd
`,
		},
		{
			Name:    "digit-run",
			Program: buildDigitRun(),
			Expected: `
%captures 0
%runtimefuncs 0

	ISet [\x30\x31\x32\x33\x34\x35\x36\x37\x38\x39]
	ISpan [\x30\x31\x32\x33\x34\x35\x36\x37\x38\x39]
	IEnd
`,
		},
	}

	for _, row := range data {
		var buf bytes.Buffer
		if _, err := row.Program.Disassemble(&buf); err != nil {
			t.Fatalf("%s: disassemble error: %v", row.Name, err)
		}
		actual := buf.String()
		expected := dedent.Dedent(row.Expected)[1:]
		if actual != expected {
			t.Errorf("%s: wrong disassembly:\n%s", row.Name, diff(expected, actual))
		}
	}
}
