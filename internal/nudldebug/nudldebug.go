// Package nudldebug implements the NUDL_TRACE=1 diagnostic mode of
// SPEC_FULL.md §A.2: a reflection-based pretty-printer for TypeSpec and
// Expression trees, used both by tests wanting a readable failure dump and
// by the analyzer's own trace output.
//
// Grounded on the teacher's internal/core/adt/debug.go (a value tree
// rendered as indented text for test failures and -trace output), adapted
// from its bespoke recursive writer to github.com/kr/pretty's reflection
// walk, the same library cuelang.org/go itself reaches for in exactly this
// situation (internal/protobuf/protobuf_test.go, encoding/protobuf, and
// internal/encoding/yaml's encode_test.go all diff expected-vs-actual via
// pretty.Diff rather than hand-rolling a differ).
package nudldebug

import (
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"
)

// Trace reports whether NUDL_TRACE=1 diagnostic mode is enabled, checked
// once at package init the way the teacher's cuedebug.Flags is populated
// once at process start rather than re-read per call.
var Trace = os.Getenv("NUDL_TRACE") == "1"

// Dump renders v as an indented, reflective struct dump to w, per
// SPEC_FULL.md's `Dump(w io.Writer, v any)`.
func Dump(w io.Writer, v any) {
	fmt.Fprintf(w, "%# v\n", pretty.Formatter(v))
}

// Diff returns a line-by-line structural diff of want vs. got, for test
// failures and the `NUDL_TRACE=1` comparison path, grounded directly on
// the teacher test suite's own pretty.Diff(expected, actual) idiom.
func Diff(want, got any) []string {
	return pretty.Diff(want, got)
}

// Tracef writes a trace line to os.Stderr when Trace is enabled, a no-op
// otherwise.
func Tracef(format string, args ...any) {
	if !Trace {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
