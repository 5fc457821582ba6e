// Package emit implements spec §4.9's Python-target emitter: a depth-first
// walk over an analyzed expression tree that renders Python 3 source,
// tracking indentation, a running import set, and the dedup sets needed so
// a function/struct/function-group is only ever emitted once.
//
// Grounded on the original NunaInc/nudl analyzer's
// conversion/converter.h (ConvertState/Converter's virtual dispatch table)
// and conversion/python_converter.{h,cc} (PythonConvertState and every
// Convert* method); the virtual-dispatch class hierarchy is translated into
// a plain State struct plus a Kind-keyed switch; unlike nameobj/expr it
// needs no Init(self) self-capture, since the emitter has no subclasses
// to dispatch to.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NunaInc/nudl-go/internal/config"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/types"
)

// State carries the mutable output buffer and dedup bookkeeping a module
// conversion accumulates across its whole walk, per spec §4.9's "state
// carrying: a stream buffer, indentation depth... a set of seen
// functions/function-groups/structs... a set of required imports... and a
// stack of currently-being-called functions".
//
// Grounded on python_converter.cc's PythonConvertState: out()/add_import(),
// the three Register*/IsRegistered* dedup sets, and the indent tracking
// threaded through every Convert* call.
type State struct {
	cfg *config.Config

	moduleName string
	out        strings.Builder
	indent     int

	imports      map[string]struct{}
	seenFuncs    map[*funcs.Function]struct{}
	seenGroups   map[*funcs.FunctionGroup]struct{}
	seenStructs  map[*types.TypeSpec]struct{}
	callingStack []*funcs.Function

	// schemaDefs records every top-level `schema` declaration seen this
	// module, in declaration order, so ConvertModule can render them into
	// the optional OpenAPI side-output file.
	schemaDefs []*types.TypeSpec
}

// NewState begins a conversion of moduleName under cfg.
func NewState(moduleName string, cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	return &State{
		cfg:         cfg,
		moduleName:  moduleName,
		imports:     map[string]struct{}{},
		seenFuncs:   map[*funcs.Function]struct{}{},
		seenGroups:  map[*funcs.FunctionGroup]struct{}{},
		seenStructs: map[*types.TypeSpec]struct{}{},
	}
}

// indentString is the current line prefix: four spaces per level, matching
// the teacher-adjacent Python stack's own formatting convention.
func (s *State) indentString() string { return strings.Repeat("    ", s.indent) }

// WriteLine appends a fully-indented, newline-terminated line.
func (s *State) WriteLine(format string, args ...interface{}) {
	s.out.WriteString(s.indentString())
	fmt.Fprintf(&s.out, format, args...)
	s.out.WriteByte('\n')
}

// Write appends text with no indentation or trailing newline, for
// composing a single logical line out of several sub-expressions.
func (s *State) Write(text string) { s.out.WriteString(text) }

func (s *State) indentIn()  { s.indent++ }
func (s *State) indentOut() { s.indent-- }

// AddImport records a required top-level import statement (e.g.
// "import datetime" or "import decimal"), deduplicated and sorted at
// render time, per python_converter.cc's add_import.
func (s *State) AddImport(line string) {
	if line == "" {
		return
	}
	s.imports[line] = struct{}{}
}

func (s *State) importPackage(pkg string) {
	if pkg == "" {
		return
	}
	s.AddImport("import " + pkg)
}

// importPackages records every package in pkgs, skipping empty entries.
func (s *State) importPackages(pkgs []string) {
	for _, pkg := range pkgs {
		s.importPackage(pkg)
	}
}

// SortedImports returns every recorded import line, sorted.
func (s *State) SortedImports() []string {
	out := make([]string, 0, len(s.imports))
	for imp := range s.imports {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

func (s *State) isFuncSeen(fn *funcs.Function) bool {
	_, ok := s.seenFuncs[fn]
	return ok
}
func (s *State) markFuncSeen(fn *funcs.Function) { s.seenFuncs[fn] = struct{}{} }

func (s *State) isGroupSeen(g *funcs.FunctionGroup) bool {
	_, ok := s.seenGroups[g]
	return ok
}
func (s *State) markGroupSeen(g *funcs.FunctionGroup) { s.seenGroups[g] = struct{}{} }

func (s *State) isStructSeen(t *types.TypeSpec) bool {
	_, ok := s.seenStructs[t]
	return ok
}
func (s *State) markStructSeen(t *types.TypeSpec) { s.seenStructs[t] = struct{}{} }

// recordSchemaDef appends t to the module's OpenAPI side-output set.
func (s *State) recordSchemaDef(t *types.TypeSpec) { s.schemaDefs = append(s.schemaDefs, t) }

// SchemaDefs returns every top-level schema declaration recorded so far.
func (s *State) SchemaDefs() []*types.TypeSpec { return s.schemaDefs }

// pushCall/popCall track the stack of functions currently being emitted,
// per spec §4.9's "a stack of currently-being-called functions". Nothing
// in the emitter calls them: recursive emission is stopped by the
// emitted-function set that ensureFunctionEmitted marks before converting.
func (s *State) pushCall(fn *funcs.Function) { s.callingStack = append(s.callingStack, fn) }
func (s *State) popCall()                    { s.callingStack = s.callingStack[:len(s.callingStack)-1] }

func (s *State) isCalling(fn *funcs.Function) bool {
	for _, f := range s.callingStack {
		if f == fn {
			return true
		}
	}
	return false
}

// Source renders the accumulated module: sorted imports, a blank line,
// then the body collected in out, per python_converter.cc's FinishModule
// assembling imports ahead of the converted body.
func (s *State) Source() string {
	var b strings.Builder
	for _, imp := range s.SortedImports() {
		b.WriteString(imp)
		b.WriteByte('\n')
	}
	if len(s.imports) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(s.out.String())
	return b.String()
}

// objectPythonName renders obj's own simple name through pythonSafeName,
// honoring skip_conversion and the Field/builtin carve-out.
func objectPythonName(obj nameobj.NamedObject) string {
	if obj == nil {
		return ""
	}
	return pythonSafeName(obj.Name(), obj)
}
