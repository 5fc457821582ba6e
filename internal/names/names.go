// Package names implements the scope/scoped identifier grammar of spec §4.1:
// ScopeName (a module path joined by '.' and a function path joined by
// '::') and ScopedName (a ScopeName plus a simple local identifier).
//
// Grounded on the original NunaInc/nudl analyzer's names.h/.cc: Parse,
// Prefix/Suffix, Submodule/Subfunction/Subname, Subscope and IsPrefixScope
// reproduce that implementation's semantics, including its precondition
// recovery behavior (Subscope returns self unchanged rather than erroring).
package names

import (
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidName reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func IsValidName(name string) bool {
	return identRE.MatchString(name)
}

// ValidatedName returns name if it is valid, else an InvalidArgument error.
func ValidatedName(name string) (string, error) {
	if !IsValidName(name) {
		return "", nudlerr.New(nudlerr.InvalidArgument, "invalid identifier name: `%s`", name)
	}
	return name, nil
}

// IsValidModuleName reports whether name is empty or a '.'-joined sequence
// of valid names.
func IsValidModuleName(name string) bool {
	if name == "" {
		return true
	}
	for _, part := range strings.Split(name, ".") {
		if !IsValidName(part) {
			return false
		}
	}
	return true
}

// ScopeName is an ordered pair: a module path and a function path. It is
// immutable; all "Sub*" operations return a new value. The empty ScopeName
// denotes the built-in scope.
type ScopeName struct {
	name          string
	moduleNames   []string
	functionNames []string
	hash          uint64
}

// Empty is the built-in-scope ScopeName.
var Empty = ScopeName{hash: hashString("")}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func recompose(moduleNames, functionNames []string) string {
	s := strings.Join(moduleNames, ".")
	if len(functionNames) > 0 {
		if s != "" {
			s += "::" + strings.Join(functionNames, "::")
		} else {
			s = "::" + strings.Join(functionNames, "::")
		}
	}
	return s
}

func newScopeName(moduleNames, functionNames []string) ScopeName {
	name := recompose(moduleNames, functionNames)
	return ScopeName{name: name, moduleNames: moduleNames, functionNames: functionNames, hash: hashString(name)}
}

// ParseScopeName parses "<module>[.<module>]*[::<function>[::<function>]*]".
func ParseScopeName(name string) (ScopeName, error) {
	if name == "" {
		return Empty, nil
	}
	modulePart, functionPart, hasFunction := strings.Cut(name, "::")

	var moduleNames []string
	if modulePart != "" {
		for _, part := range strings.Split(modulePart, ".") {
			v, err := ValidatedName(part)
			if err != nil {
				return ScopeName{}, nudlerr.Wrap(nudlerr.InvalidArgument, err,
					"invalid module name `%s` in scope name `%s`", part, name)
			}
			moduleNames = append(moduleNames, v)
		}
	}
	var functionNames []string
	if hasFunction {
		for _, part := range strings.Split(functionPart, "::") {
			v, err := ValidatedName(part)
			if err != nil {
				return ScopeName{}, nudlerr.Wrap(nudlerr.InvalidArgument, err,
					"invalid function name `%s` in scope name `%s`", part, name)
			}
			functionNames = append(functionNames, v)
		}
	}
	return newScopeName(moduleNames, functionNames), nil
}

// ModuleNames returns the module path segments.
func (s ScopeName) ModuleNames() []string { return s.moduleNames }

// FunctionNames returns the function path segments.
func (s ScopeName) FunctionNames() []string { return s.functionNames }

// Name returns the fully composed scope name string.
func (s ScopeName) Name() string { return s.name }

// ModuleName returns the module path joined by '.'.
func (s ScopeName) ModuleName() string { return strings.Join(s.moduleNames, ".") }

// FunctionName returns the function path joined by '::'.
func (s ScopeName) FunctionName() string { return strings.Join(s.functionNames, "::") }

// Empty reports whether this is the built-in scope.
func (s ScopeName) Empty() bool { return len(s.moduleNames) == 0 && len(s.functionNames) == 0 }

// Size is the total number of segments (module + function).
func (s ScopeName) Size() int { return len(s.moduleNames) + len(s.functionNames) }

// Hash returns the precomputed hash of the composed name.
func (s ScopeName) Hash() uint64 { return s.hash }

// PrefixName recomposes the name of the first position segments (module
// segments first, then function segments).
func (s ScopeName) PrefixName(position int) string {
	if position >= s.Size() {
		return s.name
	}
	if position <= len(s.moduleNames) {
		return recompose(s.moduleNames[:position], nil)
	}
	position -= len(s.moduleNames)
	return recompose(s.moduleNames, s.functionNames[:position])
}

// PrefixScopeName returns the ScopeName of the first position segments.
func (s ScopeName) PrefixScopeName(position int) ScopeName {
	if position >= s.Size() {
		return s
	}
	if position <= len(s.moduleNames) {
		return newScopeName(append([]string(nil), s.moduleNames[:position]...), nil)
	}
	position -= len(s.moduleNames)
	return newScopeName(append([]string(nil), s.moduleNames...), append([]string(nil), s.functionNames[:position]...))
}

// SuffixName recomposes the name from position (included) to the end.
func (s ScopeName) SuffixName(position int) string {
	if position >= s.Size() {
		return ""
	}
	if position < len(s.moduleNames) {
		return recompose(s.moduleNames[position:], s.functionNames)
	}
	position -= len(s.moduleNames)
	return recompose(nil, s.functionNames[position:])
}

// SuffixScopeName returns the ScopeName from position (included) to the end.
func (s ScopeName) SuffixScopeName(position int) ScopeName {
	if position >= s.Size() {
		return Empty
	}
	if position < len(s.moduleNames) {
		return newScopeName(append([]string(nil), s.moduleNames[position:]...), append([]string(nil), s.functionNames...))
	}
	position -= len(s.moduleNames)
	return newScopeName(nil, append([]string(nil), s.functionNames[position:]...))
}

// IsPrefixScope reports whether s is a prefix scope of other: other's name
// begins with s's name followed by end-of-string, '.', or '::'.
func (s ScopeName) IsPrefixScope(other ScopeName) bool {
	if s.Empty() {
		return true
	}
	if !strings.HasPrefix(other.name, s.name) {
		return false
	}
	suffix := other.name[len(s.name):]
	return suffix == "" || strings.HasPrefix(suffix, ".") || strings.HasPrefix(suffix, "::")
}

// Submodule appends name to the module path.
func (s ScopeName) Submodule(name string) (ScopeName, error) {
	if !IsValidName(name) {
		return ScopeName{}, nudlerr.New(nudlerr.InvalidArgument,
			"invalid submodule name `%s` to append to `%s`", name, s.name)
	}
	moduleNames := append(append([]string(nil), s.moduleNames...), name)
	return newScopeName(moduleNames, s.functionNames), nil
}

// Subfunction appends name to the function path.
func (s ScopeName) Subfunction(name string) (ScopeName, error) {
	name = strings.TrimPrefix(name, "::")
	if !IsValidName(name) {
		return ScopeName{}, nudlerr.New(nudlerr.InvalidArgument,
			"invalid subfunction name `%s` to append to `%s`", name, s.name)
	}
	functionNames := append(append([]string(nil), s.functionNames...), name)
	return newScopeName(s.moduleNames, functionNames), nil
}

// Subname appends name to the function path if any function segment is
// already present, otherwise to the module path.
func (s ScopeName) Subname(name string) (ScopeName, error) {
	if !IsValidName(name) {
		return ScopeName{}, nudlerr.New(nudlerr.InvalidArgument,
			"invalid name `%s` to append to `%s`", name, s.name)
	}
	if len(s.functionNames) == 0 {
		moduleNames := append(append([]string(nil), s.moduleNames...), name)
		return newScopeName(moduleNames, nil), nil
	}
	functionNames := append(append([]string(nil), s.functionNames...), name)
	return newScopeName(s.moduleNames, functionNames), nil
}

// Subscope concatenates other onto s, provided other is structurally
// appendable (s has no function segments yet, or other is function-only).
// Per the documented precondition-violation recovery, an inappendable other
// leaves s unchanged.
func (s ScopeName) Subscope(other ScopeName) ScopeName {
	if other.Empty() {
		return s
	}
	if len(s.functionNames) > 0 && (len(other.moduleNames) > 0 || len(other.functionNames) == 0) {
		return s
	}
	moduleNames := append(append([]string(nil), s.moduleNames...), other.moduleNames...)
	functionNames := append(append([]string(nil), s.functionNames...), other.functionNames...)
	return newScopeName(moduleNames, functionNames)
}

// ScopedName is a shared ScopeName plus a simple local identifier, used for
// every name occurrence in the program.
type ScopedName struct {
	Scope ScopeName
	Name  string
}

// ParseScopedName parses a dotted name, splitting at the last '.': the
// remainder after it is the simple name, the rest (if any) is the scope.
func ParseScopedName(name string) (ScopedName, error) {
	pos := strings.LastIndexByte(name, '.')
	namePart := name
	scope := Empty
	if pos >= 0 {
		namePart = name[pos+1:]
		var err error
		scope, err = ParseScopeName(name[:pos])
		if err != nil {
			return ScopedName{}, nudlerr.Wrap(nudlerr.InvalidArgument, err,
				"bad scope part in scoped name `%s`", name)
		}
	}
	if !IsValidName(namePart) {
		return ScopedName{}, nudlerr.New(nudlerr.InvalidArgument,
			"invalid name for scoped name: `%s`", namePart)
	}
	return ScopedName{Scope: scope, Name: namePart}, nil
}

// FullName composes the scope and the simple name with '.'.
func (s ScopedName) FullName() string {
	if s.Scope.Empty() {
		return s.Name
	}
	if s.Name == "" {
		return s.Scope.Name()
	}
	return s.Scope.Name() + "." + s.Name
}
