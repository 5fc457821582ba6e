package types

import (
	"fmt"
	"strings"

	txtpbfmt "github.com/protocolbuffers/txtpbfmt/parser"
)

// DebugProto renders a textproto-shaped dump of t for config.ShortProto and
// the NUDL_TRACE=1 diagnostic path (internal/nudldebug). short==true
// (nudl_short_analysis_proto) renders just a compact type_ref line; false
// renders the full structural dump: type-id, name, ancestor, parameters.
// Either rendering is then run through txtpbfmt.FormatWithConfig, the
// canonical normalizer the teacher reaches for wherever it needs a
// consistently-indented textproto, rather than hand-rolling indentation
// rules here.
func (t *TypeSpec) DebugProto(short bool) (string, error) {
	var raw string
	if short {
		raw = fmt.Sprintf("type_ref: %q\n", t.FullName())
	} else {
		var b strings.Builder
		t.writeDebugProto(&b, 0, map[*TypeSpec]bool{})
		raw = b.String()
	}
	formatted, err := txtpbfmt.FormatWithConfig([]byte(raw), txtpbfmt.Config{})
	if err != nil {
		return "", fmt.Errorf("formatting debug proto for %s: %w", t.FullName(), err)
	}
	return string(formatted), nil
}

// writeDebugProto walks t's parameter tree. seen guards against the
// recursive types this lattice allows (a self-referential struct reached
// again through a Nullable/Array indirection): a type already on the
// current path is rendered as a bare reference rather than re-expanded.
func (t *TypeSpec) writeDebugProto(b *strings.Builder, indent int, seen map[*TypeSpec]bool) {
	pad := strings.Repeat("  ", indent)
	if seen[t] {
		fmt.Fprintf(b, "%stype_ref: %q\n", pad, t.FullName())
		return
	}
	seen[t] = true
	defer delete(seen, t)

	fmt.Fprintf(b, "%stype_id: %d\n", pad, t.TypeID)
	fmt.Fprintf(b, "%sname: %q\n", pad, t.Name())
	if t.Ancestor != nil {
		fmt.Fprintf(b, "%sancestor: %q\n", pad, t.Ancestor.FullName())
	}
	for i, p := range t.Parameters {
		fmt.Fprintf(b, "%sparameters {\n", pad)
		if i < len(t.ParameterNames) && t.ParameterNames[i] != "" {
			fmt.Fprintf(b, "%s  name: %q\n", pad, t.ParameterNames[i])
		}
		p.writeDebugProto(b, indent+1, seen)
		fmt.Fprintf(b, "%s}\n", pad)
	}
}
