package names_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/names"
)

func TestIsValidName(t *testing.T) {
	for _, ok := range []string{"a", "_", "aXc1_z", "AB_cde0_12"} {
		qt.Assert(t, qt.IsTrue(names.IsValidName(ok)), qt.Commentf("name %q", ok))
	}
	for _, bad := range []string{"", "A$", "0", "$", "AbC#x", "AbC&x"} {
		qt.Assert(t, qt.IsFalse(names.IsValidName(bad)), qt.Commentf("name %q", bad))
	}
}

func TestIsValidModuleName(t *testing.T) {
	for _, ok := range []string{"a", "a.b", "a._.b", ""} {
		qt.Assert(t, qt.IsTrue(names.IsValidModuleName(ok)), qt.Commentf("module %q", ok))
	}
	for _, bad := range []string{"a.a$.b", "a..b", "a.b.", ".a.b"} {
		qt.Assert(t, qt.IsFalse(names.IsValidModuleName(bad)), qt.Commentf("module %q", bad))
	}
}

func TestParseScopeNameFull(t *testing.T) {
	name, err := names.ParseScopeName("foo.bar::baz::qux")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name.Size(), 4))
	qt.Assert(t, qt.IsFalse(name.Empty()))
	qt.Assert(t, qt.Equals(name.Name(), "foo.bar::baz::qux"))
	qt.Assert(t, qt.Equals(name.ModuleName(), "foo.bar"))
	qt.Assert(t, qt.Equals(name.FunctionName(), "baz::qux"))

	qt.Assert(t, qt.Equals(name.PrefixName(0), ""))
	qt.Assert(t, qt.Equals(name.PrefixName(1), "foo"))
	qt.Assert(t, qt.Equals(name.PrefixName(2), "foo.bar"))
	qt.Assert(t, qt.Equals(name.PrefixName(3), "foo.bar::baz"))
	qt.Assert(t, qt.Equals(name.PrefixName(4), "foo.bar::baz::qux"))
	qt.Assert(t, qt.Equals(name.PrefixName(5), "foo.bar::baz::qux"))

	qt.Assert(t, qt.Equals(name.SuffixName(0), "foo.bar::baz::qux"))
	qt.Assert(t, qt.Equals(name.SuffixName(2), "::baz::qux"))
	qt.Assert(t, qt.Equals(name.SuffixName(4), ""))
}

func TestParseScopeNameEmpty(t *testing.T) {
	name, err := names.ParseScopeName("")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(name.Empty()))
	qt.Assert(t, qt.Equals(name.Size(), 0))
}

func TestParseScopeNameInvalid(t *testing.T) {
	_, err := names.ParseScopeName("foo.a$.bar")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestIsPrefixScope(t *testing.T) {
	foo, err := names.ParseScopeName("foo")
	qt.Assert(t, qt.IsNil(err))
	foobar, err := names.ParseScopeName("foo.bar")
	qt.Assert(t, qt.IsNil(err))
	foox, err := names.ParseScopeName("foox")
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsTrue(foo.IsPrefixScope(foobar)))
	qt.Assert(t, qt.IsFalse(foo.IsPrefixScope(foox)))
	qt.Assert(t, qt.IsTrue(names.Empty.IsPrefixScope(foobar)))
	qt.Assert(t, qt.IsTrue(foobar.IsPrefixScope(foobar)))
}

func TestSubmoduleSubfunctionSubname(t *testing.T) {
	base, err := names.ParseScopeName("foo")
	qt.Assert(t, qt.IsNil(err))

	mod, err := base.Submodule("bar")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(mod.Name(), "foo.bar"))

	fn, err := mod.Subfunction("baz")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn.Name(), "foo.bar::baz"))

	// Subname goes to function path once any function segment exists.
	fn2, err := fn.Subname("qux")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn2.Name(), "foo.bar::baz::qux"))

	// Subname on a module-only scope extends the module path.
	mod2, err := base.Subname("bar")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(mod2.Name(), "foo.bar"))

	_, err = base.Submodule("a$b")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestSubscope(t *testing.T) {
	foobar, err := names.ParseScopeName("foo.bar")
	qt.Assert(t, qt.IsNil(err))
	bazqux, err := names.ParseScopeName("::baz::qux")
	qt.Assert(t, qt.IsNil(err))

	combined := foobar.Subscope(bazqux)
	qt.Assert(t, qt.Equals(combined.Name(), "foo.bar::baz::qux"))

	// A function-scoped name cannot absorb another module path: the
	// documented precondition-violation recovery returns self unchanged.
	fnScoped, err := names.ParseScopeName("foo::bar")
	qt.Assert(t, qt.IsNil(err))
	other, err := names.ParseScopeName("baz.qux")
	qt.Assert(t, qt.IsNil(err))
	unchanged := fnScoped.Subscope(other)
	qt.Assert(t, qt.Equals(unchanged.Name(), fnScoped.Name()))
}

func TestParseRenderRoundTrip(t *testing.T) {
	for _, s := range []string{"", "foo", "foo.bar", "foo.bar::baz", "foo.bar::baz::qux", "::baz"} {
		scope, err := names.ParseScopeName(s)
		qt.Assert(t, qt.IsNil(err))
		reparsed, err := names.ParseScopeName(scope.Name())
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(reparsed.Name(), scope.Name()), qt.Commentf("round trip for %q", s))
	}
}

func TestParseScopedName(t *testing.T) {
	sn, err := names.ParseScopedName("foo.bar::baz.qux")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(sn.Name, "qux"))
	qt.Assert(t, qt.Equals(sn.Scope.Name(), "foo.bar::baz"))
	qt.Assert(t, qt.Equals(sn.FullName(), "foo.bar::baz.qux"))

	plain, err := names.ParseScopedName("qux")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(plain.Scope.Empty()))
	qt.Assert(t, qt.Equals(plain.FullName(), "qux"))
}
