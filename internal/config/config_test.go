package config_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/config"
)

func TestDefaultIsAllFalse(t *testing.T) {
	c := config.Default()
	qt.Assert(t, qt.IsFalse(c.ShortProto))
	qt.Assert(t, qt.IsFalse(c.NonNullDefaultForNullable))
	qt.Assert(t, qt.IsFalse(c.AcceptAbstractLambdas))
	qt.Assert(t, qt.IsFalse(c.BindingsOnUse))
}

func TestLoadOverridesNamedFieldsOnly(t *testing.T) {
	c, err := config.Load(strings.NewReader("short_proto: true\nbindings_on_use: true\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(c.ShortProto))
	qt.Assert(t, qt.IsTrue(c.BindingsOnUse))
	qt.Assert(t, qt.IsFalse(c.NonNullDefaultForNullable))
	qt.Assert(t, qt.IsFalse(c.AcceptAbstractLambdas))
}

func TestLoadEmptyDocumentIsDefault(t *testing.T) {
	c, err := config.Load(strings.NewReader(""))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(c, config.Default()))
}
