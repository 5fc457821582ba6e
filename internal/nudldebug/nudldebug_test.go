package nudldebug_test

import (
	"bytes"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/nudldebug"
)

type point struct{ X, Y int }

func TestDumpRendersFieldValues(t *testing.T) {
	var buf bytes.Buffer
	nudldebug.Dump(&buf, point{X: 1, Y: 2})
	qt.Assert(t, qt.StringContains(buf.String(), "X:1"))
	qt.Assert(t, qt.StringContains(buf.String(), "Y:2"))
}

func TestDiffReportsFieldMismatch(t *testing.T) {
	diff := nudldebug.Diff(point{X: 1, Y: 2}, point{X: 1, Y: 3})
	qt.Assert(t, qt.Not(qt.HasLen(diff, 0)))
}

func TestDiffEmptyWhenEqual(t *testing.T) {
	diff := nudldebug.Diff(point{X: 1, Y: 2}, point{X: 1, Y: 2})
	qt.Assert(t, qt.HasLen(diff, 0))
}
