package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestErrorAtFormatsPosition(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.ErrorAt("identifier expected", 3, 7)
	out := buf.String()
	if !strings.Contains(out, "[  3:  7]") {
		t.Fatalf("output = %q, missing position prefix", out)
	}
	if !strings.Contains(out, "identifier expected") {
		t.Fatalf("output = %q, missing message", out)
	}
}

func TestErrorsSoFarCountsErrorsNotWarnings(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.ErrorAt("e1", 1, 1)
	r.WarnAt("w1", 1, 1)
	r.ErrorAt("e2", 1, 1)
	if got := r.ErrorsSoFar(); got != 2 {
		t.Fatalf("ErrorsSoFar() = %d, want 2", got)
	}
}

func TestTooMany(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	for i := 0; i < MaxError-1; i++ {
		r.ErrorAt("e", 1, 1)
	}
	if r.TooMany() {
		t.Fatal("should not be too many yet")
	}
	r.ErrorAt("e", 1, 1)
	if !r.TooMany() {
		t.Fatal("should be too many now")
	}
}

func TestSummaryOnlyPrintsWhenThereAreErrors(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Summary()
	if buf.Len() != 0 {
		t.Fatalf("expected no summary line, got %q", buf.String())
	}
	r.ErrorAt("e", 1, 1)
	buf.Reset()
	r.Summary()
	if !strings.Contains(buf.String(), "1 errors") {
		t.Fatalf("summary = %q, want mention of count", buf.String())
	}
}
