package report

import (
	"bytes"
	"testing"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

func TestPrintWavefrontsIsNonReentrant(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf)

	// Simulate a report already in flight: a concurrent caller must return
	// immediately without touching anything, per spec.md's "print_wavefronts
	// is non-reentrant" invariant.
	f.locked = 1

	if err := f.PrintWavefronts(dbgapi.ProcessID{Handle: 1}, false); err != nil {
		t.Fatalf("PrintWavefronts while locked returned error %v, want nil (drop silently)", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output while the formatter is locked, got %q", buf.String())
	}
}

func TestStopReasonStringJoinsSetBits(t *testing.T) {
	reason := dbgapi.StopReasonBreakpoint | dbgapi.StopReasonMemoryViolation
	got := stopReasonString(reason)
	want := "BREAKPOINT|MEMORY_VIOLATION"
	if got != want {
		t.Fatalf("stopReasonString = %q, want %q", got, want)
	}
}

func TestStopReasonStringNone(t *testing.T) {
	if got := stopReasonString(dbgapi.StopReasonNone); got != "NONE" {
		t.Fatalf("stopReasonString(NONE) = %q, want NONE", got)
	}
}
