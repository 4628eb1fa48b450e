package worker

import (
	"os"
	"testing"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

func pipe(t *testing.T) (r, w *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { r.Close(); w.Close() })
	return r, w
}

func TestHandleCommandQuit(t *testing.T) {
	r, w := pipe(t)
	if _, err := w.Write([]byte{CommandQuit}); err != nil {
		t.Fatalf("write: %v", err)
	}

	wk := New(Config{}, nil)
	quit, err := wk.handleCommand(int(r.Fd()))
	if err != nil {
		t.Fatalf("handleCommand returned error: %v", err)
	}
	if !quit {
		t.Fatal("expected handleCommand to signal quit for CommandQuit")
	}
}

func TestHandleCommandUnknownByteIsIgnored(t *testing.T) {
	r, w := pipe(t)
	if _, err := w.Write([]byte{'x'}); err != nil {
		t.Fatalf("write: %v", err)
	}

	wk := New(Config{}, nil)
	quit, err := wk.handleCommand(int(r.Fd()))
	if err != nil {
		t.Fatalf("handleCommand returned error: %v", err)
	}
	if quit {
		t.Fatal("expected an unrecognized command byte not to signal quit")
	}
}

func TestHandleCommandBreakpointHitWithoutRegisteredBreakpointErrors(t *testing.T) {
	r, w := pipe(t)
	if _, err := w.Write([]byte{CommandBreakpointHit}); err != nil {
		t.Fatalf("write: %v", err)
	}

	wk := New(Config{}, nil)
	if _, err := wk.handleCommand(int(r.Fd())); err == nil {
		t.Fatal("expected an error reporting a breakpoint hit with no registered breakpoint")
	}
}

func TestBreakpointHitChannelIsBuffered(t *testing.T) {
	wk := New(Config{}, nil)
	ch := wk.BreakpointHit()
	select {
	case <-ch:
		t.Fatal("expected the breakpoint-hit channel to start empty")
	default:
	}
	select {
	case wk.breakpointHit <- struct{}{}:
	default:
		t.Fatal("expected a send on the breakpoint-hit channel not to block with no receiver")
	}
}

func TestInsertAndRemoveBreakpointRoundTrip(t *testing.T) {
	wk := New(Config{}, nil)
	wk.rBrkAddress = func() uint64 { return 0x1234 }

	var bp = wk.breakpoint // zero value
	if err := wk.insertBreakpoint(0x1234, bp); err != nil {
		t.Fatalf("insertBreakpoint: %v", err)
	}
	if !wk.haveBrk {
		t.Fatal("expected haveBrk to be set after insertBreakpoint")
	}
	if err := wk.removeBreakpoint(bp); err != nil {
		t.Fatalf("removeBreakpoint: %v", err)
	}
	if wk.haveBrk {
		t.Fatal("expected haveBrk to be cleared after removeBreakpoint")
	}
}

func TestInsertBreakpointRejectsUnexpectedAddress(t *testing.T) {
	wk := New(Config{}, nil)
	wk.rBrkAddress = func() uint64 { return 0x1234 }

	if err := wk.insertBreakpoint(0x5678, dbgapi.BreakpointID{}); err == nil {
		t.Fatal("expected an error for an address other than the rendezvous breakpoint")
	}
}

func TestRemoveUnknownBreakpointErrors(t *testing.T) {
	wk := New(Config{}, nil)
	if err := wk.removeBreakpoint(wk.breakpoint); err == nil {
		t.Fatal("expected an error removing a breakpoint that was never inserted")
	}
}
