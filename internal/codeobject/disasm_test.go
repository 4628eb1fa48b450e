package codeobject

import (
	"bytes"
	"testing"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

func TestAnchorStartPCWalksBackToContextBoundary(t *testing.T) {
	const pc = 0x2000
	co := &CodeObject{
		lines: []lineEntry{
			{Addr: pc - 100, File: "a.c", Line: 1},
			{Addr: pc - 8, File: "a.c", Line: 2},
		},
	}

	// The backward walk starts at the predecessor pc-8 (distance 8 <
	// contextByteSize) and keeps going since that's still inside the
	// window, stopping only once it reaches pc-100 (distance 100 >=
	// contextByteSize) or the map is exhausted — here the map is
	// exhausted at pc-100, so that's the anchor this isolated walk
	// returns. The forward re-anchor step then walks it back up to a
	// boundary within contextByteSize of pc; see
	// TestForwardReanchorWalksUpToContextBoundary.
	got := co.anchorStartPC(pc)
	if got != pc-100 {
		t.Fatalf("anchorStartPC = %#x, want %#x", got, pc-100)
	}
}

// fakeDisasmBackend decodes fixed-size, fixed-text instructions without
// touching any real memory or vendor disassembler.
type fakeDisasmBackend struct {
	insnSize int
}

func (f fakeDisasmBackend) ReadGlobalMemory(p dbgapi.ProcessID, addr uint64, buf []byte) (int, error) {
	return len(buf), nil
}

func (f fakeDisasmBackend) DisassembleInstruction(a dbgapi.ArchitectureID, addr uint64, mem []byte, sym dbgapi.Symbolizer) (string, int, error) {
	return "nop", f.insnSize, nil
}

func TestForwardReanchorWalksUpToContextBoundary(t *testing.T) {
	const pc = 0x2000
	// Backward scan landed on pc-100, well outside contextByteSize (24) of
	// pc. Decoding forward in fixed 4-byte steps (pc-100, pc-96, …) should
	// stop at the first boundary with pc-startPC <= 24, i.e. pc-24.
	got := forwardReanchor(fakeDisasmBackend{insnSize: 4}, dbgapi.ProcessID{Handle: 1}, dbgapi.ArchitectureID{Handle: 1}, pc, pc-100, 4)
	if pc-got > contextByteSize {
		t.Fatalf("forwardReanchor = %#x, still more than contextByteSize from pc %#x", got, pc)
	}
	if want := uint64(pc - 24); got != want {
		t.Fatalf("forwardReanchor = %#x, want %#x", got, want)
	}
}

func TestForwardReanchorAlreadyWithinContextIsANoOp(t *testing.T) {
	const pc = 0x2000
	got := forwardReanchor(fakeDisasmBackend{insnSize: 4}, dbgapi.ProcessID{Handle: 1}, dbgapi.ArchitectureID{Handle: 1}, pc, pc-8, 4)
	if got != pc-8 {
		t.Fatalf("forwardReanchor = %#x, want %#x (already within contextByteSize, no walk needed)", got, pc-8)
	}
}

func TestAnchorStartPCNoLineInfoReturnsPC(t *testing.T) {
	co := &CodeObject{}
	if got := co.anchorStartPC(0x1234); got != 0x1234 {
		t.Fatalf("anchorStartPC with empty line map = %#x, want pc unchanged", got)
	}
}

func TestAnchorStartPCStopsAtFirstEntryWithinContext(t *testing.T) {
	const pc = 0x1000
	co := &CodeObject{
		lines: []lineEntry{
			{Addr: pc - 10, File: "a.c", Line: 5},
		},
	}
	if got := co.anchorStartPC(pc); got != pc-10 {
		t.Fatalf("anchorStartPC = %#x, want %#x", got, pc-10)
	}
}

func TestClampingRangeCoversPC(t *testing.T) {
	co := &CodeObject{
		ranges: []addrRange{{Start: 0x1000, End: 0x1100}},
	}
	lo, hi, ok := co.clampingRange(0x1050)
	if !ok || lo != 0x1000 || hi != 0x1100 {
		t.Fatalf("clampingRange = (%#x, %#x, %v), want (0x1000, 0x1100, true)", lo, hi, ok)
	}

	if _, _, ok := co.clampingRange(0x2000); ok {
		t.Fatal("expected no range to cover an address outside every range")
	}
}

func TestSourceLineFillRuleFillsFullyUnmappedGap(t *testing.T) {
	// No entries at all for lines 11-13: the backward scan runs all the way
	// down to prevLine (10) without finding another mapped line, so every
	// intervening line is emitted as fill context.
	co := &CodeObject{
		lines: []lineEntry{
			{Addr: 0x100, File: "a.c", Line: 10},
			{Addr: 0x108, File: "a.c", Line: 14},
		},
	}

	var buf bytes.Buffer
	co.printSourceBlock(&buf, "a.c", "a.c", 10, 14)
	out := buf.String()

	for _, line := range []string{"11", "12", "13", "14"} {
		if !bytes.Contains([]byte(out), []byte(line)) {
			t.Errorf("expected line %s to be printed as fill context, got:\n%s", line, out)
		}
	}
	if n := bytes.Count([]byte(out), []byte("\n")); n != 4 {
		t.Fatalf("expected 4 printed lines (11-14), got %d:\n%s", n, out)
	}
}

func TestSourceLineFillRuleStopsAtNearestMappedLine(t *testing.T) {
	// Line 12 has its own address mapping, so the backward scan from 14
	// stops there: only lines from just past the mapped line (13) through
	// the target (14) get printed as fill — 11 and 12 are left to whatever
	// separately prints at their own addresses.
	co := &CodeObject{
		lines: []lineEntry{
			{Addr: 0x100, File: "a.c", Line: 10},
			{Addr: 0x104, File: "a.c", Line: 12},
			{Addr: 0x108, File: "a.c", Line: 14},
		},
	}

	var buf bytes.Buffer
	co.printSourceBlock(&buf, "a.c", "a.c", 10, 14)
	out := buf.String()

	if bytes.Contains([]byte(out), []byte("11")) {
		t.Fatalf("expected line 11 not to be reached by the bounded backward scan, got:\n%s", out)
	}
	if n := bytes.Count([]byte(out), []byte("\n")); n != 2 {
		t.Fatalf("expected exactly 2 printed lines (13, 14), got %d:\n%s", n, out)
	}
}

func TestSourceLineFillRuleDifferentFileOnlyPrintsTargetLine(t *testing.T) {
	co := &CodeObject{}

	var buf bytes.Buffer
	co.printSourceBlock(&buf, "b.c", "a.c", 10, 14)
	out := buf.String()

	if bytes.Count([]byte(out), []byte("\n")) != 1 {
		t.Fatalf("expected exactly one printed line for a file change, got:\n%s", out)
	}
}
