package codeobject

import (
	"fmt"
	"io"
	"sort"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

// contextByteSize is the number of bytes of context shown on either side of
// pc in a disassembly listing, per spec.md §4.2 disassemble().
const contextByteSize = 24

// disasmBackend is the slice of dbgapi's memory-read/disassemble surface
// forwardReanchor needs, factored out so the forward re-anchor loop can be
// driven by a fake in tests instead of a live dbgapi attachment.
type disasmBackend interface {
	ReadGlobalMemory(p dbgapi.ProcessID, addr uint64, buf []byte) (int, error)
	DisassembleInstruction(a dbgapi.ArchitectureID, addr uint64, mem []byte, sym dbgapi.Symbolizer) (string, int, error)
}

type liveDisasmBackend struct{}

func (liveDisasmBackend) ReadGlobalMemory(p dbgapi.ProcessID, addr uint64, buf []byte) (int, error) {
	return dbgapi.ReadGlobalMemory(p, addr, buf)
}

func (liveDisasmBackend) DisassembleInstruction(a dbgapi.ArchitectureID, addr uint64, mem []byte, sym dbgapi.Symbolizer) (string, int, error) {
	return dbgapi.DisassembleInstruction(a, addr, mem, sym)
}

// Disassemble renders a disassembly listing centered on pc into w, anchored
// on a real instruction boundary and interleaved with source lines — the
// algorithm in spec.md §4.2, grounded on code_object.cpp:disassemble() and
// loop-shaped like the teacher's pkg/proc/disasm.go.
func (co *CodeObject) Disassemble(w io.Writer, architecture dbgapi.ArchitectureID, pc uint64) error {
	if !co.IsOpen() {
		return fmt.Errorf("code object %q is not opened", co.URI)
	}
	co.debugInfoOnce.Do(func() { co.loadDebugInfoLocked() })

	processID, err := dbgapi.CodeObjectProcess(co.ID)
	if err != nil {
		return fmt.Errorf("could not get the process from the agent: %w", err)
	}

	largestInsn, err := dbgapi.ArchitectureLargestInstructionSize(architecture)
	if err != nil {
		return fmt.Errorf("could not get the instruction size from the architecture: %w", err)
	}

	startPC := co.anchorStartPC(pc)
	endPC := pc + contextByteSize
	if lo, hi, ok := co.clampingRange(pc); ok {
		if startPC < lo {
			startPC = lo
		}
		if endPC > hi {
			endPC = hi
		}
	}

	symName, symValue, _, symOK := co.FindSymbol(pc)

	if symOK {
		fmt.Fprintf(w, "\nDisassembly for function %s:\n", symName)
	} else {
		fmt.Fprint(w, "\nDisassembly:\n")
	}
	fmt.Fprintf(w, "    code object: %s\n", co.URI)
	fmt.Fprintf(w, "    loaded at: [0x%x-0x%x]\n", co.LoadAddress, co.LoadAddress+co.MemSize)

	savedStartPC := startPC
	startPC = forwardReanchor(liveDisasmBackend{}, processID, architecture, pc, startPC, largestInsn)

	var prevFile string
	var prevLine int
	addr := startPC

	for addr < endPC {
		lookupAddr := addr
		if addr == startPC {
			lookupAddr = savedStartPC
		}

		if le, ok := co.lineAt(lookupAddr); ok {
			changed := le.File != prevFile || le.Line != prevLine
			if changed {
				fmt.Fprintln(w)
			}
			if le.File != prevFile {
				fmt.Fprintf(w, "%s:\n", le.File)
			}
			if changed {
				co.printSourceBlock(w, le.File, prevFile, prevLine, le.Line)
			}
			prevFile = le.File
			prevLine = le.Line

			if addr == startPC && startPC != savedStartPC {
				fmt.Fprintln(w, "    ...")
			}
		}

		buf := make([]byte, largestInsn)
		n, rerr := dbgapi.ReadGlobalMemory(processID, addr, buf)
		if rerr != nil {
			fmt.Fprintf(w, "Cannot access memory at address 0x%x\n", addr)
			break
		}

		text, size, derr := dbgapi.DisassembleInstruction(architecture, addr, buf[:n], co.symbolizer())
		if derr != nil {
			return fmt.Errorf("amd_dbgapi_disassemble_instruction failed: %w", derr)
		}

		if addr == pc {
			fmt.Fprint(w, " => ")
		} else {
			fmt.Fprint(w, "    ")
		}
		fmt.Fprintf(w, "0x%x", addr)
		if symOK {
			if addr >= symValue {
				fmt.Fprintf(w, " <+%d>", addr-symValue)
			} else {
				fmt.Fprintf(w, " <-%d>", symValue-addr)
			}
		}
		fmt.Fprintf(w, ":    %s\n", text)

		addr += uint64(size)
	}

	if _, ok := co.lineAt(addr); !ok {
		fmt.Fprintln(w, "    ...")
	}
	fmt.Fprintln(w, "\nEnd of disassembly.")
	return nil
}

// forwardReanchor walks forward from the (possibly too-early)
// backward-scanned anchor startPC until it lands on a real instruction
// boundary within contextByteSize of pc; the instructions are variable-size
// so decoding forward is the only reliable way to find a decodable boundary.
func forwardReanchor(b disasmBackend, processID dbgapi.ProcessID, architecture dbgapi.ArchitectureID, pc, startPC uint64, largestInsn int) uint64 {
	for pc-startPC > contextByteSize {
		buf := make([]byte, largestInsn)
		n, rerr := b.ReadGlobalMemory(processID, startPC, buf)
		if rerr != nil {
			break
		}
		_, size, derr := b.DisassembleInstruction(architecture, startPC, buf[:n], nil)
		if derr != nil {
			break
		}
		startPC += uint64(size)
	}
	return startPC
}

// anchorStartPC walks line_map backward from the predecessor of pc until
// either the distance to pc reaches contextByteSize or the map is
// exhausted; with no line info at all it returns pc unchanged.
func (co *CodeObject) anchorStartPC(pc uint64) uint64 {
	if len(co.lines) == 0 {
		return pc
	}
	idx := sort.Search(len(co.lines), func(i int) bool { return co.lines[i].Addr > pc })
	if idx == 0 {
		return pc
	}
	idx--
	for {
		if pc-co.lines[idx].Addr >= contextByteSize {
			break
		}
		if idx == 0 {
			break
		}
		idx--
	}
	return co.lines[idx].Addr
}

// clampingRange returns the range_map entry covering pc, if any.
func (co *CodeObject) clampingRange(pc uint64) (lo, hi uint64, ok bool) {
	idx := sort.Search(len(co.ranges), func(i int) bool { return co.ranges[i].Start > pc })
	if idx == 0 {
		return 0, 0, false
	}
	r := co.ranges[idx-1]
	if pc < r.End {
		return r.Start, r.End, true
	}
	return 0, 0, false
}

// lineAt returns the exact line-map entry at addr, if one exists.
func (co *CodeObject) lineAt(addr uint64) (lineEntry, bool) {
	idx := sort.Search(len(co.lines), func(i int) bool { return co.lines[i].Addr >= addr })
	if idx < len(co.lines) && co.lines[idx].Addr == addr {
		return co.lines[idx], true
	}
	return lineEntry{}, false
}

// hasLineMapping reports whether some address maps to (file, line).
func (co *CodeObject) hasLineMapping(file string, line int) bool {
	for _, le := range co.lines {
		if le.File == file && le.Line == line {
			return true
		}
	}
	return false
}

// printSourceBlock implements the source-line-fill rule: when moving to a
// later line in the same file, print every intervening line that has no
// address mapped to it, so the source view stays dense.
func (co *CodeObject) printSourceBlock(w io.Writer, file, prevFile string, prevLine, lineNumber int) {
	firstLine := lineNumber
	lastLine := lineNumber

	if file == prevFile && lineNumber+1 > prevLine {
		for {
			firstLine--
			if !(firstLine > prevLine) {
				break
			}
			if co.hasLineMapping(file, firstLine) {
				break
			}
		}
		firstLine++
	}

	for line := firstLine; line <= lastLine; line++ {
		fmt.Fprintf(w, "%-8d", line)
		text, ok := sourceLine(file, line)
		if !ok {
			fmt.Fprintf(w, "%s: No such file or directory.", file)
		} else {
			fmt.Fprint(w, text)
		}
		fmt.Fprintln(w)
	}
}

// symbolizer renders an operand address as "0xADDR <NAME+OFF>" text for the
// disassembler's callback, per spec.md §4.2 disassemble()'s symbolizer.
func (co *CodeObject) symbolizer() dbgapi.Symbolizer {
	return func(address uint64) string {
		text := fmt.Sprintf("0x%x", address)
		if name, value, _, ok := co.FindSymbol(address); ok {
			text += fmt.Sprintf(" <%s+%d>", name, address-value)
		}
		return text
	}
}
