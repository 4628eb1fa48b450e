// Package report renders the human-readable wavefront report: register
// dump, local-memory dump and disassembly, interleaved per wave — spec.md
// §4.3, grounded on debug_agent.cpp's print_wavefronts/print_registers/
// print_local_memory.
package report

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"

	"github.com/peterjunpark/rocr-debug-agent/internal/codeobject"
	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
	"github.com/peterjunpark/rocr-debug-agent/internal/wave"
)

// Formatter renders wavefront reports to a single output sink. It holds a
// non-reentrant lock (spec.md invariant 3, §5 "print_wavefronts is
// non-reentrant"): a concurrent call that cannot acquire it returns
// immediately rather than blocking, coalescing the later report away.
type Formatter struct {
	out    io.Writer
	locked int32 // atomic trylock, mirrors std::mutex::try_lock
	// CodeObjectsDir, when non-empty, saves every opened code object's
	// bytes here before each report, per the -s/--save-code-objects option.
	CodeObjectsDir string
}

// New returns a Formatter writing reports to out.
func New(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintWavefronts renders one report for process p. If allWavefronts is
// set, every wave is force-stopped first (stop_all_wavefronts); otherwise
// only waves already in the STOP state are reported. Returns immediately,
// doing nothing, if a report is already in progress.
func (f *Formatter) PrintWavefronts(p dbgapi.ProcessID, allWavefronts bool) error {
	if !atomic.CompareAndSwapInt32(&f.locked, 0, 1) {
		return nil
	}
	defer atomic.StoreInt32(&f.locked, 0)

	log := logflags.ReportLogger()

	codeObjectIDs, err := dbgapi.CodeObjectList(p)
	if err != nil {
		return fmt.Errorf("process_code_object_list: %w", err)
	}

	codeObjects := make([]*codeobject.CodeObject, 0, len(codeObjectIDs))
	for _, id := range codeObjectIDs {
		loadAddress, err := dbgapi.CodeObjectLoadAddress(id)
		if err != nil {
			return fmt.Errorf("code_object_get_info(LOAD_ADDRESS): %w", err)
		}
		uri, err := dbgapi.CodeObjectURI(id)
		if err != nil {
			return fmt.Errorf("code_object_get_info(URI_NAME): %w", err)
		}

		co := codeobject.New(id, loadAddress, uri)
		if err := co.Open(); err != nil {
			log.Warnf("could not open code_object_%d", id.Handle)
			continue
		}

		if f.CodeObjectsDir != "" {
			if err := co.Save(f.CodeObjectsDir); err != nil {
				log.Warnf("could not save code object to %s: %v", f.CodeObjectsDir, err)
			}
		}

		codeObjects = append(codeObjects, co)
	}
	sort.Slice(codeObjects, func(i, j int) bool {
		return codeObjects[i].LoadAddress < codeObjects[j].LoadAddress
	})

	if allWavefronts {
		if _, err := wave.StopAll(p); err != nil {
			return fmt.Errorf("stop_all_wavefronts: %w", err)
		}
	}

	waveIDs, err := dbgapi.WaveList(p)
	if err != nil {
		return fmt.Errorf("process_wave_list: %w", err)
	}

	first := true
	for _, waveID := range waveIDs {
		state, err := dbgapi.GetWaveState(waveID)
		if err != nil {
			if dbgapi.IsInvalidWaveID(err) {
				continue
			}
			return fmt.Errorf("wave_get_info(STATE): %w", err)
		}
		if state != dbgapi.WaveStateStop {
			continue
		}

		if err := f.printOneWave(waveID, codeObjects, first); err != nil {
			return err
		}
		first = false
	}

	return nil
}

func (f *Formatter) printOneWave(waveID dbgapi.WaveID, codeObjects []*codeobject.CodeObject, first bool) error {
	stopReason, err := dbgapi.GetWaveStopReason(waveID)
	if err != nil {
		return fmt.Errorf("wave_get_info(STOP_REASON): %w", err)
	}
	pc, err := dbgapi.GetWavePC(waveID)
	if err != nil {
		return fmt.Errorf("wave_get_info(PC): %w", err)
	}

	kernelEntry, hasKernelEntry, err := waveKernelEntry(waveID)
	if err != nil {
		return err
	}

	found := findCodeObjectContaining(codeObjects, pc)

	if !first {
		fmt.Fprintln(f.out)
	}
	fmt.Fprintln(f.out, "--------------------------------------------------------")

	fmt.Fprintf(f.out, "wave_%d: pc=0x%x (kernel_code_entry=", waveID.Handle, pc)
	if hasKernelEntry {
		fmt.Fprintf(f.out, "0x%x", kernelEntry)
		if found != nil {
			if name, _, _, ok := found.FindSymbol(kernelEntry); ok {
				fmt.Fprintf(f.out, " <%s>", name)
			}
		}
	} else {
		fmt.Fprint(f.out, "not available")
	}
	fmt.Fprint(f.out, ")")

	if stopReason != dbgapi.StopReasonNone {
		fmt.Fprintf(f.out, " (stopped, reason: %s)\n", stopReasonString(stopReason))
	} else {
		fmt.Fprintln(f.out, " (running)")
	}

	if err := printRegisters(f.out, waveID); err != nil {
		return err
	}
	if err := printLocalMemory(f.out, waveID); err != nil {
		return err
	}

	if found != nil {
		architecture, err := dbgapi.GetWaveArchitecture(waveID)
		if err != nil {
			return fmt.Errorf("wave_get_info(ARCHITECTURE): %w", err)
		}
		if err := found.Disassemble(f.out, architecture, pc); err != nil {
			return err
		}
	}

	return nil
}

// waveKernelEntry returns the wave's dispatch kernel-entry address, if
// available; NOT_AVAILABLE (ttmp registers not yet initialized) is not an
// error, just absence.
func waveKernelEntry(waveID dbgapi.WaveID) (addr uint64, ok bool, err error) {
	addr, err = dbgapi.GetWaveDispatchKernelEntry(waveID)
	if err != nil {
		if dbgapi.IsNotAvailable(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("wave_get_info(DISPATCH): %w", err)
	}
	return addr, true, nil
}

// findCodeObjectContaining returns the code object whose [load_address,
// load_address+mem_size) range covers pc, a predecessor lookup over
// codeObjects (sorted by load address).
func findCodeObjectContaining(codeObjects []*codeobject.CodeObject, pc uint64) *codeobject.CodeObject {
	idx := sort.Search(len(codeObjects), func(i int) bool { return codeObjects[i].LoadAddress > pc })
	if idx == 0 {
		return nil
	}
	co := codeObjects[idx-1]
	if pc-co.LoadAddress < co.MemSize {
		return co
	}
	return nil
}
