package report

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
)

// localChunkWords is the read granularity for local-memory dumps: 1024
// 32-bit words per request, per spec.md §4.3.
const localChunkWords = 1024

// localWordsPerLine is the display width for local-memory dumps.
const localWordsPerLine = 8

// printLocalMemory reads wave's local address space (DWARF address space 3)
// in fixed-size chunks until a read returns short or fails, printing 8 words
// per line with absolute segment addresses.
func printLocalMemory(w io.Writer, waveID dbgapi.WaveID) error {
	processID, err := dbgapi.GetWaveProcess(waveID)
	if err != nil {
		return fmt.Errorf("wave_get_info(PROCESS): %w", err)
	}
	architecture, err := dbgapi.GetWaveArchitecture(waveID)
	if err != nil {
		return fmt.Errorf("wave_get_info(ARCHITECTURE): %w", err)
	}
	localSpace, err := dbgapi.DwarfAddressSpaceToAddressSpace(architecture, 0x3)
	if err != nil {
		return fmt.Errorf("dwarf_address_space_to_address_space: %w", err)
	}

	var baseAddress uint64

	for {
		requestedSize := localChunkWords * 4
		buf := make([]byte, requestedSize)
		n, rerr := dbgapi.ReadMemory(processID, waveID, localSpace, baseAddress, buf)
		if rerr != nil {
			break
		}

		if baseAddress == 0 {
			fmt.Fprint(w, "\nLocal memory content:")
		}

		// column is scoped to this chunk, mirroring the original's inner
		// for-loop declaration — harmless since each full chunk is itself
		// a multiple of localWordsPerLine.
		column := 0
		words := n / 4
		for i := 0; i < words; i++ {
			preColumn := column
			column++
			if preColumn%localWordsPerLine == 0 {
				fmt.Fprintf(w, "\n    0x%04x:", baseAddress+uint64(i*4))
				column = 1
			}
			value := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
			fmt.Fprintf(w, " %08x", value)
		}

		baseAddress += uint64(n)

		if n != requestedSize {
			break
		}
	}

	if baseAddress != 0 {
		fmt.Fprintln(w)
	}
	return nil
}
