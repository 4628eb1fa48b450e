package codeobject

import (
	"debug/dwarf"
	"debug/elf"
	"os"
	"sort"
)

// lineEntry is one row of a CodeObject's line map: an absolute address
// mapped to a source file and 1-based line number, per spec.md §4.2
// load_debug_info().
type lineEntry struct {
	Addr uint64
	File string
	Line int
}

// addrRange is one compilation unit's relocated [Start, End) address range,
// harvested from DW_AT_low_pc/high_pc or DW_AT_ranges.
type addrRange struct {
	Start, End uint64
}

// loadDebugInfo walks every compilation unit, collecting its address ranges
// into a range map and every line-table row with a nonzero line number into
// a line map, both relocated by loadAddress. A code object with no DWARF
// info (or no ELF at all) simply yields empty maps, matching the original's
// silent "if (!dbg) return" on dwarf_begin failure.
func loadDebugInfo(f *os.File, loadAddress uint64) ([]lineEntry, []addrRange, error) {
	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, nil, err
	}
	defer ef.Close()

	dw, err := ef.DWARF()
	if err != nil {
		return nil, nil, nil
	}

	seenLine := make(map[uint64]bool)
	seenRange := make(map[uint64]bool)
	var lines []lineEntry
	var ranges []addrRange

	r := dw.Reader()
	for {
		entry, rerr := r.Next()
		if rerr != nil || entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			continue
		}

		if rngs, rngErr := dw.Ranges(entry); rngErr == nil {
			for _, rg := range rngs {
				start := loadAddress + rg[0]
				if seenRange[start] {
					continue
				}
				seenRange[start] = true
				ranges = append(ranges, addrRange{Start: start, End: loadAddress + rg[1]})
			}
		}

		if lr, lrErr := dw.LineReader(entry); lrErr == nil && lr != nil {
			var le dwarf.LineEntry
			for {
				if nerr := lr.Next(&le); nerr != nil {
					break
				}
				if le.Line == 0 {
					continue
				}
				addr := loadAddress + le.Address
				if seenLine[addr] {
					continue
				}
				seenLine[addr] = true
				fileName := ""
				if le.File != nil {
					fileName = le.File.Name
				}
				lines = append(lines, lineEntry{Addr: addr, File: fileName, Line: le.Line})
			}
		}

		r.SkipChildren()
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Addr < lines[j].Addr })
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	return lines, ranges, nil
}
