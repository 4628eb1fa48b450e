package codeobject

import (
	"debug/elf"
	"os"
	"sort"

	"github.com/ianlancetaylor/demangle"
)

// symbolEntry is one entry of a CodeObject's symbol map: an absolute load
// address mapped to a mangled name and the byte range it covers, per
// spec.md §4.2 load_symbol_map().
type symbolEntry struct {
	Value uint64
	Name  string // mangled; demangled lazily for display only
	Size  uint64
}

// loadSymbolMap slurps every STT_FUNC symbol with a defined section out of
// the SHT_SYMTAB and SHT_DYNSYM tables, keyed by load_address+st_value; a
// collision keeps whichever symbol has the larger st_size.
func loadSymbolMap(f *os.File, loadAddress uint64) ([]symbolEntry, error) {
	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	var all []elf.Symbol
	// load_symbol_map() iterates both SHT_SYMTAB and SHT_DYNSYM; fall back
	// to the dynamic symbols when there is no static symbol table at all
	// (TODO in the original: "if we did not see a symtab, check the
	// dynamic segment" — we simply always look at both).
	if syms, serr := ef.Symbols(); serr == nil {
		all = append(all, syms...)
	}
	if dynsyms, derr := ef.DynamicSymbols(); derr == nil {
		all = append(all, dynsyms...)
	}

	return buildSymbolMap(all, loadAddress), nil
}

// buildSymbolMap applies the STT_FUNC-with-defined-section filter and the
// larger-size-wins collision rule to a flat symbol list; split out of
// loadSymbolMap so it can be exercised without a real ELF file.
func buildSymbolMap(syms []elf.Symbol, loadAddress uint64) []symbolEntry {
	byAddr := make(map[uint64]*symbolEntry)
	var order []uint64

	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Section == elf.SHN_UNDEF {
			continue
		}
		addr := loadAddress + s.Value
		if existing, ok := byAddr[addr]; ok {
			if s.Size > existing.Size {
				existing.Name = s.Name
				existing.Size = s.Size
			}
			continue
		}
		e := &symbolEntry{Value: addr, Name: s.Name, Size: s.Size}
		byAddr[addr] = e
		order = append(order, addr)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]symbolEntry, len(order))
	for i, addr := range order {
		out[i] = *byAddr[addr]
	}
	return out
}

// findSymbolIn implements find_symbol(addr): a predecessor lookup returning
// the symbol iff addr falls within [value, value+size).
func findSymbolIn(symbols []symbolEntry, addr uint64) (name string, value, size uint64, ok bool) {
	idx := sort.Search(len(symbols), func(i int) bool { return symbols[i].Value > addr })
	if idx == 0 {
		return "", 0, 0, false
	}
	s := symbols[idx-1]
	if addr < s.Value+s.Size {
		return demangleName(s.Name), s.Value, s.Size, true
	}
	return "", 0, 0, false
}

// demangleName best-effort demangles a C++ mangled symbol name, returning
// the input unchanged on failure — the same contract as the original's
// abi::__cxa_demangle call in find_symbol.
func demangleName(name string) string {
	return demangle.Filter(name)
}

// elfLoadSegmentsMemSize computes mem_size = max(p_vaddr + p_memsz) over
// PT_LOAD segments only, per spec.md §4.2 open().
func elfLoadSegmentsMemSize(f *os.File) (uint64, error) {
	ef, err := elf.NewFile(f)
	if err != nil {
		return 0, err
	}
	defer ef.Close()

	var memSize uint64
	for _, prog := range ef.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if end := prog.Vaddr + prog.Memsz; end > memSize {
			memSize = end
		}
	}
	return memSize, nil
}
