package codeobject

import (
	"debug/elf"
	"testing"
)

func funcSymbol(name string, value, size uint64) elf.Symbol {
	return elf.Symbol{
		Name:    name,
		Info:    uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_FUNC),
		Value:   value,
		Size:    size,
		Section: elf.SectionIndex(1),
	}
}

func TestBuildSymbolMapCollisionLargerSizeWins(t *testing.T) {
	syms := []elf.Symbol{
		funcSymbol("small", 0x1000, 16),
		funcSymbol("big", 0x1000, 64),
	}

	out := buildSymbolMap(syms, 0)
	if len(out) != 1 {
		t.Fatalf("expected one merged entry, got %d", len(out))
	}
	if out[0].Name != "big" || out[0].Size != 64 {
		t.Fatalf("expected the size-64 symbol to win, got %+v", out[0])
	}
}

func TestBuildSymbolMapCollisionKeepsFirstWhenNewIsSmaller(t *testing.T) {
	syms := []elf.Symbol{
		funcSymbol("big", 0x1000, 64),
		funcSymbol("small", 0x1000, 16),
	}

	out := buildSymbolMap(syms, 0)
	if len(out) != 1 || out[0].Name != "big" || out[0].Size != 64 {
		t.Fatalf("expected the existing size-64 symbol to survive, got %+v", out)
	}
}

func TestBuildSymbolMapSkipsUndefinedAndNonFunc(t *testing.T) {
	syms := []elf.Symbol{
		funcSymbol("undef", 0x2000, 8),
		{Name: "data", Info: uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_OBJECT), Value: 0x3000, Size: 8, Section: 1},
	}
	syms[0].Section = elf.SHN_UNDEF

	out := buildSymbolMap(syms, 0)
	if len(out) != 0 {
		t.Fatalf("expected no symbols, got %+v", out)
	}
}

func TestBuildSymbolMapRelocatesByLoadAddress(t *testing.T) {
	out := buildSymbolMap([]elf.Symbol{funcSymbol("f", 0x100, 8)}, 0xdead0000)
	if len(out) != 1 || out[0].Value != 0xdead0100 {
		t.Fatalf("expected relocated value 0xdead0100, got %+v", out)
	}
}

func TestFindSymbolPredecessorRule(t *testing.T) {
	const base = 0x1000
	symbols := []symbolEntry{
		{Value: base, Name: "A", Size: 16},
		{Value: base + 32, Name: "B", Size: 8},
	}

	cases := []struct {
		addr     uint64
		wantName string
		wantOK   bool
	}{
		{base + 15, "A", true},
		{base + 20, "", false},
		{base + 32, "B", true},
		{base + 40, "", false},
	}

	for _, c := range cases {
		name, _, _, ok := findSymbolIn(symbols, c.addr)
		if ok != c.wantOK || (ok && name != c.wantName) {
			t.Errorf("findSymbolIn(%#x) = (%q, %v), want (%q, %v)", c.addr, name, ok, c.wantName, c.wantOK)
		}
	}
}

func TestDemangleNameFallsBackOnFailure(t *testing.T) {
	if got := demangleName("not_a_mangled_name"); got != "not_a_mangled_name" {
		t.Fatalf("expected unmangled input unchanged, got %q", got)
	}
}
