package report

import "testing"

func TestHexStringBigEndianRegardlessOfHostEndianness(t *testing.T) {
	// Bytes as they'd sit in memory; hex_string renders most-significant
	// byte leftmost, i.e. the bytes in reverse order.
	got := hexString([]byte{0x34, 0x12})
	if got != "1234" {
		t.Fatalf("hexString = %q, want %q", got, "1234")
	}
}

func TestHexStringEmpty(t *testing.T) {
	if got := hexString(nil); got != "" {
		t.Fatalf("hexString(nil) = %q, want empty", got)
	}
}

func TestRegisterValueStringScalarFallsBackToHex(t *testing.T) {
	got := registerValueString("uint32_t", []byte{0x01, 0x00, 0x00, 0x00})
	if got != "00000001" {
		t.Fatalf("registerValueString = %q, want %q", got, "00000001")
	}
}

func TestRegisterValueStringVectorRecursesWithIndices(t *testing.T) {
	// 2-element vector of uint16_t: element size = 4/2 = 2 bytes.
	value := []byte{0x01, 0x00, 0x02, 0x00}
	got := registerValueString("uint16_t[2]", value)
	want := "[0] 0001 [1] 0002"
	if got != want {
		t.Fatalf("registerValueString = %q, want %q", got, want)
	}
}

func TestRegisterValueStringNestedVectorType(t *testing.T) {
	// A vector-of-vectors type string should recurse through both levels.
	value := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	got := registerValueString("uint8_t[2][2]", value)
	want := "[0] [0] aa [1] bb [1] [0] cc [1] dd"
	if got != want {
		t.Fatalf("registerValueString = %q, want %q", got, want)
	}
}
