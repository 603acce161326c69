package armjit

import "testing"

// TestPackBranchWideInvert reconstructs the original displacement from a
// packed word using the ARM ARM's Jk = NOT(Sk XOR Ik) relationship solved
// for Ik, verifying packBranchWide's bit placement independently of its
// own implementation.
func TestPackBranchWideInvert(t *testing.T) {
	cases := []int32{-4, 4, 1000, -1000, wideBranchRange - 2, -(wideBranchRange - 2)}
	for _, n := range cases {
		patch, ok := packBranchWide(n)
		if !ok {
			t.Fatalf("packBranchWide(%d): expected ok", n)
		}
		s := (patch >> 26) & 1
		j1 := (patch >> 13) & 1
		j2 := (patch >> 11) & 1
		imm10 := (patch >> 16) & 0x3FF
		imm11 := patch & 0x7FF

		i1 := (1 ^ s ^ j1) & 1
		i2 := (1 ^ s ^ j2) & 1

		u := s<<24 | i1<<23 | i2<<22 | imm10<<12 | imm11<<1
		got := int32(u)
		if s == 1 {
			got -= 1 << 25 // sign-extend a 25-bit two's complement value
		}
		if got != n {
			t.Errorf("packBranchWide(%d) round-trip = %d", n, got)
		}
	}
}

func TestPackBranchWideRange(t *testing.T) {
	if _, ok := packBranchWide(wideBranchRange); ok {
		t.Error("packBranchWide at the upper bound should fail (strict <)")
	}
	if _, ok := packBranchWide(-wideBranchRange - 2); ok {
		t.Error("packBranchWide below the lower bound should fail")
	}
	if _, ok := packBranchWide(3); ok {
		t.Error("packBranchWide(3) should fail: odd displacement")
	}
}

// TestPackBranchNarrowInvert reconstructs the original displacement from a
// packed word using the Bcc.W field layout directly (S:J2:J1:imm6:imm11:'0',
// no inversion), verifying packBranchNarrow's bit placement independently
// of its own implementation.
func TestPackBranchNarrowInvert(t *testing.T) {
	cases := []int32{-4, 4, 0x800, 0x40000, 1000, -1000, narrowBranchRange - 2, -(narrowBranchRange - 2)}
	for _, n := range cases {
		patch, ok := packBranchNarrow(n)
		if !ok {
			t.Fatalf("packBranchNarrow(%d): expected ok", n)
		}
		s := (patch >> 26) & 1
		imm6 := (patch >> 16) & 0x3F
		j1 := (patch >> 13) & 1
		j2 := (patch >> 11) & 1
		imm11 := patch & 0x7FF

		u := s<<20 | j2<<19 | j1<<18 | imm6<<12 | imm11<<1
		got := int32(u)
		if s == 1 {
			got -= 1 << 21 // sign-extend a 21-bit two's complement value
		}
		if got != n {
			t.Errorf("packBranchNarrow(%d) round-trip = %d", n, got)
		}
	}
}

func TestPackBranchNarrowRange(t *testing.T) {
	if _, ok := packBranchNarrow(narrowBranchRange); ok {
		t.Error("packBranchNarrow at the upper bound should fail")
	}
	if _, ok := packBranchNarrow(wideBranchRange - 100); ok {
		t.Error("packBranchNarrow should reject a displacement only the wide form reaches")
	}
	if _, ok := packBranchNarrow(-2); !ok {
		t.Error("packBranchNarrow(-2) should succeed")
	}
}

func TestPackADR(t *testing.T) {
	p, ok := packADR(0x123)
	if !ok || p&adrSubFlag != 0 {
		t.Errorf("packADR(0x123) = 0x%x ok=%v, want add form", p, ok)
	}
	p, ok = packADR(-0x123)
	if !ok || p&adrSubFlag == 0 {
		t.Errorf("packADR(-0x123) = 0x%x ok=%v, want sub form", p, ok)
	}
	if _, ok := packADR(0x1000); ok {
		t.Error("packADR(0x1000) should be out of range")
	}
}
