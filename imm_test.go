package armjit

import "testing"

func TestEncodeImm12Bare(t *testing.T) {
	ctrl, ok := encodeImm12(0x7F)
	if !ok || ctrl != 0x7F {
		t.Fatalf("bare 8-bit: got ctrl=0x%x ok=%v, want 0x7f true", ctrl, ok)
	}
	if got := packImm12(ctrl); got != 0x7F {
		t.Errorf("packImm12(0x7f) = 0x%x, want 0x7f", got)
	}
}

func TestEncodeImm12Patterns(t *testing.T) {
	cases := []struct {
		name string
		v    uint32
		ok   bool
	}{
		{"00XY00XY", 0x00AB00AB, true},
		{"XY00XY00", 0xFF00FF00, true}, // spec.md §8 S2
		{"XYXYXYXY", 0x7A7A7A7A, true},
		{"unencodable", 0x12345678, true /* encodability checked below, not equality */},
	}
	for _, c := range cases {
		_, ok := encodeImm12(c.v)
		if c.name == "unencodable" {
			if ok {
				t.Errorf("%s: 0x%x unexpectedly encodable", c.name, c.v)
			}
			continue
		}
		if ok != c.ok {
			t.Errorf("%s: encodeImm12(0x%x) ok=%v, want %v", c.name, c.v, ok, c.ok)
		}
	}
}

// TestEncodeImm12S2 reproduces spec.md §8 scenario S2: IMM12(0xFF00FF00)
// must select pattern code 0b10 with imm8 = 0xFF.
func TestEncodeImm12S2(t *testing.T) {
	ctrl, ok := encodeImm12(0xFF00FF00)
	if !ok {
		t.Fatal("0xFF00FF00 should be encodable (0xXY00XY00 pattern)")
	}
	if ctrl&0xFF != 0xFF {
		t.Errorf("imm8 = 0x%x, want 0xff", ctrl&0xFF)
	}
	if (ctrl>>8)&0x3 != 0b10 {
		t.Errorf("pattern selector = 0b%b, want 0b10", (ctrl>>8)&0x3)
	}
	packed := packImm12(ctrl)
	if packed&0xFF != 0xFF {
		t.Errorf("packed imm8 field = 0x%x, want 0xff", packed&0xFF)
	}
	if (packed>>12)&0x7 != 0b010 {
		t.Errorf("packed imm3 field = 0b%b, want 0b010", (packed>>12)&0x7)
	}
}

func TestEncodeImm12OutOfRange(t *testing.T) {
	if checkImm12Encodable(0x12345678) {
		t.Fatal("0x12345678 should not have a modified-immediate encoding (spec.md §8 S3)")
	}
}

func TestEncodeImm12Rotated(t *testing.T) {
	// 0x90000000 is the 8-bit seed 0x90 (bit7 set) rotated right by 8: none
	// of the bare/byte-repeat patterns apply, only the general rotated form.
	v := uint32(0x90000000)
	ctrl, ok := encodeImm12(v)
	if !ok {
		t.Fatalf("0x%x should be encodable via the rotated form", v)
	}
	packed := packImm12(ctrl)
	if packed == 0 {
		t.Errorf("packImm12 produced a zero field for a nonzero rotated value")
	}
	rot := ctrl >> 7
	seed := uint32(0x80) | (ctrl & 0x7F)
	rebuilt := (seed >> rot) | (seed << (32 - rot))
	if rebuilt != v {
		t.Errorf("rotation round-trip = 0x%x, want 0x%x", rebuilt, v)
	}
}

func TestPackImm16Split(t *testing.T) {
	n := uint32(0xABCD)
	got := packImm16(n)
	wantImm8 := uint32(0xCD)
	wantI := uint32(1)
	wantImm4 := uint32(0xA)
	if got&0xFF != wantImm8 {
		t.Errorf("imm8 = 0x%x, want 0x%x", got&0xFF, wantImm8)
	}
	if (got>>26)&1 != wantI {
		t.Errorf("i = %d, want %d", (got>>26)&1, wantI)
	}
	if (got>>16)&0xF != wantImm4 {
		t.Errorf("imm4 = 0x%x, want 0x%x", (got>>16)&0xF, wantImm4)
	}
	// imm3 is whatever bits 10:8 of n are; verify round-trip reassembly
	// recovers n exactly rather than asserting a specific literal value.
	imm3 := (got >> 12) & 0x7
	i := (got >> 26) & 1
	imm8 := got & 0xFF
	imm4 := (got >> 16) & 0xF
	rebuilt := imm4<<12 | i<<11 | imm3<<8 | imm8
	if rebuilt != n {
		t.Errorf("round-trip = 0x%x, want 0x%x", rebuilt, n)
	}
}

func TestPackIMML(t *testing.T) {
	p, ok := packIMML(100)
	if !ok || p&immlUBit == 0 || p&0xFFF != 100 {
		t.Errorf("packIMML(100) = 0x%x ok=%v, want U set and magnitude 100", p, ok)
	}
	p, ok = packIMML(-100)
	if !ok || p&immlUBit != 0 || p&0xFFF != 100 {
		t.Errorf("packIMML(-100) = 0x%x ok=%v, want U clear and magnitude 100", p, ok)
	}
	if _, ok := packIMML(0x1000); ok {
		t.Error("packIMML(0x1000) should be out of range (12-bit field)")
	}
}

func TestPackIMMV8(t *testing.T) {
	p, ok := packIMMV8(32)
	if !ok || p&immlUBit == 0 || p&0xFF != 8 {
		t.Errorf("packIMMV8(32) = 0x%x ok=%v, want U set and scaled magnitude 8", p, ok)
	}
	if _, ok := packIMMV8(3); ok {
		t.Error("packIMMV8(3) should fail: not a multiple of 4")
	}
	if _, ok := packIMMV8(1021); ok {
		t.Error("packIMMV8(1021) should fail: not a multiple of 4")
	}
}
