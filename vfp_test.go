package armjit

import "testing"

func TestPackVRListSingle(t *testing.T) {
	// S0..S3: ra=0, rb=3, nr=4.
	got := packVRList(false, 0, 3)
	want := uint32(0)<<12 | uint32(0)<<22 | 4
	if got != want {
		t.Errorf("packVRList(single, 0, 3) = 0x%x, want 0x%x", got, want)
	}
	// S5..S7: ra=5 (odd), rb=7.
	got = packVRList(false, 5, 7)
	want = (5>>1)<<12 | (5&1)<<22 | 3
	if got != want {
		t.Errorf("packVRList(single, 5, 7) = 0x%x, want 0x%x", got, want)
	}
}

func TestPackVRListDouble(t *testing.T) {
	// D0..D2: ra=0, rb=2, nr=3.
	got := packVRList(true, 0, 2)
	want := uint32(0)<<12 | uint32(0)<<22 | 3*2 | 0x100
	if got != want {
		t.Errorf("packVRList(double, 0, 2) = 0x%x, want 0x%x", got, want)
	}
	// D17..D18 (ra>=16 needs the high-register nibble split).
	got = packVRList(true, 17, 18)
	want = (17&0xF)<<12 | (17>>4)<<22 | 2*2 | 0x100
	if got != want {
		t.Errorf("packVRList(double, 17, 18) = 0x%x, want 0x%x", got, want)
	}
}
