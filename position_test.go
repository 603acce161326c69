package armjit

import "testing"

func TestPositionRoundTrip(t *testing.T) {
	cases := []struct{ section, index int }{
		{0, 0},
		{1, 5},
		{127, posIndexMask1()},
	}
	for _, c := range cases {
		p := makePosition(c.section, c.index)
		if p.section() != c.section {
			t.Errorf("makePosition(%d,%d).section() = %d", c.section, c.index, p.section())
		}
		if p.index() != c.index {
			t.Errorf("makePosition(%d,%d).index() = %d", c.section, c.index, p.index())
		}
	}
}

func posIndexMask1() int { return int(posIndexMask) }

func TestExternalMarkerDoesNotCollideWithPosition(t *testing.T) {
	p := makePosition(127, posIndexMask1())
	if isExternalMarker(uint32(p)) {
		t.Error("a position using the maximum section count should never look like an external marker")
	}
	m := externalMarker(3)
	if !isExternalMarker(m) {
		t.Error("externalMarker should set the external flag")
	}
	if externalMarkerIndex(m) != 3 {
		t.Errorf("externalMarkerIndex = %d, want 3", externalMarkerIndex(m))
	}
}
