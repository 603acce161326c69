package armjit

import (
	"errors"
	"testing"
)

func TestStatusOK(t *testing.T) {
	if !statusOK.OK() {
		t.Error("zero Status should be OK")
	}
	if statusOK.Class() != StatusOK {
		t.Errorf("Class() = %v, want StatusOK", statusOK.Class())
	}
}

func TestStatusPackUnpack(t *testing.T) {
	st := newStatus(StatusRangeImm, 42)
	if st.OK() {
		t.Fatal("a non-OK class should report OK() == false")
	}
	if st.Class() != StatusRangeImm {
		t.Errorf("Class() = %v, want StatusRangeImm", st.Class())
	}
	if st.ActionIndex() != 42 {
		t.Errorf("ActionIndex() = %d, want 42", st.ActionIndex())
	}
}

func TestStatusIs(t *testing.T) {
	a := newStatus(StatusUndefLG, 1)
	b := newStatus(StatusUndefLG, 99)
	if !errors.Is(a, b) {
		t.Error("two statuses with the same class should satisfy errors.Is")
	}
	c := newStatus(StatusUndefPC, 1)
	if errors.Is(a, c) {
		t.Error("statuses with different classes should not satisfy errors.Is")
	}
}
