package armjit

import "fmt"

// StatusClass is the error class spec.md §6 "Status codes" describes.
type StatusClass uint32

const (
	StatusOK StatusClass = iota
	StatusNoMem
	StatusPhase
	StatusMatch
	StatusRangeImm      // RANGE_I: immediate out of range
	StatusRangeSection  // RANGE_SEC
	StatusRangeLG       // RANGE_LG: local/global label index out of range
	StatusRangePC       // RANGE_PC: pc label index out of range
	StatusRangeRel      // RANGE_REL: displacement out of reach
	StatusUndefLG       // UNDEF_LG: local label never defined
	StatusUndefPC       // UNDEF_PC: pc label never defined at link time
)

func (c StatusClass) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusNoMem:
		return "NOMEM"
	case StatusPhase:
		return "PHASE"
	case StatusMatch:
		return "MATCH"
	case StatusRangeImm:
		return "RANGE_I"
	case StatusRangeSection:
		return "RANGE_SEC"
	case StatusRangeLG:
		return "RANGE_LG"
	case StatusRangePC:
		return "RANGE_PC"
	case StatusRangeRel:
		return "RANGE_REL"
	case StatusUndefLG:
		return "UNDEF_LG"
	case StatusUndefPC:
		return "UNDEF_PC"
	default:
		return fmt.Sprintf("STATUS(%d)", uint32(c))
	}
}

// Status packs a StatusClass into the high byte and the offending
// action-list index into the low 24 bits, per spec.md §6. A zero Status is
// always StatusOK.
type Status uint32

const statusActionBits = 24
const statusActionMask = uint32(1)<<statusActionBits - 1

func newStatus(class StatusClass, actionIndex int) Status {
	return Status(uint32(class)<<statusActionBits | (uint32(actionIndex) & statusActionMask))
}

// OK reports whether the status carries no error.
func (s Status) OK() bool { return s.Class() == StatusOK }

// Class returns the error class packed into the status.
func (s Status) Class() StatusClass { return StatusClass(uint32(s) >> statusActionBits) }

// ActionIndex returns the action-list index the status was raised at. It is
// only meaningful when !OK().
func (s Status) ActionIndex() int { return int(uint32(s) & statusActionMask) }

// Error implements the error interface so Status can be returned directly
// from public API methods without callers hand-decoding the packed value.
func (s Status) Error() string {
	if s.OK() {
		return "armjit: ok"
	}
	return fmt.Sprintf("armjit: %s at action %d", s.Class(), s.ActionIndex())
}

// Is lets errors.Is match against another Status with the same class,
// whatever action index either one carries.
func (s Status) Is(target error) bool {
	other, ok := target.(Status)
	if !ok {
		return false
	}
	return s.Class() == other.Class()
}

var statusOK = Status(0)
