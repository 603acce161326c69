package armjit

// position is the 32-bit composite address spec.md §3 describes: a section
// index in the upper bits and a zero-based buffer index in the lower bits.
//
// This implementation reserves bit 31 (see externalFlag in link.go) so that
// a REL_LG/REL_PC buffer cell can be told apart from a resolved position
// without an extra field. That caps sections at 128 instead of the 256 a
// full 8-bit field would allow — far more than any real assembly run uses.
const (
	posIndexBits = 24
	posIndexMask = uint32(1)<<posIndexBits - 1
	maxSections  = 128
)

type position uint32

func makePosition(section, index int) position {
	return position(uint32(section)<<posIndexBits | (uint32(index) & posIndexMask))
}

func (p position) section() int { return int(uint32(p) >> posIndexBits) }
func (p position) index() int   { return int(uint32(p) & posIndexMask) }
