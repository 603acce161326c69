package armjit

// section is one output stream of 32-bit words, matching spec.md §3's
// Section entity: a growable buffer of "biased entries" (here: a plain
// Go slice indexed directly, per the design-note §9 recommendation to
// store the true base and decode on access rather than bias a raw
// pointer), the current write position, and the cumulative byte offset
// used for ALIGN and link-time size accounting.
type section struct {
	buf    []uint32
	pos    int // next write index; also the section's current word count
	offset int // cumulative byte offset of instructions emitted so far
}

func (s *section) reset() {
	s.buf = s.buf[:0]
	s.pos = 0
	s.offset = 0
}

// reserve ensures the buffer has room for n more words starting at pos,
// growing via alloc if necessary, matching spec.md §4.3's "grows the
// buffer if pos >= epos - maxsecpos" check-then-grow-before-write idiom.
func (s *section) reserve(alloc Allocator, n int) {
	need := s.pos + n
	if need > cap(s.buf) {
		s.buf = alloc.Grow(s.buf, need)
	}
	if need > len(s.buf) {
		s.buf = s.buf[:need]
	}
}

// appendOne reserves and writes a single word, returning its position.
func (s *section) appendOne(alloc Allocator, idx int, v uint32) position {
	s.reserve(alloc, 1)
	site := makePosition(idx, s.pos)
	s.buf[s.pos] = v
	s.pos++
	return site
}

// appendTwo reserves and writes two consecutive words (VRLIST), returning
// the position of the first.
func (s *section) appendTwo(alloc Allocator, idx int, a, b uint32) position {
	s.reserve(alloc, 2)
	site := makePosition(idx, s.pos)
	s.buf[s.pos] = a
	s.buf[s.pos+1] = b
	s.pos += 2
	return site
}
