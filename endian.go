package armjit

// swapHalf exchanges a 32-bit word's upper and lower 16 bits. Thumb-2 wide
// instructions are two half-words whose natural little-endian byte order
// puts the second half-word first; every action word this engine builds
// keeps the half-words in bitstream order (first half-word high), so
// Encode applies this swap exactly once, right before the word is
// considered finished, per spec.md §4.6.
func swapHalf(w uint32) uint32 { return w<<16 | w>>16 }
