package armjit

// actionCode enumerates the closed action-opcode set spec.md §4.1 defines.
// Any word whose top 16 bits decode to a value >= actionMax is not an
// action at all: it is a literal Thumb-2 instruction word to emit verbatim
// after endian adjustment.
type actionCode uint16

const (
	ActionStop    actionCode = iota // STOP
	ActionSection                   // SECTION
	ActionEsc                        // ESC
	ActionRelExt                     // REL_EXT
	ActionAlign                      // ALIGN
	ActionRelLG                      // REL_LG
	ActionRelPC                       // REL_PC
	ActionRelAPC                     // REL_APC
	ActionLabelLG                    // LABEL_LG
	ActionLabelPC                    // LABEL_PC
	ActionImm                        // IMM
	ActionImm12                      // IMM12
	ActionImm16                      // IMM16
	ActionImm32                      // IMM32
	ActionImmL                       // IMML
	ActionImmV8                      // IMMV8
	ActionImmShift                   // IMMSHIFT
	ActionVRList                     // VRLIST
	actionMax                        // __MAX: codes at or above this are literal words
)

// Action packs an action code and payload into the 32-bit action word
// format spec.md §6 "Action list format" mandates: opcode << 16 | payload.
type Action uint32

// NewAction builds an action word, for callers assembling an action list
// in Go rather than importing one produced by an external preprocessor.
func NewAction(code actionCode, payload uint16) Action {
	return Action(uint32(code)<<16 | uint32(payload))
}

func (a Action) code() actionCode { return actionCode(uint32(a) >> 16) }
func (a Action) payload() uint32  { return uint32(a) & 0xFFFF }

func bits(v uint32, lo, width uint) uint32 {
	return (v >> lo) & (uint32(1)<<width - 1)
}

// isLiteral reports whether a is a raw instruction word rather than an
// action the interpreter should dispatch on.
func (a Action) isLiteral() bool { return a.code() >= actionMax }

// --- payload field accessors, per spec.md §4.1's bit-field summary ---

// Label/section index fields (REL_LG, LABEL_LG, REL_PC, LABEL_PC, SECTION).
func (a Action) labelIndex() int   { return int(bits(a.payload(), 0, 11)) }
func (a Action) sectionIndex() int { return int(bits(a.payload(), 0, 8)) }
func (a Action) alignMask() uint32 { return bits(a.payload(), 0, 8) }

// IMM-family fields: shift-into-instruction (0..4), bit-width (5..9), input
// scale (10..14), signedness (bit 15).
func (a Action) immShift() uint   { return uint(bits(a.payload(), 0, 5)) }
func (a Action) immBits() uint    { return uint(bits(a.payload(), 5, 5)) }
func (a Action) immScale() uint   { return uint(bits(a.payload(), 10, 5)) }
func (a Action) immSigned() bool  { return bits(a.payload(), 15, 1) != 0 }

// REL_* flags: branch (bit 15), wide-branch / VFP-load (bit 14), ADR
// (bit 13).
func (a Action) relBranch() bool { return bits(a.payload(), 15, 1) != 0 }
func (a Action) relWide() bool   { return bits(a.payload(), 14, 1) != 0 }
func (a Action) relADR() bool    { return bits(a.payload(), 13, 1) != 0 }

// VRLIST: bit 0 of payload selects single- vs double-precision register
// list encoding.
func (a Action) vfpDouble() bool { return bits(a.payload(), 0, 1) != 0 }

// REL_EXT: payload holds the extern index (0..14) and a branch-vs-data
// flag (bit 15).
func (a Action) externIndex() int   { return int(bits(a.payload(), 0, 15)) }
func (a Action) externIsData() bool { return bits(a.payload(), 15, 1) != 0 }
