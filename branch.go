package armjit

// Thumb-2 PC-relative displacement packing, spec.md §4.5's REL_LG/REL_PC/
// REL_APC encode-time description. Two branch shapes exist: the
// conditional Bcc.W 20-bit form (S:J2:J1:imm6:imm11, no inversion, reach
// ±2^20) and the unconditional B.W/BL.W 24-bit form (S:I1:I2:imm10:imm11
// with J1=NOT(S^I1), J2=NOT(S^I2), reach ±2^24). action.go's relWide bit
// selects which shape a REL_LG/REL_PC site uses.

const (
	narrowBranchRange = 1 << 20
	wideBranchRange   = 1 << 24
)

// packBranchNarrow packs a Bcc.W-shaped 20-bit displacement.
func packBranchNarrow(n int32) (uint32, bool) {
	if n&1 != 0 || n <= -narrowBranchRange || n >= narrowBranchRange {
		return 0, false
	}
	u := uint32(n)
	s := (u >> 20) & 1
	imm6 := (u >> 12) & 0x3F
	j1 := (u >> 18) & 1
	j2 := (u >> 19) & 1
	imm11 := (u >> 1) & 0x7FF
	return s<<26 | imm6<<16 | j1<<13 | j2<<11 | imm11, true
}

// packBranchWide packs a B.W/BL.W-shaped 24-bit displacement, with the
// ARM ARM's Jk = NOT(Sk XOR Ik) inversion baked into I1/I2's recovery.
func packBranchWide(n int32) (uint32, bool) {
	if n&1 != 0 || n <= -wideBranchRange || n >= wideBranchRange {
		return 0, false
	}
	u := uint32(n)
	s := (u >> 24) & 1
	i1 := (u >> 23) & 1
	i2 := (u >> 22) & 1
	imm10 := (u >> 12) & 0x3FF
	imm11 := (u >> 1) & 0x7FF
	j1 := (^(s ^ i1)) & 1
	j2 := (^(s ^ i2)) & 1
	return s<<26 | imm10<<16 | j1<<13 | j2<<11 | imm11, true
}

// packBranch dispatches on the REL_LG/REL_PC action's wide flag.
func packBranch(wide bool, n int32) (uint32, bool) {
	if wide {
		return packBranchWide(n)
	}
	return packBranchNarrow(n)
}

const adrSubFlag = uint32(0x00A00000)

// packADR packs an ADR-shaped displacement: a plain (unrotated) 12-bit
// magnitude split the same way packImm12 lays i:imm3:imm8 out, with a
// fixed sub-vs-add opcode bit toggled when n is negative, per spec.md
// §4.5: "encoding the rotation amount split across bit 26... bit 7..."
// read for ADR as the literal-immediate split rather than a search.
func packADR(n int32) (uint32, bool) {
	mag := n
	toggle := uint32(0)
	if mag < 0 {
		mag = -mag
		toggle = adrSubFlag
	}
	if mag > 0xFFF {
		return 0, false
	}
	return toggle | packImm12(uint32(mag)), true
}
