package armjit

import "encoding/binary"

// nopWide is the Thumb-2 NOP.W encoding ALIGN pads with once Link has
// shrunk a gap to a multiple of 4 bytes less than an instruction; any odd
// half-word remainder is a preprocessor bug, not something Encode repairs.
const nopWide = uint32(0xF3AF8000)

// Encode is the encode pass, spec.md §4.5/§4.6. It must run after a
// successful Link. It replays every section's buffer in lockstep with the
// action list exactly as Put and Link did, this time producing real
// instruction words: literal words are copied from the action list
// verbatim, ALIGN gaps are padded with NOP.W, and every other action
// patches the most recently emitted literal word (cp[-1], in spec.md's
// terms). The half-word swap spec.md §4.6 requires for little-endian
// hosts is applied to every word exactly once, right before Encode
// returns — deferred in effect the same way spec.md's cp[-1] mutation is,
// since nothing after that point treats a word as anything but finished
// bytes.
func (s *State) Encode(dst []byte) (int, error) {
	if !s.linked {
		return 0, s.fail(StatusPhase, 0)
	}
	if len(dst) < s.codeSize {
		return 0, s.fail(StatusNoMem, 0)
	}
	words := make([]uint32, s.codeSize/4)
	for i := range s.sections {
		cursor, st := s.encodeSection(i, words)
		if !st.OK() {
			return 0, st
		}
		want := len(words)
		if i+1 < len(s.sections) {
			want = s.sectionBase[i+1] / 4
		}
		if cursor != want {
			return 0, s.fail(StatusPhase, 0)
		}
	}
	if s.opt.Endian == LittleEndian {
		for i, w := range words {
			words[i] = swapHalf(w)
		}
	}
	var order binary.ByteOrder = binary.LittleEndian
	if s.opt.Endian == BigEndian {
		order = binary.BigEndian
	}
	for i, w := range words {
		order.PutUint32(dst[i*4:], w)
	}
	return s.codeSize, nil
}

// encodeSection walks one section's buffer in lockstep with the action
// list, as linkSection did, and returns the word cursor it finished at
// alongside its status — Encode compares that cursor against the section's
// expected word count (spec.md §4.5 property 1: the encode pass must
// consume exactly the words Link accounted for).
func (s *State) encodeSection(sectionIdx int, words []uint32) (int, Status) {
	sec := &s.sections[sectionIdx]
	base := s.sectionBase[sectionIdx] / 4
	cursor := base
	bufIdx := 0
	for bufIdx < sec.pos {
		start := int(sec.buf[bufIdx])
		bufIdx++
		p := start
	group:
		for {
			a := Action(s.actions[p])
			actionIdx := p
			p++
			if a.isLiteral() {
				words[cursor] = uint32(a)
				cursor++
				continue
			}
			switch a.code() {
			case ActionStop, ActionSection:
				break group
			case ActionEsc:
				words[cursor] = s.actions[p]
				p++
				cursor++
			case ActionAlign:
				pad := int(sec.buf[bufIdx])
				bufIdx++
				for n := pad / 4; n > 0; n-- {
					words[cursor] = nopWide
					cursor++
				}
			case ActionRelExt:
				n, st := s.resolveExtern(a, (cursor-1)*4, actionIdx)
				if !st.OK() {
					return cursor, st
				}
				if st := s.patchRelExt(a, words, cursor, n, actionIdx); !st.OK() {
					return cursor, st
				}
			case ActionRelLG:
				n, st := s.resolveRelSite(a, sec.buf[bufIdx], (cursor-1)*4, actionIdx)
				bufIdx++
				if !st.OK() {
					return cursor, st
				}
				if st := s.patchRel(a, words, cursor, n, actionIdx); !st.OK() {
					return cursor, st
				}
			case ActionRelPC:
				n, st := s.resolveRelSite(a, sec.buf[bufIdx], (cursor-1)*4, actionIdx)
				bufIdx++
				if !st.OK() {
					return cursor, st
				}
				if st := s.patchRel(a, words, cursor, n, actionIdx); !st.OK() {
					return cursor, st
				}
			case ActionRelAPC:
				v := sec.buf[bufIdx]
				bufIdx++
				words[cursor-1] |= v
			case ActionLabelLG:
				idx := a.labelIndex()
				bufIdx++
				if s.labels.isGlobal(idx) {
					s.globals[idx-localLabelCount] = uintptr(cursor * 4)
				}
			case ActionLabelPC:
				// The PC label's final offset already lives in its buffer
				// cell from Link; nothing further to write here.
				bufIdx++
			case ActionImm:
				v := int32(sec.buf[bufIdx])
				bufIdx++
				words[cursor-1] |= packIMM(a, v)
			case ActionImm12:
				v := uint32(sec.buf[bufIdx])
				bufIdx++
				ctrl, ok := encodeImm12(v)
				if !ok {
					return cursor, s.fail(StatusRangeImm, actionIdx)
				}
				words[cursor-1] |= packImm12(ctrl)
			case ActionImm16:
				v := sec.buf[bufIdx]
				bufIdx++
				words[cursor-1] |= packImm16(v)
			case ActionImm32:
				v := sec.buf[bufIdx]
				bufIdx++
				words[cursor-1] |= v
			case ActionImmL:
				v := int32(sec.buf[bufIdx])
				bufIdx++
				patch, ok := packIMML(v)
				if !ok {
					return cursor, s.fail(StatusRangeImm, actionIdx)
				}
				words[cursor-1] |= patch
			case ActionImmV8:
				v := int32(sec.buf[bufIdx])
				bufIdx++
				patch, ok := packIMMV8(v)
				if !ok {
					return cursor, s.fail(StatusRangeImm, actionIdx)
				}
				words[cursor-1] |= patch
			case ActionImmShift:
				shift := sec.buf[bufIdx]
				bufIdx++
				words[cursor-1] |= a.payload() << (shift & 31)
			case ActionVRList:
				ra := sec.buf[bufIdx]
				rb := sec.buf[bufIdx+1]
				bufIdx += 2
				words[cursor-1] |= packVRList(a.vfpDouble(), ra, rb)
			}
		}
	}
	return cursor, statusOK
}

// resolveRelSite turns a REL_LG/REL_PC site's patched buffer cell — either
// a resolved position or a link-collapsed external marker — into the byte
// displacement from the instruction being patched (instrByteOffset) to
// the label, honoring the ARM PC-relative +4 pipeline bias.
func (s *State) resolveRelSite(a Action, raw uint32, instrByteOffset int, actionIdx int) (int32, Status) {
	if isExternalMarker(raw) {
		if s.opt.Extern == nil {
			return 0, s.fail(StatusMatch, actionIdx)
		}
		n, err := s.opt.Extern.Resolve(instrByteOffset, externalMarkerIndex(raw), false)
		if err != nil {
			return 0, s.fail(StatusMatch, actionIdx)
		}
		return n, statusOK
	}
	target := s.byteOffsetOf(position(raw))
	return int32(target - (instrByteOffset + 4)), statusOK
}

// resolveExtern asks the host's ExternResolver for the displacement (or
// raw data value, per the action's is-data flag) to patch in for a REL_EXT
// site or a link-collapsed global, per spec.md §6.
func (s *State) resolveExtern(a Action, instrByteOffset int, actionIdx int) (int32, Status) {
	if s.opt.Extern == nil {
		return 0, s.fail(StatusMatch, actionIdx)
	}
	n, err := s.opt.Extern.Resolve(instrByteOffset, a.externIndex(), a.externIsData())
	if err != nil {
		return 0, s.fail(StatusMatch, actionIdx)
	}
	return n, statusOK
}

// patchRel packs a resolved displacement per the action's branch/ADR/VFP
// flags and ORs it into the most recently emitted literal word, per
// spec.md §4.5.
func (s *State) patchRel(a Action, words []uint32, cursor int, n int32, actionIdx int) Status {
	var patch uint32
	var ok bool
	switch {
	case a.relBranch():
		patch, ok = packBranch(a.relWide(), n)
	case a.relADR():
		patch, ok = packADR(n)
	case a.relWide():
		patch, ok = packIMMV8(n)
	default:
		patch, ok = packIMML(n)
	}
	if !ok {
		return s.fail(StatusRangeRel, actionIdx)
	}
	words[cursor-1] |= patch
	return statusOK
}

// patchRelExt patches a REL_EXT site. REL_EXT's payload packs externIndex
// (bits 0..14) and externIsData (bit 15) — not the relBranch/relWide/relADR
// bits patchRel reads, which belong only to REL_LG/REL_PC's payload shape
// (action.go). Keying on those bits here would misroute an extern index
// with bit 13 or 14 set into packADR/packIMMV8. Per spec.md §4.1/§6's
// "branch-vs-data flag": a data extern's resolved value is written
// unmodified, exactly as REL_APC does; a branch extern is patched as a
// wide B.W/BL.W displacement, the shape every external call site uses.
func (s *State) patchRelExt(a Action, words []uint32, cursor int, n int32, actionIdx int) Status {
	if a.externIsData() {
		words[cursor-1] |= uint32(n)
		return statusOK
	}
	patch, ok := packBranchWide(n)
	if !ok {
		return s.fail(StatusRangeRel, actionIdx)
	}
	words[cursor-1] |= patch
	return statusOK
}
