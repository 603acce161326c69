package armjit

// externalFlag tags a REL_LG/REL_PC buffer cell, once Link has collapsed it,
// as "resolve via the extern callback" rather than "this is a position."
// Reserving position.go's bit 31 for this purpose is what caps section
// count at 128 instead of 256; see position.go.
const externalFlag = uint32(1) << 31

func externalMarker(globalIndex int) uint32 {
	return externalFlag | uint32(globalIndex)
}

func isExternalMarker(v uint32) bool    { return v&externalFlag != 0 }
func externalMarkerIndex(v uint32) int  { return int(v &^ externalFlag) }

// Link is the link pass, spec.md §4.4. It walks every section's buffer in
// lockstep with the action list, shrinking ALIGN padding to the minimum
// needed and correcting every LABEL_*'s recorded byte offset, then
// collapses any still-undefined global label's forward references to an
// external marker. It fails with UNDEF_LG/UNDEF_PC if a local or PC label
// was referenced but never defined.
func (s *State) Link() (int, error) {
	if !s.status.OK() {
		return 0, s.status
	}
	s.sectionBase = make([]int, len(s.sections))
	total := 0
	for i := range s.sections {
		s.sectionBase[i] = total
		n, st := s.linkSection(i)
		if !st.OK() {
			return 0, st
		}
		total += n
	}
	if st := s.collapseGlobals(); !st.OK() {
		return 0, st
	}
	if st := s.checkLocalsResolved(); !st.OK() {
		return 0, st
	}
	if st := s.checkPCResolved(); !st.OK() {
		return 0, st
	}
	s.codeSize = total
	s.linked = true
	return total, nil
}

// linkSection re-walks one section's buffer in lockstep with the action
// list, exactly as Put did, recomputing byte offsets as it goes.
func (s *State) linkSection(sectionIdx int) (int, Status) {
	sec := &s.sections[sectionIdx]
	offset := 0
	bufIdx := 0
	for bufIdx < sec.pos {
		start := int(sec.buf[bufIdx])
		bufIdx++
		p := start
		for {
			a := Action(s.actions[p])
			p++
			if a.isLiteral() {
				offset += 4
				continue
			}
			switch a.code() {
			case ActionStop, ActionSection:
				goto nextGroup
			case ActionEsc:
				p++
				offset += 4
			case ActionAlign:
				align := int(a.alignMask())
				pad := 0
				if align > 1 {
					if rem := offset % align; rem != 0 {
						pad = align - rem
					}
				}
				sec.buf[bufIdx] = uint32(pad)
				bufIdx++
				offset += pad
			case ActionRelExt:
				// no buffer slot
			case ActionRelLG, ActionRelPC, ActionRelAPC:
				bufIdx++
			case ActionLabelLG, ActionLabelPC:
				sec.buf[bufIdx] = uint32(offset)
				bufIdx++
			case ActionImm, ActionImm12, ActionImm16, ActionImm32,
				ActionImmL, ActionImmV8, ActionImmShift:
				bufIdx++
			case ActionVRList:
				bufIdx += 2
			}
		}
	nextGroup:
	}
	return offset, statusOK
}

// collapseGlobals threads through every still-undefined global label's
// pending sites, replacing each with an external marker, per spec.md §4.4.
func (s *State) collapseGlobals() Status {
	for idx := localLabelCount; idx < len(s.labels.slots); idx++ {
		slot := &s.labels.slots[idx]
		if slot.defined || len(slot.sites) == 0 {
			continue
		}
		marker := externalMarker(idx - localLabelCount)
		for _, site := range slot.sites {
			s.sections[site.buf.section()].buf[site.buf.index()] = marker
		}
		slot.sites = nil
	}
	return statusOK
}

// checkLocalsResolved fails with UNDEF_LG if any local label (index
// 0..localLabelCount-1) was referenced but never defined.
func (s *State) checkLocalsResolved() Status {
	for idx := 0; idx < localLabelCount && idx < len(s.labels.slots); idx++ {
		slot := &s.labels.slots[idx]
		if !slot.defined && len(slot.sites) > 0 {
			return s.fail(StatusUndefLG, slot.sites[0].actionIdx)
		}
	}
	return statusOK
}

// checkPCResolved fails with UNDEF_PC if any PC label was referenced but
// never defined, per spec.md §4.4: "If any PC label is still undefined...
// link fails with UNDEF_PC | pc_index."
func (s *State) checkPCResolved() Status {
	for idx := range s.labels.pc {
		slot := &s.labels.pc[idx]
		if !slot.defined && len(slot.sites) > 0 {
			return s.fail(StatusUndefPC, slot.sites[0].actionIdx)
		}
	}
	return statusOK
}
