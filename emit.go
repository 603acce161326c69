package armjit

import "math"

// Put is the emit pass, spec.md §4.3: it reads the action list beginning
// at start, records the start index itself as the first buffer word for
// this instruction group (so Link and Encode can re-enter the action list
// at the same point), then walks actions consuming args as the opcode
// table in spec.md §4.1 dictates.
//
// Put is a no-op once Status is non-OK, per the sticky-error rule in
// spec.md §7.
func (s *State) Put(start int, args ...int32) Status {
	if !s.status.OK() {
		return s.status
	}
	e := &emitter{s: s, args: args}
	e.run(start)
	return s.status
}

type emitter struct {
	s    *State
	args []int32
	argi int
}

func (e *emitter) nextArg() int32 {
	if e.argi >= len(e.args) {
		// A mismatch between the action list and the args a preprocessor
		// supplied is a programmer/collaborator error, not a user data
		// error: it cannot be expressed as a Status (there is no sensible
		// action index to blame the caller's own call site for), so it
		// panics rather than silently assembling garbage.
		panic("armjit: put() called with too few arguments for its action list")
	}
	v := e.args[e.argi]
	e.argi++
	return v
}

func (e *emitter) run(start int) {
	sec := e.s.activeSection()
	sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(start))
	p := start
	for {
		a := Action(e.s.actions[p])
		actionIdx := p
		p++
		if a.isLiteral() {
			sec.offset += 4
			continue
		}
		switch a.code() {
		case ActionStop:
			return
		case ActionSection:
			idx := a.sectionIndex()
			if idx < 0 || idx >= len(e.s.sections) {
				e.s.fail(StatusRangeSection, actionIdx)
				return
			}
			e.s.active = idx
			return
		case ActionEsc:
			p++ // the next action word is literal data, not an opcode
			sec.offset += 4
		case ActionAlign:
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(sec.offset))
			sec.offset += int(a.alignMask())
		case ActionRelExt:
			// No buffer slot: resolved entirely from payload + callback at
			// encode time (spec.md §4.1 table: REL_EXT buffer slots = 0).
		case ActionRelLG:
			site := sec.appendOne(e.s.opt.Allocator, e.s.active, 0)
			if !e.refLabel(&e.s.labels.slots, a.labelIndex(), site, actionIdx, StatusRangeLG) {
				return
			}
		case ActionRelPC:
			site := sec.appendOne(e.s.opt.Allocator, e.s.active, 0)
			if !e.refLabel(&e.s.labels.pc, a.labelIndex(), site, actionIdx, StatusRangePC) {
				return
			}
		case ActionRelAPC:
			v := e.nextArg()
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionLabelLG:
			e.defLabel(&e.s.labels.slots, a.labelIndex(), e.s.active, sec, actionIdx, StatusRangeLG)
		case ActionLabelPC:
			e.defLabel(&e.s.labels.pc, a.labelIndex(), e.s.active, sec, actionIdx, StatusRangePC)
		case ActionImm:
			v := e.nextArg()
			if !e.s.checkImmRange(a, v, actionIdx) {
				return
			}
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImm12:
			v := e.nextArg()
			if !checkImm12Encodable(uint32(v)) {
				e.s.fail(StatusRangeImm, actionIdx)
				return
			}
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImm16:
			v := e.nextArg()
			if v < 0 || v > 0xFFFF {
				e.s.fail(StatusRangeImm, actionIdx)
				return
			}
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImm32:
			v := e.nextArg()
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImmL:
			v := e.nextArg()
			if v > 0xFFF || v < -0xFFF {
				e.s.fail(StatusRangeImm, actionIdx)
				return
			}
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImmV8:
			v := e.nextArg()
			av := v
			if av < 0 {
				av = -av
			}
			if av%4 != 0 || av > 0xFF*4 {
				e.s.fail(StatusRangeImm, actionIdx)
				return
			}
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionImmShift:
			v := e.nextArg()
			sec.appendOne(e.s.opt.Allocator, e.s.active, uint32(v))
		case ActionVRList:
			ra := e.nextArg()
			rb := e.nextArg()
			if ra < 0 || ra > 30 || rb < 0 || rb > 30 {
				e.s.fail(StatusRangeImm, actionIdx)
				return
			}
			sec.appendTwo(e.s.opt.Allocator, e.s.active, uint32(ra), uint32(rb))
		}
	}
}

// refLabel implements spec.md §4.3's REL_LG/REL_PC description: if the
// label is already defined, the reference resolves immediately; otherwise
// it is recorded as a pending site, resolved when the label is later
// defined (emit.go defLabel) or, for globals left undefined, collapsed to
// an external marker at Link.
func (e *emitter) refLabel(table *[]labelSlot, idx int, site position, actionIdx int, rangeClass StatusClass) bool {
	if idx < 0 || idx >= len(*table) {
		e.s.fail(rangeClass, actionIdx)
		return false
	}
	slot := &(*table)[idx]
	if slot.defined {
		e.s.sections[site.section()].buf[site.index()] = uint32(slot.pos)
	} else {
		slot.sites = append(slot.sites, pendingSite{buf: site, actionIdx: actionIdx})
	}
	return true
}

// defLabel implements spec.md §4.3's LABEL_* description: resolve every
// pending reference to this label, then record its own definition. The
// label's buffer cell records the section's current byte offset (a pass-1
// estimate if any preceding ALIGN hasn't been shrunk yet); Link corrects it.
func (e *emitter) defLabel(table *[]labelSlot, idx int, sectionIdx int, sec *section, actionIdx int, rangeClass StatusClass) {
	if idx < 0 || idx >= len(*table) {
		e.s.fail(rangeClass, actionIdx)
		return
	}
	pos := sec.appendOne(e.s.opt.Allocator, sectionIdx, uint32(sec.offset))
	slot := &(*table)[idx]
	for _, site := range slot.sites {
		e.s.sections[site.buf.section()].buf[site.buf.index()] = uint32(pos)
	}
	slot.sites = nil
	slot.defined = true
	slot.pos = pos
}

// checkImmRange validates the IMM action's scaled value against its
// declared bit-width and signedness, per spec.md §4.3/§4.5.
func (s *State) checkImmRange(a Action, v int32, actionIdx int) bool {
	scale := a.immScale()
	n := v >> scale
	if scale > 0 && (n<<scale) != v {
		s.fail(StatusRangeImm, actionIdx) // not evenly divisible by the declared scale
		return false
	}
	width := a.immBits()
	if width == 0 || width > 31 {
		width = 31
	}
	if a.immSigned() {
		lo := int32(-1) << (width - 1)
		hi := -lo - 1
		if n < lo || n > hi {
			s.fail(StatusRangeImm, actionIdx)
			return false
		}
	} else {
		if n < 0 || uint32(n) > uint32(math.MaxUint32)>>(32-width) {
			s.fail(StatusRangeImm, actionIdx)
			return false
		}
	}
	return true
}
