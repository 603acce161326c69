package armjit

import "fmt"

// TraceEntry is one action in a DisassembleTrace walk.
type TraceEntry struct {
	Section int
	Offset  int
	Action  string
	Operand string
}

// DisassembleTrace walks a linked section's buffer action-by-action,
// reporting each action's name, finalized byte offset, and (for IMM-family
// actions) its decoded operand. It never re-encodes anything and is purely
// additive debug tooling (SPEC_FULL.md §11): the engine itself never
// produces textual output, per spec.md §6.
func (s *State) DisassembleTrace(sectionIdx int) ([]TraceEntry, error) {
	if !s.linked {
		return nil, s.fail(StatusPhase, 0)
	}
	if sectionIdx < 0 || sectionIdx >= len(s.sections) {
		return nil, fmt.Errorf("armjit: section %d out of range", sectionIdx)
	}
	sec := &s.sections[sectionIdx]
	var entries []TraceEntry
	offset := 0
	bufIdx := 0
	for bufIdx < sec.pos {
		start := int(sec.buf[bufIdx])
		bufIdx++
		p := start
	group:
		for {
			a := Action(s.actions[p])
			p++
			if a.isLiteral() {
				entries = append(entries, TraceEntry{sectionIdx, offset, "WORD", fmt.Sprintf("0x%08x", uint32(a))})
				offset += 4
				continue
			}
			switch a.code() {
			case ActionStop, ActionSection:
				break group
			case ActionEsc:
				entries = append(entries, TraceEntry{sectionIdx, offset, "WORD", fmt.Sprintf("0x%08x", s.actions[p])})
				p++
				offset += 4
			case ActionAlign:
				pad := int(sec.buf[bufIdx])
				bufIdx++
				entries = append(entries, TraceEntry{sectionIdx, offset, "ALIGN", fmt.Sprintf("%d bytes", pad)})
				offset += pad
			case ActionRelExt:
				entries = append(entries, TraceEntry{sectionIdx, offset, "REL_EXT", fmt.Sprintf("extern#%d data=%v", a.externIndex(), a.externIsData())})
			case ActionRelLG, ActionRelPC:
				name := "REL_LG"
				if a.code() == ActionRelPC {
					name = "REL_PC"
				}
				bufIdx++
				entries = append(entries, TraceEntry{sectionIdx, offset, name, fmt.Sprintf("label#%d", a.labelIndex())})
			case ActionRelAPC:
				v := sec.buf[bufIdx]
				bufIdx++
				entries = append(entries, TraceEntry{sectionIdx, offset, "REL_APC", fmt.Sprintf("0x%08x", v)})
			case ActionLabelLG, ActionLabelPC:
				name := "LABEL_LG"
				if a.code() == ActionLabelPC {
					name = "LABEL_PC"
				}
				bufIdx++
				entries = append(entries, TraceEntry{sectionIdx, offset, name, fmt.Sprintf("label#%d", a.labelIndex())})
			case ActionImm, ActionImm12, ActionImm16, ActionImm32, ActionImmL, ActionImmV8, ActionImmShift:
				v := sec.buf[bufIdx]
				bufIdx++
				entries = append(entries, TraceEntry{sectionIdx, offset, immActionName(a.code()), fmt.Sprintf("%d", int32(v))})
			case ActionVRList:
				ra, rb := sec.buf[bufIdx], sec.buf[bufIdx+1]
				bufIdx += 2
				entries = append(entries, TraceEntry{sectionIdx, offset, "VRLIST", fmt.Sprintf("r%d..r%d", ra, rb)})
			}
		}
	}
	return entries, nil
}

func immActionName(c actionCode) string {
	switch c {
	case ActionImm:
		return "IMM"
	case ActionImm12:
		return "IMM12"
	case ActionImm16:
		return "IMM16"
	case ActionImm32:
		return "IMM32"
	case ActionImmL:
		return "IMML"
	case ActionImmV8:
		return "IMMV8"
	case ActionImmShift:
		return "IMMSHIFT"
	default:
		return "IMM?"
	}
}
