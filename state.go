package armjit

import "fmt"

// Endianness selects how 32-bit action words are byte-ordered on store,
// per spec.md §4.6.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Options configures a new State. The zero value is usable: it yields a
// little-endian engine with the default allocator and 16 sections.
type Options struct {
	// MaxSections bounds how many sections a SECTION action may switch to.
	// Defaults to 16 if zero. Capped at 128 — see position.go.
	MaxSections int
	// Endian selects the host byte order the encode pass targets. Defaults
	// to LittleEndian, the overwhelmingly common case for Thumb-2 JIT
	// hosts.
	Endian Endianness
	// Allocator is the host-injected growth hook (spec.md §6). Defaults to
	// a geometric-growth slice allocator.
	Allocator Allocator
	// Extern resolves REL_EXT actions and link-collapsed undefined globals
	// during Encode. May be nil if the action list never uses REL_EXT and
	// every global label is defined before Link.
	Extern ExternResolver
}

// State is the per-assembly-run handle spec.md §3 describes. It owns every
// section buffer and label table; the action list and globals array are
// host-owned and merely referenced.
type State struct {
	opt      Options
	sections []section
	active   int
	labels   *labelTable
	// globals is the host-owned globals array (spec.md §4.2 setupglobal);
	// Encode writes each defined global label's byte offset from the start
	// of the encoded buffer into globals[index]. The host adds its own
	// buffer's base address to get a runtime pointer.
	globals []uintptr
	actions  []uint32
	status   Status
	codeSize int
	linked   bool

	// sectionBase[i] is the cumulative byte offset at which section i's
	// code begins in the final image; populated by Link.
	sectionBase []int
}

// New creates a State ready for Setup, per spec.md §4.2 init.
func New(opt Options) (*State, error) {
	if opt.MaxSections <= 0 {
		opt.MaxSections = 16
	}
	if opt.MaxSections > maxSections {
		return nil, fmt.Errorf("armjit: MaxSections %d exceeds the supported maximum %d", opt.MaxSections, maxSections)
	}
	if opt.Allocator == nil {
		opt.Allocator = defaultAllocator{}
	}
	return &State{
		opt:      opt,
		sections: make([]section, opt.MaxSections),
		labels:   newLabelTable(),
	}, nil
}

// Close releases the state's section buffers. The Go runtime reclaims the
// memory; Close exists so call sites mirror spec.md §4.2's init/free
// symmetry and so a State cannot be accidentally reused after disposal.
func (s *State) Close() {
	s.sections = nil
	s.labels = nil
	s.globals = nil
	s.actions = nil
}

// SetupGlobals installs the host-owned globals array and grows the
// local/global label table to localLabelCount+len(globals) slots, per
// spec.md §4.2 setupglobal. The globals slice is written into by Encode for
// every LABEL_LG whose index names a global.
func (s *State) SetupGlobals(globals []uintptr) {
	s.globals = globals
	s.labels.growGlobals(len(globals))
}

// GrowPC enlarges the PC label table to at least n slots, per spec.md §4.2
// growpc.
func (s *State) GrowPC(n int) {
	s.labels.growPC(n)
}

// Setup installs the action list, resets status to OK, zeroes the label
// tables, and resets every section to its initial (empty) state, per
// spec.md §4.2.
func (s *State) Setup(actions []uint32) {
	s.actions = actions
	s.status = statusOK
	s.linked = false
	s.codeSize = 0
	s.labels.reset()
	for i := range s.sections {
		s.sections[i].reset()
	}
	s.active = 0
}

// Status returns the state's current sticky status.
func (s *State) Status() Status { return s.status }

func (s *State) fail(class StatusClass, actionIndex int) Status {
	st := newStatus(class, actionIndex)
	s.status = st
	return st
}

func (s *State) activeSection() *section { return &s.sections[s.active] }

// CheckStep verifies that local labels 1..9 are currently undefined and
// that the active section equals expected, per spec.md §4.7 checkstep. It
// is optional diagnostic tooling a host can call between logical
// "steps" (e.g. between compiling two functions).
func (s *State) CheckStep(expectedSection int) error {
	for i := 1; i < localLabelCount; i++ {
		if s.labels.slots[i].defined || len(s.labels.slots[i].sites) > 0 {
			return fmt.Errorf("armjit: local label %d still in use at step boundary", i)
		}
	}
	if s.active != expectedSection {
		return fmt.Errorf("armjit: active section %d does not match expected %d", s.active, expectedSection)
	}
	return nil
}

// Checkpoint is a supplemented convenience (SPEC_FULL.md §11): a snapshot
// of the local-label definedness CheckStep inspects, for hosts that want to
// assert "nothing new leaked" between two points without hardcoding an
// expected section.
type Checkpoint struct {
	definedLocals [localLabelCount]bool
	section       int
}

func (s *State) Checkpoint() Checkpoint {
	var cp Checkpoint
	for i := 0; i < localLabelCount; i++ {
		cp.definedLocals[i] = s.labels.slots[i].defined
	}
	cp.section = s.active
	return cp
}

// Restore reports whether local-label definedness and the active section
// match a previously taken Checkpoint.
func (s *State) Restore(cp Checkpoint) bool {
	if s.active != cp.section {
		return false
	}
	for i := 0; i < localLabelCount; i++ {
		if s.labels.slots[i].defined != cp.definedLocals[i] {
			return false
		}
	}
	return true
}

// GetPCLabel returns the label's link-time byte offset (> -2), -1 if
// referenced but undefined, or -2 if pc is out of range, per spec.md §4.7.
// Only meaningful after Link: a label's buffer cell holds its final,
// ALIGN-corrected intra-section byte offset once Link has walked it.
func (s *State) GetPCLabel(pc int) int {
	if pc < 0 || pc >= len(s.labels.pc) {
		return -2
	}
	slot := &s.labels.pc[pc]
	if !slot.defined {
		return -1
	}
	if !s.linked {
		return -1
	}
	return s.byteOffsetOf(slot.pos)
}

// byteOffsetOf reads a label's finalized intra-section byte offset (stored
// into its defining LABEL_* action's buffer cell by Link) and adds the
// section's base offset in the final image.
func (s *State) byteOffsetOf(p position) int {
	intra := int(s.sections[p.section()].buf[p.index()])
	return s.sectionBase[p.section()] + intra
}
