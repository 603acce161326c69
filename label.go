package armjit

// localLabelCount is the number of slots spec.md §4.2 reserves for local
// labels ("setupglobal... biases the globals pointer by -10 (reserving
// slots 0..9 for local labels)"). A local/global label index below this
// count names a local label; at or above it names a global, with the
// host-visible globals-array index equal to (engine index - localLabelCount).
const localLabelCount = 10

// labelSlot is the tagged value spec.md §9's design notes recommend in
// place of the C implementation's packed-pointer label representation:
// "model... the label slot as a tagged value (Defined(pos) / Chain(head) /
// Unused). No pointer graph is needed."
//
// sites holds the buffer positions of every REL_LG/REL_PC reference
// still waiting on this label's definition; it plays the role the chain
// threaded through buffer entries plays in the original design, without the
// sentinel-value ambiguity that design calls out as a hazard (zero as both
// "unused" and "a valid position").
type labelSlot struct {
	defined bool
	pos     position
	sites   []pendingSite
}

// pendingSite is one not-yet-resolved reference to a label: the buffer cell
// to patch once the label is defined (or collapsed to an external marker),
// and the originating action's index, kept only so an UNDEF_LG/UNDEF_PC
// Status raised at Link can name the offending action per spec.md §6.
type pendingSite struct {
	buf       position
	actionIdx int
}

// labelTable holds the local/global label slots and the separate, growable
// PC label table spec.md §3/§4.2 describe.
type labelTable struct {
	slots []labelSlot // 0..9 local, 10.. global
	pc    []labelSlot
}

func newLabelTable() *labelTable {
	return &labelTable{slots: make([]labelSlot, localLabelCount)}
}

// growGlobals enlarges the local/global slot table to localLabelCount+capacity
// slots, per spec.md §4.2 setupglobal.
func (t *labelTable) growGlobals(capacity int) {
	need := localLabelCount + capacity
	if need <= len(t.slots) {
		return
	}
	grown := make([]labelSlot, need)
	copy(grown, t.slots)
	t.slots = grown
}

// growPC enlarges the PC label table to at least n slots, per spec.md §4.2
// growpc: "newly added slots are zeroed."
func (t *labelTable) growPC(n int) {
	if n <= len(t.pc) {
		return
	}
	grown := make([]labelSlot, n)
	copy(grown, t.pc)
	t.pc = grown
}

// reset zeroes every slot, per spec.md §4.2 setup: "zeroes label tables."
func (t *labelTable) reset() {
	for i := range t.slots {
		t.slots[i] = labelSlot{}
	}
	for i := range t.pc {
		t.pc[i] = labelSlot{}
	}
}

func (t *labelTable) isGlobal(idx int) bool { return idx >= localLabelCount }
