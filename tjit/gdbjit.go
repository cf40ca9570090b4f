package tjit

import (
	"sync"

	"github.com/google/uuid"
)

// gdbAction mirrors the reference implementation's three-state
// jit_actions_t: the debugger only ever needs to know "nothing
// changed", "something was added", or "something was removed" since
// its last stop at the registration breakpoint.
type gdbAction int

const (
	gdbNoAction gdbAction = iota
	gdbRegister
	gdbUnregister
)

// gdbJITEntry is one node of the doubly-linked list a debugger walks
// from __jit_debug_descriptor.first_entry. Symfile holds the bytes
// passed to register (finish passes the fragment's MachineCode);
// SymbolName exists purely so two entries
// registered in the same process tick are distinguishable, since Go
// gives no stable address to key on the way the reference
// implementation keys on struct gdb_jit_entry*.
type gdbJITEntry struct {
	prev, next *gdbJITEntry
	symbolName string
	symfile    []byte
}

// gdbJITDescriptor is the process-wide, well-known debugger
// breakpoint target (spec §4.F: "a well-known global descriptor").
// A real debugger integration would export this under a fixed symbol
// name and break on jitDebugRegisterCode; this core only
// maintains the data structure and the action flag a debugger plugin
// would read.
type gdbJITDescriptor struct {
	mu             sync.Mutex
	version        uint32
	actionFlag     gdbAction
	relevantEntry  *gdbJITEntry
	firstEntry     *gdbJITEntry
}

func newGDBJITDescriptor() *gdbJITDescriptor {
	return &gdbJITDescriptor{version: 1, actionFlag: gdbNoAction}
}

//go:noinline
func jitDebugRegisterCode() {
	// Intentionally empty: a debugger sets a breakpoint on this
	// function's address and inspects gdbJITDescriptor when it's hit.
}

// register adds a new GDB-JIT entry for a freshly compiled fragment's
// symfile and fires the registration breakpoint (spec §4.F /
// SPEC_FULL §10.6).
func (d *gdbJITDescriptor) register(symfile []byte) *gdbJITEntry {
	entry := &gdbJITEntry{symbolName: uuid.NewString(), symfile: symfile}

	d.mu.Lock()
	entry.next = d.firstEntry
	if entry.next != nil {
		entry.next.prev = entry
	}
	d.firstEntry = entry
	d.relevantEntry = entry
	d.actionFlag = gdbRegister
	d.mu.Unlock()

	jitDebugRegisterCode()
	return entry
}

// unregister unlinks entry and fires the unregistration breakpoint.
func (d *gdbJITDescriptor) unregister(entry *gdbJITEntry) {
	d.mu.Lock()
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		d.firstEntry = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}
	d.relevantEntry = entry
	d.actionFlag = gdbUnregister
	d.mu.Unlock()

	jitDebugRegisterCode()
}

// entries returns every currently registered entry, oldest-registered
// last, for inspection/testing.
func (d *gdbJITDescriptor) entries() []*gdbJITEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*gdbJITEntry
	for e := d.firstEntry; e != nil; e = e.next {
		out = append(out, e)
	}
	return out
}

// shutdown unregisters every remaining entry. The reference
// implementation installs this via atexit(); Go has no atexit
// equivalent, so the host must call Controller.Shutdown explicitly
// before process exit (SPEC_FULL §4.F).
func (d *gdbJITDescriptor) shutdown() {
	d.mu.Lock()
	entries := make([]*gdbJITEntry, 0)
	for e := d.firstEntry; e != nil; e = e.next {
		entries = append(entries, e)
	}
	d.mu.Unlock()

	for _, e := range entries {
		d.unregister(e)
	}
}
