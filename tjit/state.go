package tjit

import (
	"sync"

	"github.com/schemetrace/tjit/hostabi"
)

// Mode is the recorder's top-level state (spec §3: mode ∈
// {INTERPRET, RECORD}).
type Mode int

const (
	ModeInterpret Mode = iota
	ModeRecord
)

func (m Mode) String() string {
	if m == ModeRecord {
		return "RECORD"
	}
	return "INTERPRET"
}

// RecorderState is the per-thread recorder described in spec §3/§4.B.
// One instance is lazily allocated per hostabi.ThreadID and lives for
// the life of that thread; it is never shared across threads.
type RecorderState struct {
	Mode      Mode
	TraceType hostabi.TraceType

	LoopStart hostabi.IP
	LoopEnd   hostabi.IP

	// Bytecode is the unboxed recording buffer, capacity maxRecord
	// words; BCIdx is the next free write index.
	Bytecode []uint32
	BCIdx    uint32

	Steps []hostabi.TraceStep

	// ParentFragmentID and ParentExitID are nonzero only while
	// recording a side trace (invariant 5).
	ParentFragmentID int
	ParentExitID     int

	NUnrolled int

	// Return-channel fields. Nothing in this package writes or reads
	// them: native code publishes a bailout through VMView.SetBailout,
	// and CallNative reads it back through VMView.Bailout.
	RetExitID   int
	RetFragment hostabi.Fragment
	RetOrigin   hostabi.Fragment
}

func newRecorderState(maxRecord uint32) *RecorderState {
	return &RecorderState{
		Mode:     ModeInterpret,
		Bytecode: make([]uint32, 0, maxRecord),
	}
}

// reset implements stop_recording: return to INTERPRET and clear
// every field scoped to a single recording session (spec §4.B).
func (s *RecorderState) reset() {
	s.Mode = ModeInterpret
	s.Bytecode = s.Bytecode[:0]
	s.BCIdx = 0
	s.Steps = nil
	s.ParentFragmentID = 0
	s.ParentExitID = 0
	s.NUnrolled = 0
}

// start implements start_recording: arm RECORD mode with the planned
// cycle endpoints, leaving the buffers empty.
func (s *RecorderState) start(loopStart, loopEnd hostabi.IP, ttype hostabi.TraceType) {
	s.Mode = ModeRecord
	s.TraceType = ttype
	s.LoopStart = loopStart
	s.LoopEnd = loopEnd
	s.Bytecode = s.Bytecode[:0]
	s.BCIdx = 0
	s.Steps = nil
}

// recorderStore is the thread-local registry of recorder states: a
// lazily-populated map keyed by the host-supplied ThreadID, standing
// in for the native implementation's per-thread fluid variable since
// Go has no addressable thread-local storage (spec design note,
// §9 DESIGN.md).
type recorderStore struct {
	states sync.Map // hostabi.ThreadID -> *RecorderState
}

func newRecorderStore() *recorderStore {
	return &recorderStore{}
}

// acquire returns the installed RecorderState for th, allocating one
// on first use (spec §4.B "Acquire").
func (r *recorderStore) acquire(th hostabi.ThreadID, maxRecord uint32) *RecorderState {
	if s, ok := r.states.Load(th); ok {
		return s.(*RecorderState)
	}
	s, _ := r.states.LoadOrStore(th, newRecorderState(maxRecord))
	return s.(*RecorderState)
}
