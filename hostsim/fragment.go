package hostsim

import (
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitvalue"
)

// Fragment is hostsim's stand-in for compiled machine code: instead
// of emitting real instructions, its Entry replays the interpreter's
// own Step over the recording's length, with the controller detached
// so no recording hooks fire reentrantly. That keeps the demo and
// tests honest about the dispatch/bailout/side-trace protocol in
// package tjit without requiring an actual code generator backend.
type Fragment struct {
	id      int
	entryIP hostabi.IP
	nsteps  int
	guard   []*tjitvalue.Value

	parentFragmentID int
	parentExitID     int
	isSide           bool

	downrecP bool
	uprecP   bool
	loopP    bool

	exitCounts map[int]uint32
	numChild   int

	// bailEvery, when nonzero, makes every bailEvery-th call through
	// Entry bail out at exit 0 instead of completing, so tests can
	// drive CallNative's side-trace arming deterministically.
	bailEvery int
	callCount int
}

func (f *Fragment) ID() int              { return f.id }
func (f *Fragment) EntryIP() hostabi.IP  { return f.entryIP }
func (f *Fragment) MachineCode() []byte  { return nil }

func (f *Fragment) TypeCheck(locals []*tjitvalue.Value) bool {
	if len(locals) < len(f.guard) {
		return false
	}
	for i, want := range f.guard {
		if locals[i] == nil || locals[i].Type != want.Type {
			return false
		}
	}
	return true
}

func (f *Fragment) ExitCount(exitID int) uint32      { return f.exitCounts[exitID] }
func (f *Fragment) SetExitCount(exitID int, c uint32) { f.exitCounts[exitID] = c }
func (f *Fragment) NumChildren() int                 { return f.numChild }
func (f *Fragment) IncrementChildren()               { f.numChild++ }
func (f *Fragment) IsDownrec() bool                  { return f.downrecP }
func (f *Fragment) IsUprec() bool                    { return f.uprecP }

func (f *Fragment) Parent() (fragmentID, exitID int, ok bool) {
	return f.parentFragmentID, f.parentExitID, f.isSide
}

// Entry returns the replay closure. It borrows the live interpreter's
// Step method, detaching its controller for the duration so the
// replay never re-enters Merge/Enter.
func (f *Fragment) Entry() hostabi.NativeFn {
	return func(th hostabi.ThreadID, vp hostabi.VMView, regs hostabi.RegisterFile) int {
		interp, ok := vp.(*Interp)
		if !ok {
			return 0
		}

		if f.bailEvery > 0 {
			f.callCount++
			if f.callCount%f.bailEvery == 0 {
				vp.SetBailout(0, f, f)
				return 1
			}
		}

		savedCtl := interp.Ctl
		interp.Ctl = nil
		interp.PC = f.entryIP
		for n := 0; n < f.nsteps && !interp.halted; n++ {
			interp.Step()
		}
		interp.Ctl = savedCtl

		if f.loopP && !interp.halted {
			vp.SetIP(f.entryIP)
		}
		return 0
	}
}
