package hostsim

import (
	"github.com/schemetrace/tjit/tjit"
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitvalue"
)

// callFrame is one activation record: a return address, a dynamic
// link delta (here just the caller's frame depth, enough to let a
// fragment's recursion flags mean something), and a fixed bank of
// locals.
type callFrame struct {
	returnAddr hostabi.IP
	locals     []*tjitvalue.Value
	dlDelta    uint32
}

func newFrame(returnAddr hostabi.IP, dlDelta uint32) *callFrame {
	locals := make([]*tjitvalue.Value, framesize)
	for i := range locals {
		locals[i] = tjitvalue.NewInt(0)
	}
	return &callFrame{returnAddr: returnAddr, locals: locals, dlDelta: dlDelta}
}

// Interp is a tiny stack-machine interpreter that drives a
// tjit.Controller the way a real Scheme VM would: it calls Merge
// before every instruction and Enter at every control transfer, and
// implements hostabi.FrameView/VMView/ModeSwitcher on itself so the
// controller never needs a second adapter type.
type Interp struct {
	Prog   *Program
	PC     hostabi.IP
	Stack  []int64
	Frames []*callFrame

	Ctl *tjit.Controller
	Th  hostabi.ThreadID

	halted bool
	steps  int

	bailExitID   int
	bailFragment hostabi.Fragment
	bailOrigin   hostabi.Fragment
}

// NewInterp creates an interpreter positioned at the start of prog,
// with a single top-level frame whose return address is the end of
// the program (returning from it halts the run).
func NewInterp(prog *Program, ctl *tjit.Controller, th hostabi.ThreadID) *Interp {
	return &Interp{
		Prog:   prog,
		Frames: []*callFrame{newFrame(hostabi.IP(len(prog.Words)), 0)},
		Ctl:    ctl,
		Th:     th,
	}
}

func (i *Interp) curFrame() *callFrame { return i.Frames[len(i.Frames)-1] }

func (i *Interp) push(v int64) { i.Stack = append(i.Stack, v) }
func (i *Interp) pop() int64 {
	n := len(i.Stack) - 1
	v := i.Stack[n]
	i.Stack = i.Stack[:n]
	return v
}

// --- hostabi.FrameView ---

func (i *Interp) OpcodeAt(ip hostabi.IP) byte { return byte(i.Prog.opcodeAt(ip)) }
func (i *Interp) OpSize(opcode byte) int      { return Opcode(opcode).size() }
func (i *Interp) ReadWords(ip hostabi.IP, n int) []uint32 {
	out := make([]uint32, n)
	copy(out, i.Prog.Words[int(ip):int(ip)+n])
	return out
}
func (i *Interp) ReturnAddress() hostabi.IP    { return i.curFrame().returnAddr }
func (i *Interp) DynamicLinkDelta() uint32     { return i.curFrame().dlDelta }
func (i *Interp) Locals() []*tjitvalue.Value   { return i.curFrame().locals }

// --- hostabi.VMView ---

func (i *Interp) IP() hostabi.IP    { return i.PC }
func (i *Interp) SetIP(ip hostabi.IP) { i.PC = ip }
func (i *Interp) SetBailout(exitID int, fragment, origin hostabi.Fragment) {
	i.bailExitID, i.bailFragment, i.bailOrigin = exitID, fragment, origin
}
func (i *Interp) Bailout() (int, hostabi.Fragment, hostabi.Fragment) {
	return i.bailExitID, i.bailFragment, i.bailOrigin
}

// --- hostabi.ModeSwitcher ---

// WithInterpreterEngine runs fn directly: this interpreter has only
// one engine, so there is nothing to switch away from, but it still
// satisfies the contract the controller calls through for
// type-checking and compilation.
func (i *Interp) WithInterpreterEngine(fn func()) { fn() }

// Run executes until OpHalt, a top-level return, or maxSteps
// instructions have run (a safety bound for programs driven by a
// buggy trace).
func (i *Interp) Run(maxSteps int) {
	for !i.halted && i.steps < maxSteps {
		i.Step()
	}
}

// Step executes exactly one instruction, calling Merge first and, for
// control-transfer instructions, Enter afterward (spec §6.1's "ENTER
// hook fires immediately before a control-transfer instruction
// executes" is realized here as "immediately before the jump takes
// effect", since this interpreter computes the target before handing
// it to Enter).
func (i *Interp) Step() {
	ip := i.PC
	if i.Ctl != nil {
		i.Ctl.Merge(i.Th, ip, i)
	}

	op := i.Prog.opcodeAt(ip)
	switch op {
	case OpNop:
		i.PC = ip + hostabi.IP(op.size())
	case OpConstInt:
		i.push(int64(i.Prog.operandAt(ip)))
		i.PC = ip + hostabi.IP(op.size())
	case OpLoad:
		slot := i.Prog.operandAt(ip)
		i.push(i.curFrame().locals[slot].ToInt())
		i.PC = ip + hostabi.IP(op.size())
	case OpStore:
		slot := i.Prog.operandAt(ip)
		i.curFrame().locals[slot] = tjitvalue.NewInt(i.pop())
		i.PC = ip + hostabi.IP(op.size())
	case OpAdd:
		b, a := i.pop(), i.pop()
		i.push(a + b)
		i.PC = ip + hostabi.IP(op.size())
	case OpSub:
		b, a := i.pop(), i.pop()
		i.push(a - b)
		i.PC = ip + hostabi.IP(op.size())
	case OpLt:
		b, a := i.pop(), i.pop()
		if a < b {
			i.push(1)
		} else {
			i.push(0)
		}
		i.PC = ip + hostabi.IP(op.size())

	case OpJmp:
		target := hostabi.IP(i.Prog.operandAt(ip))
		i.enter(ip, target, hostabi.TraceJump)

	case OpJmpIfFalse:
		cond := i.pop()
		if cond == 0 {
			target := hostabi.IP(i.Prog.operandAt(ip))
			i.enter(ip, target, hostabi.TraceJump)
		} else {
			i.PC = ip + hostabi.IP(op.size())
		}

	case OpCall:
		entry := hostabi.IP(i.Prog.operandAt(ip))
		ret := ip + hostabi.IP(op.size())
		i.Frames = append(i.Frames, newFrame(ret, uint32(len(i.Frames))))
		i.enter(ip, entry, hostabi.TraceCall)

	case OpTailCall:
		entry := hostabi.IP(i.Prog.operandAt(ip))
		ret := i.curFrame().returnAddr
		i.Frames[len(i.Frames)-1] = newFrame(ret, uint32(len(i.Frames)-1))
		i.enter(ip, entry, hostabi.TraceTCall)

	case OpReturn:
		ret := i.curFrame().returnAddr
		if len(i.Frames) > 1 {
			i.Frames = i.Frames[:len(i.Frames)-1]
		}
		if ret == hostabi.IP(len(i.Prog.Words)) {
			i.halted = true
			return
		}
		i.enter(ip, ret, hostabi.TraceReturn)

	case OpHalt:
		i.halted = true
		return

	default:
		i.halted = true
		return
	}

	i.steps++
}

// enter runs the ENTER hook for a control transfer from ip to target
// and commits the controller's resumption decision. While a
// recording is already active for this thread, Merge alone (already
// called at the top of Step) governs the trace; the interpreter just
// performs its normal jump without also consulting Enter.
func (i *Interp) enter(ip, target hostabi.IP, ttype hostabi.TraceType) {
	if i.Ctl == nil || i.Ctl.Recording(i.Th) {
		i.PC = target
		i.steps++
		return
	}
	result := i.Ctl.Enter(i.Th, target, ip, ttype, 1, tjitvalue.Snapshot(i.Locals()), i, nil)
	if result.Action == tjit.ActionDispatched {
		i.PC = result.ResumeIP
	} else {
		i.PC = target
	}
	i.steps++
}
