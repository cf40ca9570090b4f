// Package hostabi defines the narrow contract between the tracing JIT
// control core (package tjit) and the three collaborators it never
// owns: the bytecode interpreter, the trace compiler, and the native
// code loader. Nothing in this package records traces, dispatches
// fragments, or runs a compiler — it only names the shapes those
// collaborators must present.
package hostabi

import (
	"fmt"

	"github.com/schemetrace/tjit/tjitvalue"
)

// IP is an opaque bytecode instruction pointer. The core only ever
// hashes and compares it; it never dereferences the address itself.
type IP uintptr

func (ip IP) String() string {
	return fmt.Sprintf("0x%x", uintptr(ip))
}

// ThreadID identifies one interpreter thread of control. Go has no
// addressable TLS, so the host hands the core a stable handle (for
// example a goroutine-scoped counter or a pointer to its own VM
// struct cast to uintptr) instead of relying on implicit thread
// identity.
type ThreadID uint64

// TraceType mirrors spec's trace_type enumeration: what kind of
// control-transfer the recorder is following.
type TraceType int

const (
	TraceJump TraceType = iota
	TraceCall
	TraceTCall
	TraceReturn
	TraceSide
)

func (t TraceType) String() string {
	switch t {
	case TraceJump:
		return "JUMP"
	case TraceCall:
		return "CALL"
	case TraceTCall:
		return "TCALL"
	case TraceReturn:
		return "RETURN"
	case TraceSide:
		return "SIDE"
	default:
		return "UNKNOWN"
	}
}

// TraceStep is one recorded instruction: its address, the return
// address and dynamic-link delta of the frame it executed in, and a
// snapshot of the frame's locals at that point.
type TraceStep struct {
	IP       IP
	RetAddr  IP
	DLDelta  uint32
	Locals   []*tjitvalue.Value
}

// FrameView is the interpreter's per-call narrow accessor the
// recorder needs to append a step: enough to read the opcode at an
// IP, know how many bytecode words it occupies, and read the current
// frame's linkage and locals. Bytecode semantics stay the host's
// concern; this interface never interprets an opcode, only measures
// and copies it.
type FrameView interface {
	// OpcodeAt returns the opcode byte stored at ip.
	OpcodeAt(ip IP) byte
	// OpSize returns how many bytecode words the given opcode
	// occupies, the host's op_sizes table.
	OpSize(opcode byte) int
	// ReadWords copies n bytecode words starting at ip.
	ReadWords(ip IP, n int) []uint32
	// ReturnAddress is the return address of the current frame.
	ReturnAddress() IP
	// DynamicLinkDelta is the offset between the current frame and
	// its dynamic link, as stored by the host's calling convention.
	DynamicLinkDelta() uint32
	// Locals returns the current frame's locals, in slot order.
	Locals() []*tjitvalue.Value
}

// Fragment is a compiled trace, opaque to the core beyond the
// accessors spec names: a stable id, native code, per-exit counters,
// recursion flags, and a type-checker that decides whether a fragment
// is a safe native-dispatch target for the interpreter's current
// locals. The core reads these and only ever mutates exit counters.
type Fragment interface {
	ID() int
	EntryIP() IP
	MachineCode() []byte
	// Entry returns the callable form of MachineCode, the core's only
	// means of actually running a fragment (spec §4.E step 1).
	Entry() NativeFn
	// TypeCheck reports whether this fragment's type guard accepts
	// the given locals snapshot.
	TypeCheck(locals []*tjitvalue.Value) bool
	ExitCount(exitID int) uint32
	SetExitCount(exitID int, count uint32)
	NumChildren() int
	IncrementChildren()
	IsDownrec() bool
	IsUprec() bool
	// Parent returns the parent fragment id and exit id for a side
	// trace, or ok=false for a root trace (invariant 5).
	Parent() (fragmentID, exitID int, ok bool)
}

// NativeFn is the native-code ABI: thread handle, VM register view,
// and an opaque register file, returning zero on fall-through or
// non-zero on bailout. The callee must call VMView.SetBailout before
// returning non-zero.
type NativeFn func(th ThreadID, vp VMView, regs RegisterFile) int

// RegisterFile is an opaque blob of machine register state passed
// through to native code; the core never inspects it.
type RegisterFile interface{}

// VMView is the live interpreter register view native code and the
// dispatcher synchronize through: the current IP/SP and the bailout
// gluing call native code uses to report which fragment and exit it
// left through.
type VMView interface {
	IP() IP
	SetIP(ip IP)
	// SetBailout publishes (exitID, fragment, origin) for the
	// dispatcher to read back after a non-zero native return. origin
	// is the fragment the bailout is attributed to for max_sides
	// accounting; it usually equals fragment but can differ when a
	// tail-resumed fragment bails out on behalf of its caller.
	SetBailout(exitID int, fragment, origin Fragment)
	// Bailout reads back what the most recent non-zero-returning
	// NativeFn call published via SetBailout.
	Bailout() (exitID int, fragment, origin Fragment)
}

// ModeSwitcher lets the core run host callbacks — a fragment's
// type-checker, or the trace compiler — without recursively entering
// the tracing engine, matching the reference implementation's
// temporary VM-engine switch around both calls.
type ModeSwitcher interface {
	WithInterpreterEngine(fn func())
}
