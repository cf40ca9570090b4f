package tjit

import (
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitvalue"
)

// appendStep implements spec §4.D's "Append": copy the instruction at
// ip into the bytecode buffer (op_sizes[opcode] words) and push a
// trace step built from the frame's current linkage and locals.
//
// The reference implementation conses each new step onto the front of
// a Scheme list, so its internal order is newest-first and Finish
// must pass the compiler a "reversed" (oldest-first) copy. A Go slice
// has no such inversion: appending keeps steps in chronological,
// already oldest-first order, which is exactly what the compiler
// callback wants — so finish (merge.go) needs no reversal step.
func appendStep(s *RecorderState, ip hostabi.IP, frame hostabi.FrameView) {
	opcode := frame.OpcodeAt(ip)
	n := frame.OpSize(opcode)
	words := frame.ReadWords(ip, n)

	s.Bytecode = append(s.Bytecode, words...)
	s.BCIdx += uint32(n)

	s.Steps = append(s.Steps, hostabi.TraceStep{
		IP:      ip,
		RetAddr: frame.ReturnAddress(),
		DLDelta: frame.DynamicLinkDelta(),
		Locals:  tjitvalue.Snapshot(frame.Locals()),
	})
}
