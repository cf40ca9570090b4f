package hostsim

import "github.com/schemetrace/tjit/hostabi"

// framesize is the fixed number of local slots every call frame
// carries; real Scheme locals counts vary per procedure, but a fixed
// size keeps this reference interpreter's frame management simple.
const framesize = 4

// Program is a flat word-addressed bytecode image. Each instruction
// occupies opSizes[opcode] consecutive words starting with the
// opcode itself; hostabi.IP indexes directly into Words.
type Program struct {
	Words []uint32
}

// NewProgram returns an empty Program. Instructions are added with
// Emit, which returns each instruction's starting IP for callers that
// assemble jump targets by label.
func NewProgram() *Program {
	return &Program{}
}

// Emit appends one instruction and returns its IP.
func (p *Program) Emit(op Opcode, operand uint32) hostabi.IP {
	ip := hostabi.IP(len(p.Words))
	p.Words = append(p.Words, uint32(op))
	if op.size() > 1 {
		p.Words = append(p.Words, operand)
	}
	return ip
}

// Patch overwrites the operand word of the instruction at ip, used to
// back-patch forward jump targets after the jump destination is
// known.
func (p *Program) Patch(ip hostabi.IP, operand uint32) {
	p.Words[int(ip)+1] = operand
}

func (p *Program) opcodeAt(ip hostabi.IP) Opcode {
	return Opcode(p.Words[int(ip)])
}

func (p *Program) operandAt(ip hostabi.IP) uint32 {
	return p.Words[int(ip)+1]
}
