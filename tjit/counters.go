package tjit

import "github.com/schemetrace/tjit/hostabi"

// hashMask covers the low 24 bits of an IP; hashShift drops the
// bottom two bits, which are always zero for word-aligned bytecode
// addresses. Both match the reference tracing JIT's TJIT_HASH_MASK
// and TJIT_HASH_FUNC exactly (spec §3's hash formula, not the
// "65536/4" figure quoted in spec §4.A's component-share table — see
// DESIGN.md for why §3 and the original source win that discrepancy).
const (
	hashMask  = 0xFFFFFF
	hashShift = 2
	hashSize  = (hashMask + 1) >> hashShift
)

func hashIP(ip hostabi.IP) uint32 {
	return (uint32(ip) & hashMask) >> hashShift
}

// CounterTable is a fixed-size, deliberately lossy hash array of
// 16-bit counters. Two unrelated IPs that alias into the same slot
// simply share heat or failure count; that is an accepted heuristic
// cost, never a correctness issue (spec §3, §9 open question on
// collisions). Reads and writes are plain slice accesses, not atomic:
// the reference implementation takes the same position — these are
// single-word statistical counters, and a torn update only perturbs
// timing, never the recorder's state machine (spec §5).
type CounterTable struct {
	slots []uint16
}

// NewCounterTable allocates a counter table. Each of hot_ip, root_ip,
// and failed_ip gets its own table.
func NewCounterTable() *CounterTable {
	return &CounterTable{slots: make([]uint16, hashSize)}
}

// Ref reads the counter for ip.
func (c *CounterTable) Ref(ip hostabi.IP) uint16 {
	return c.slots[hashIP(ip)]
}

// Set writes the counter for ip, wrapping silently on overflow — the
// configured thresholds are far below 65535 so saturation is never
// required (spec §4.A).
func (c *CounterTable) Set(ip hostabi.IP, v uint16) {
	c.slots[hashIP(ip)] = v
}

// Flag reports whether the table's counter at ip is nonzero; used for
// the root_ip 0/1 convention (invariant 1).
func (c *CounterTable) Flag(ip hostabi.IP) bool {
	return c.Ref(ip) != 0
}

// SetFlag sets the table's counter at ip to 1 or 0.
func (c *CounterTable) SetFlag(ip hostabi.IP, on bool) {
	if on {
		c.Set(ip, 1)
	} else {
		c.Set(ip, 0)
	}
}
