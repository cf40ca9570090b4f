package tjit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemetrace/tjit/hostabi"
)

func TestCounterTableRefDefaultsToZero(t *testing.T) {
	c := NewCounterTable()
	assert.EqualValues(t, 0, c.Ref(hostabi.IP(0x1000)))
}

func TestCounterTableSetAndRef(t *testing.T) {
	c := NewCounterTable()
	c.Set(hostabi.IP(0x2000), 42)
	assert.EqualValues(t, 42, c.Ref(hostabi.IP(0x2000)))
}

func TestCounterTableFlag(t *testing.T) {
	c := NewCounterTable()
	ip := hostabi.IP(0x3000)
	assert.False(t, c.Flag(ip))
	c.SetFlag(ip, true)
	assert.True(t, c.Flag(ip))
	c.SetFlag(ip, false)
	assert.False(t, c.Flag(ip))
}

func TestHashIPMasksLowBits(t *testing.T) {
	// Two addresses differing only above the 24-bit mask must alias
	// to the same slot, matching the reference implementation's
	// TJIT_HASH_FUNC exactly.
	a := hashIP(hostabi.IP(0x01000100))
	b := hashIP(hostabi.IP(0x02000100))
	assert.Equal(t, a, b)
}
