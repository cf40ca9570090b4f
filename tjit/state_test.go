package tjit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemetrace/tjit/hostabi"
)

func TestRecorderStateStartAndReset(t *testing.T) {
	s := newRecorderState(1024)
	assert.Equal(t, ModeInterpret, s.Mode)

	s.start(hostabi.IP(10), hostabi.IP(20), hostabi.TraceJump)
	assert.Equal(t, ModeRecord, s.Mode)
	assert.Equal(t, hostabi.IP(10), s.LoopStart)
	assert.Equal(t, hostabi.IP(20), s.LoopEnd)
	assert.Equal(t, hostabi.TraceJump, s.TraceType)

	s.ParentFragmentID = 5
	s.NUnrolled = 3
	s.reset()

	assert.Equal(t, ModeInterpret, s.Mode)
	assert.Equal(t, 0, s.ParentFragmentID)
	assert.Equal(t, 0, s.NUnrolled)
	assert.Empty(t, s.Steps)
}

func TestRecorderStoreAcquireIsStableByThread(t *testing.T) {
	store := newRecorderStore()
	a := store.acquire(hostabi.ThreadID(1), 64)
	b := store.acquire(hostabi.ThreadID(1), 64)
	c := store.acquire(hostabi.ThreadID(2), 64)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
