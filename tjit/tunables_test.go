package tjit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTunablesDefaults(t *testing.T) {
	tu := NewTunables()
	assert.Equal(t, 59, tu.HotLoop())
	assert.Equal(t, 40, tu.HotExit())
	assert.Equal(t, 5000, tu.MaxRecord())
	assert.Equal(t, 10, tu.MaxRetries())
	assert.Equal(t, 100, tu.MaxSides())
	assert.Equal(t, 4, tu.TrySides())
	assert.Equal(t, 2, tu.NumUnrolls())
	assert.Equal(t, 1, tu.TraceID())
}

func TestTunablesSetRejectsOutOfRange(t *testing.T) {
	tu := NewTunables()
	require.Error(t, tu.SetHotLoop(-1))
	require.Error(t, tu.SetHotLoop(65537))
	require.NoError(t, tu.SetHotLoop(65536))
	assert.Equal(t, 65536, tu.HotLoop())
}

func TestTunablesIncrementTraceID(t *testing.T) {
	tu := NewTunables()
	tu.IncrementTraceID()
	tu.IncrementTraceID()
	assert.Equal(t, 3, tu.TraceID())
}
