package tjit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemetrace/tjit/tjit"
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/hostsim"
	"github.com/schemetrace/tjit/tjitlog"
	"github.com/schemetrace/tjit/tjitvalue"
)

// TestCallNativeArmsSideTraceOnHotExit covers spec §4.E: a fragment
// whose exit bails out repeatedly should, once its exit count crosses
// hot_exit, arm a SIDE recording parented at that fragment and exit.
func TestCallNativeArmsSideTraceOnHotExit(t *testing.T) {
	prog, loopStart := buildCountdown()
	interp := hostsim.NewInterp(prog, nil, hostabi.ThreadID(7))

	// BailEvery: 1 makes every native call through this fragment bail
	// immediately, so a handful of CallNative calls is enough to push
	// the exit counter past hot_exit without looping thousands of times.
	compiler := &hostsim.Compiler{BailEvery: 1}
	ctl := tjit.New(compiler, interp, tjitlog.New(tjitlog.LevelSilent))
	interp.Ctl = ctl

	require.NoError(t, ctl.Tunables().SetHotExit(2))
	require.NoError(t, ctl.Tunables().SetTrySides(10))
	require.NoError(t, ctl.Tunables().SetMaxSides(10))

	req := tjit.CompileRequest{
		TraceID: 1,
		Steps: []hostabi.TraceStep{
			{IP: loopStart, Locals: []*tjitvalue.Value{tjitvalue.NewInt(0)}},
		},
		LoopP: true,
	}
	fragment, err := compiler.Compile(req)
	require.NoError(t, err)

	interp.Locals()[0] = tjitvalue.NewInt(0)

	var resume hostabi.IP
	for i := 0; i < 3; i++ {
		resume = ctl.CallNative(interp.Th, fragment, interp, nil)
	}

	assert.Equal(t, loopStart, resume)
	assert.True(t, ctl.Recording(interp.Th), "a side trace should now be recording")
}
