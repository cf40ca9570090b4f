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

// buildCountdown assembles: while (locals[0] > 0) { locals[0]-- }
// and returns the program together with the loop's own start ip (the
// jump-back target a hot backward edge should eventually compile).
func buildCountdown() (*hostsim.Program, hostabi.IP) {
	p := hostsim.NewProgram()
	loopStart := p.Emit(hostsim.OpConstInt, 0)
	p.Emit(hostsim.OpLoad, 0)
	p.Emit(hostsim.OpLt, 0)
	jmpIfFalse := p.Emit(hostsim.OpJmpIfFalse, 0)
	p.Emit(hostsim.OpLoad, 0)
	p.Emit(hostsim.OpConstInt, 1)
	p.Emit(hostsim.OpSub, 0)
	p.Emit(hostsim.OpStore, 0)
	p.Emit(hostsim.OpJmp, uint32(loopStart))
	exit := p.Emit(hostsim.OpHalt, 0)
	p.Patch(jmpIfFalse, uint32(exit))
	return p, loopStart
}

// TestHotLoopCompilesAndDispatches covers scenario S1 from the
// tracing control core's contract: a backward edge crossing hot_loop
// starts a recording, the recording runs to the loop's own jump site
// and compiles, and every further pass through the loop dispatches
// straight to native code instead of recording again.
func TestHotLoopCompilesAndDispatches(t *testing.T) {
	prog, loopStart := buildCountdown()

	interp := hostsim.NewInterp(prog, nil, hostabi.ThreadID(1))
	ctl := tjit.New(&hostsim.Compiler{}, interp, tjitlog.New(tjitlog.LevelSilent))
	interp.Ctl = ctl

	require.NoError(t, ctl.Tunables().SetHotLoop(5))
	interp.Locals()[0] = tjitvalue.NewInt(200)

	interp.Run(1_000_000)

	assert.True(t, ctl.IsRootIP(loopStart), "loop entry should become a root trace after going hot")

	frag, ok := ctl.Fragment(1)
	require.True(t, ok, "first compiled trace should be registered under id 1")
	assert.Equal(t, loopStart, frag.EntryIP())
	assert.Equal(t, 2, ctl.Tunables().TraceID(), "trace id advances exactly once per successful compile")
}

// TestBlacklistStopsRetryingAfterMaxRetries covers invariant 2: once
// failed_ip[ip] reaches max_retries, Enter no longer attempts to
// start a new recording at that ip.
func TestBlacklistStopsRetryingAfterMaxRetries(t *testing.T) {
	prog, loopStart := buildCountdown()
	interp := hostsim.NewInterp(prog, nil, hostabi.ThreadID(1))
	// A compiler that always fails, forcing every recording to abort
	// via IncrementCompilationFailure in finish.
	ctl := tjit.New(failingCompiler{}, interp, tjitlog.New(tjitlog.LevelSilent))
	interp.Ctl = ctl

	require.NoError(t, ctl.Tunables().SetHotLoop(1))
	require.NoError(t, ctl.Tunables().SetMaxRetries(2))
	interp.Locals()[0] = tjitvalue.NewInt(500)

	interp.Run(1_000_000)

	assert.True(t, ctl.Blacklisted(loopStart))
	assert.False(t, ctl.IsRootIP(loopStart), "a fully blacklisted ip never compiles a fragment")
}

type failingCompiler struct{}

func (failingCompiler) Compile(req tjit.CompileRequest) (hostabi.Fragment, error) {
	return nil, &tjit.Error{Kind: tjit.CompilationFailure, Message: "synthetic failure"}
}
