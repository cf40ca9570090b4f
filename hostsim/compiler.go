package hostsim

import (
	"github.com/schemetrace/tjit/tjit"
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitvalue"
)

// Compiler implements tjit.Compiler for hostsim's toy machine code.
// It assigns fragment identity from the trace id the controller
// already hands it and derives the fragment's entry point from the
// first recorded step, which is always the ip the recording started
// at (see record.go/merge.go in package tjit: the first Merge call
// after start_recording always lands on the recorder's own
// LoopStart).
type Compiler struct {
	// BailEvery seeds every compiled fragment's Fragment.bailEvery,
	// letting a single knob drive deterministic side-trace growth in
	// tests without per-fragment wiring.
	BailEvery int
}

func (c *Compiler) Compile(req tjit.CompileRequest) (hostabi.Fragment, error) {
	if len(req.Steps) == 0 {
		return nil, &tjit.Error{Kind: tjit.CompilationFailure, Message: "empty trace"}
	}

	f := &Fragment{
		id:               req.TraceID,
		entryIP:          req.Steps[0].IP,
		nsteps:           len(req.Steps),
		guard:            cloneGuard(req.Steps[0].Locals),
		parentFragmentID: req.ParentFragmentID,
		parentExitID:     req.ParentExitID,
		isSide:           req.ParentFragmentID != 0,
		downrecP:         req.DownrecP,
		uprecP:           req.UprecP,
		loopP:            req.LoopP,
		exitCounts:       make(map[int]uint32),
		bailEvery:        c.BailEvery,
	}
	return f, nil
}

// cloneGuard copies the recording's entry-point locals snapshot to
// serve as the fragment's type guard: a later dispatch attempt must
// present locals of the same shape to be considered a safe match
// (spec invariant 4).
func cloneGuard(locals []*tjitvalue.Value) []*tjitvalue.Value {
	return tjitvalue.Snapshot(locals)
}
