package tjit

import (
	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitvalue"
)

// EnterAction tells the interpreter what Enter decided.
type EnterAction int

const (
	// ActionContinue: no dispatch, no recording started this call;
	// the interpreter proceeds with its planned jump.
	ActionContinue EnterAction = iota
	// ActionDispatched: native code ran; ResumeIP names where the
	// interpreter should resume (the fragment's own bailout target).
	ActionDispatched
)

// EnterResult is Enter's outcome.
type EnterResult struct {
	Action   EnterAction
	ResumeIP hostabi.IP
}

// Enter implements the ENTER hook (spec §4.C, §6.1): called by the
// interpreter immediately before executing a control-transfer
// instruction.
//
//   - next: the destination IP of the planned jump/call/return.
//   - loopEnd: the planned cycle endpoint, passed through unchanged to
//     start_recording if this call starts one.
//   - ttype: the trace-type hint for a freshly started recording.
//   - inc: the heat-increment weight for this call site.
//   - snapshot: the interpreter's current locals, needed only if a
//     native dispatch is attempted.
//   - th/vp/regs: the dispatch machinery Enter forwards to
//     CallNative when a fragment matches.
func (c *Controller) Enter(
	th hostabi.ThreadID,
	next, loopEnd hostabi.IP,
	ttype hostabi.TraceType,
	inc uint16,
	snapshot []*tjitvalue.Value,
	vp hostabi.VMView,
	regs hostabi.RegisterFile,
) EnterResult {
	// Step 1: try native dispatch.
	if c.rootIP.Flag(next) {
		if fragment := c.matchFragment(next, snapshot); fragment != nil {
			resume := c.CallNative(th, fragment, vp, regs)
			return EnterResult{Action: ActionDispatched, ResumeIP: resume}
		}
	}

	// Step 2: respect the blacklist.
	if c.Blacklisted(next) {
		return EnterResult{Action: ActionContinue}
	}

	// Step 3: heat increment / start recording.
	count := c.hotIP.Ref(next)
	if int(count) >= c.tunables.HotLoop() {
		c.hotIP.Set(next, 0)
		c.startRecording(th, next, loopEnd, ttype)
		c.log.Debugf("enter: ip=%s heat=%d >= hot_loop=%d, recording started (type=%s)",
			next, count, c.tunables.HotLoop(), ttype)
	} else {
		c.hotIP.Set(next, count+inc)
	}

	return EnterResult{Action: ActionContinue}
}

// matchFragment walks root_traces[ip] and returns the first fragment
// whose type-checker accepts snapshot (spec §4.C step 1, invariant 4).
// The type-checker runs under the host's interpreter engine, not the
// tracing engine, per SPEC_FULL §10.3.
func (c *Controller) matchFragment(ip hostabi.IP, snapshot []*tjitvalue.Value) hostabi.Fragment {
	candidates := c.fragments.rootCandidates(ip)
	if len(candidates) == 0 {
		return nil
	}
	var match hostabi.Fragment
	run := func() {
		for _, f := range candidates {
			if f.TypeCheck(snapshot) {
				match = f
				return
			}
		}
	}
	if c.switcher != nil {
		c.switcher.WithInterpreterEngine(run)
	} else {
		run()
	}
	return match
}

func (c *Controller) startRecording(th hostabi.ThreadID, start, end hostabi.IP, ttype hostabi.TraceType) {
	c.state(th).start(start, end, ttype)
}
