package tjit

import "github.com/schemetrace/tjit/hostabi"

// MergeAction tells the interpreter what Merge decided.
type MergeAction int

const (
	// ActionRecording: the recorder is (still) active; nothing else
	// for the interpreter to do.
	ActionRecording MergeAction = iota
	// ActionFinished: a trace completed and was handed to the
	// compiler; the interpreter should re-execute ip under whatever
	// engine it was already running (the recorder is reset).
	ActionFinished
	// ActionAborted: the recording was abandoned; same resumption as
	// ActionFinished.
	ActionAborted
	// ActionIdle: the recorder was not active; Merge is a no-op.
	ActionIdle
)

// MergeResult is Merge's outcome, mainly useful for logging/tests;
// the interpreter's control flow does not change because of it (it
// always just re-executes ip).
type MergeResult struct {
	Action MergeAction
}

// Merge implements the MERGE hook (spec §4.D, §6.1): called before
// every instruction while a recording may be active for th. frame
// gives access to the opcode/size/locals the recorder needs to
// append a step.
func (c *Controller) Merge(th hostabi.ThreadID, ip hostabi.IP, frame hostabi.FrameView) MergeResult {
	s := c.state(th)
	if s.Mode != ModeRecord {
		return MergeResult{Action: ActionIdle}
	}

	result := c.mergeStep(s, ip, frame)

	if s.Mode == ModeRecord && int(s.BCIdx) > c.tunables.MaxRecord() {
		c.abortRecording(s, s.LoopStart)
		return MergeResult{Action: ActionAborted}
	}
	return result
}

// mergeStep is tjit_merge: it branches on trace type and decides
// whether to append, finish, abort, or silently stop (spec §4.D).
func (c *Controller) mergeStep(s *RecorderState, ip hostabi.IP, frame hostabi.FrameView) MergeResult {
	hasRoot := c.rootIP.Flag(ip)
	var fragment hostabi.Fragment
	if hasRoot {
		fragment = c.matchFragment(ip, frame.Locals())
	}
	// Avoid looking up the fragment of the looping side-trace itself.
	linkFound := hasRoot && ip != s.LoopStart

	switch s.TraceType {
	case hostabi.TraceSide:
		if fragment != nil {
			c.finish(s, ip, false, false, false)
			return MergeResult{Action: ActionFinished}
		}
		appendStep(s, ip, frame)
		return MergeResult{Action: ActionRecording}

	case hostabi.TraceJump, hostabi.TraceTCall:
		switch {
		case ip == s.LoopEnd:
			appendStep(s, ip, frame)
			c.finish(s, ip, true, false, false)
			return MergeResult{Action: ActionFinished}
		case fragment != nil:
			c.abortRecording(s, s.LoopStart)
			return MergeResult{Action: ActionAborted}
		default:
			appendStep(s, ip, frame)
			return MergeResult{Action: ActionRecording}
		}

	case hostabi.TraceCall:
		downrec := fragment != nil && fragment.IsDownrec()
		switch {
		case ip == s.LoopStart || (linkFound && downrec):
			if s.NUnrolled >= c.tunables.NumUnrolls() {
				if linkFound {
					c.abortRecording(s, s.LoopStart)
					return MergeResult{Action: ActionAborted}
				}
				c.finish(s, ip, true, true, false)
				return MergeResult{Action: ActionFinished}
			}
			appendStep(s, ip, frame)
			s.NUnrolled++
			return MergeResult{Action: ActionRecording}
		case ip == s.LoopEnd:
			// Hot non-recursive call landing: stop without emitting.
			s.reset()
			return MergeResult{Action: ActionAborted}
		default:
			appendStep(s, ip, frame)
			return MergeResult{Action: ActionRecording}
		}

	case hostabi.TraceReturn:
		uprec := fragment != nil && fragment.IsUprec()
		switch {
		case ip == s.LoopStart || (linkFound && uprec):
			if s.NUnrolled >= c.tunables.NumUnrolls() {
				c.finish(s, ip, !linkFound, false, true)
				return MergeResult{Action: ActionFinished}
			}
			appendStep(s, ip, frame)
			s.NUnrolled++
			return MergeResult{Action: ActionRecording}
		case ip == s.LoopEnd:
			s.reset()
			return MergeResult{Action: ActionAborted}
		default:
			appendStep(s, ip, frame)
			return MergeResult{Action: ActionRecording}
		}
	}
	return MergeResult{Action: ActionRecording}
}

// finish invokes the compiler synchronously (spec §4.D "Finish",
// §6.2) and resets the recorder. On success, the controller performs
// the fragment-directory insert, root_ip update, and trace-id
// increment that spec's compiler-callback contract assigns to the
// callback; on failure it bumps failed_ip at the recording's origin
// IP.
func (c *Controller) finish(s *RecorderState, linkedIP hostabi.IP, loopP, downrecP, uprecP bool) {
	req := CompileRequest{
		TraceID:          c.tunables.TraceID(),
		Bytecode:         append([]uint32(nil), s.Bytecode...),
		Steps:            append([]hostabi.TraceStep(nil), s.Steps...),
		ParentFragmentID: s.ParentFragmentID,
		ParentExitID:     s.ParentExitID,
		LinkedIP:         linkedIP,
		LoopP:            loopP,
		DownrecP:         downrecP,
		UprecP:           uprecP,
	}
	originIP := s.LoopStart

	c.compileMu.Lock()
	var fragment hostabi.Fragment
	var err error
	compile := func() { fragment, err = c.compiler.Compile(req) }
	if c.switcher != nil {
		c.switcher.WithInterpreterEngine(compile)
	} else {
		compile()
	}
	if err == nil {
		c.fragments.insert(fragment)
		if _, _, isSide := fragment.Parent(); !isSide {
			c.rootIP.SetFlag(fragment.EntryIP(), true)
		}
		c.tunables.IncrementTraceID()
		c.gdbjit.register(fragment.MachineCode())
		c.log.Infof("finish: compiled trace %d at %s (loop=%v downrec=%v uprec=%v)",
			req.TraceID, linkedIP, loopP, downrecP, uprecP)
	} else {
		c.IncrementCompilationFailure(originIP, 1)
		c.log.Warnf("finish: compilation failed at %s: %v", originIP, err)
	}
	c.compileMu.Unlock()

	s.reset()
}

// abortRecording implements spec §4.B's Abort: bump failed_ip[ip],
// then reset.
func (c *Controller) abortRecording(s *RecorderState, ip hostabi.IP) {
	c.IncrementCompilationFailure(ip, 1)
	c.log.Debugf("abort: recording aborted at %s (failed_ip now %d)", ip, c.failedIP.Ref(ip))
	s.reset()
}
