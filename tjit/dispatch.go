package tjit

import "github.com/schemetrace/tjit/hostabi"

// exitCountStep is the fixed increment spec §4.E assigns to a bailout
// exit's counter: one INUM_STEP, a single logical unit (the reference
// encodes it as a fixnum step, but there is no fixnum tagging in this
// port, so the raw value is 1, not the encoded step).
const exitCountStep = 1

// CallNative implements spec §4.E: invoke a fragment's compiled
// native code, and on a non-normal return inspect the bailout it
// recorded in vp to decide whether that exit has grown hot enough to
// grow a side trace.
func (c *Controller) CallNative(
	th hostabi.ThreadID,
	fragment hostabi.Fragment,
	vp hostabi.VMView,
	regs hostabi.RegisterFile,
) hostabi.IP {
	bail := fragment.Entry()(th, vp, regs)
	if bail == 0 {
		return vp.IP()
	}

	exitID, retFragment, retOrigin := vp.Bailout()
	if retFragment == nil || retOrigin == nil {
		c.log.Warnf("call_native: bailout with no recorded exit fragment, resuming at %s", vp.IP())
		return vp.IP()
	}

	old := retFragment.ExitCount(exitID)
	maxRetries := uint32(c.tunables.HotExit()) + uint32(c.tunables.TrySides())
	if old < maxRetries && retOrigin.NumChildren() < c.tunables.MaxSides() {
		count := old + exitCountStep
		retFragment.SetExitCount(exitID, count)
		if int(count) > c.tunables.HotExit() {
			c.log.Debugf("call_native: exit %d of fragment %d hot (count=%d), arming side trace",
				exitID, retFragment.ID(), count)
			s := c.state(th)
			s.start(vp.IP(), fragment.EntryIP(), hostabi.TraceSide)
			s.ParentFragmentID = retFragment.ID()
			s.ParentExitID = exitID
			retOrigin.IncrementChildren()
		}
	}

	return vp.IP()
}
