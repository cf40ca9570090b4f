// Package tjit implements the tracing JIT control core: hot-path
// detection, trace recording, fragment dispatch, and side-trace
// growth, coordinated through the narrow host contract in package
// hostabi. It never parses or executes bytecode itself.
package tjit

import (
	"sync"

	"github.com/schemetrace/tjit/hostabi"
	"github.com/schemetrace/tjit/tjitlog"
)

// Compiler is the host-provided trace compiler (spec §6.2). It is a
// pure function of a recorded trace to a compiled Fragment; every
// side effect spec §6.2 assigns to "the callback" (directory insert,
// root_ip update, trace-id increment, failure bookkeeping) is instead
// performed by the Controller around the call, keeping Compiler
// implementations simple the way the teacher's CodeGenerator
// interface stays free of JITCompiler's bookkeeping
// (compiler/jit/jit.go).
type Compiler interface {
	Compile(req CompileRequest) (hostabi.Fragment, error)
}

// CompileRequest carries the nine arguments spec §6.2 specifies, in
// order.
type CompileRequest struct {
	TraceID          int
	Bytecode         []uint32
	Steps            []hostabi.TraceStep // oldest first, see record.go
	ParentFragmentID int                 // 0 = none
	ParentExitID     int                 // 0 = none
	LinkedIP         hostabi.IP
	LoopP            bool
	DownrecP         bool
	UprecP           bool
}

// Controller is the tracing JIT control core. One Controller serves
// every interpreter thread; per-thread state lives in its
// recorderStore.
type Controller struct {
	tunables *Tunables

	hotIP    *CounterTable
	rootIP   *CounterTable
	failedIP *CounterTable

	recorders *recorderStore
	fragments *fragmentDirectory
	gdbjit    *gdbJITDescriptor

	compiler Compiler
	switcher hostabi.ModeSwitcher

	// compileMu serializes fragment-directory writes, the Go stand-in
	// for "the host's global interpreter hold" (spec §5).
	compileMu sync.Mutex

	log *tjitlog.Logger
}

// New creates a Controller. compiler and switcher are the two host
// collaborators the control flow in enter.go/merge.go calls back
// into; log may be nil, in which case a silent logger is used.
func New(compiler Compiler, switcher hostabi.ModeSwitcher, log *tjitlog.Logger) *Controller {
	if log == nil {
		log = tjitlog.New(tjitlog.LevelSilent)
	}
	return &Controller{
		tunables:  NewTunables(),
		hotIP:     NewCounterTable(),
		rootIP:    NewCounterTable(),
		failedIP:  NewCounterTable(),
		recorders: newRecorderStore(),
		fragments: newFragmentDirectory(),
		gdbjit:    newGDBJITDescriptor(),
		compiler:  compiler,
		switcher:  switcher,
		log:       log,
	}
}

// Tunables exposes the parameter surface (spec §4.F/§6.4).
func (c *Controller) Tunables() *Tunables { return c.tunables }

// AddRootIP marks ip as a root-trace entry point (spec §6.4
// "add-root-ip!"). The Controller normally does this itself from
// finish; hosts seed it manually only when pre-loading a persisted
// fragment set, which spec §6.5 otherwise disclaims.
func (c *Controller) AddRootIP(ip hostabi.IP) { c.rootIP.SetFlag(ip, true) }

// RemoveRootIP clears the root-trace flag for ip ("remove-root-ip!").
func (c *Controller) RemoveRootIP(ip hostabi.IP) { c.rootIP.SetFlag(ip, false) }

// IsRootIP reports invariant 1: whether ip has at least one fragment
// registered in its root-trace candidate list.
func (c *Controller) IsRootIP(ip hostabi.IP) bool { return c.rootIP.Flag(ip) }

// IncrementCompilationFailure bumps failed_ip[ip] by inc
// ("increment-compilation-failure!").
func (c *Controller) IncrementCompilationFailure(ip hostabi.IP, inc uint16) {
	c.failedIP.Set(ip, c.failedIP.Ref(ip)+inc)
}

// Blacklisted reports invariant 2: failed_ip[ip] >= max_retries.
func (c *Controller) Blacklisted(ip hostabi.IP) bool {
	return int(c.failedIP.Ref(ip)) >= c.tunables.MaxRetries()
}

// Recording reports whether th currently has an active recording, so
// a host interpreter knows to route a control transfer through Merge
// only and perform its own unconditional jump, rather than also
// consulting Enter. A transfer whose Merge call ends the recording
// (finish or abort) sees Recording return false and so does reach
// Enter.
func (c *Controller) Recording(th hostabi.ThreadID) bool {
	return c.state(th).Mode == ModeRecord
}

// Fragment looks up a fragment by id, for host inspection/tests.
func (c *Controller) Fragment(id int) (hostabi.Fragment, bool) {
	return c.fragments.get(id)
}

// Shutdown releases process-wide resources the core owns: the
// GDB-JIT entry list. Go has no atexit, so the host must call this
// explicitly before process exit (spec §4.F, SPEC_FULL §4.F).
func (c *Controller) Shutdown() {
	c.gdbjit.shutdown()
}

func (c *Controller) state(th hostabi.ThreadID) *RecorderState {
	return c.recorders.acquire(th, uint32(c.tunables.MaxRecord()))
}
