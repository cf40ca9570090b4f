package tjit

import "sync/atomic"

// Tunables holds the small-integer parameters of spec §4.F, each
// exposed as a paired getter/setter the same way the reference
// implementation's SCM_TJIT_PARAM macro generates one pair per
// parameter. Values are stored as atomics since they may be read
// from the ENTER/MERGE hot path on one goroutine while a host command
// console adjusts them from another.
type Tunables struct {
	hotLoop      atomic.Uint32
	hotExit      atomic.Uint32
	maxRecord    atomic.Uint32
	maxRetries   atomic.Uint32
	maxSides     atomic.Uint32
	trySides     atomic.Uint32
	numUnrolls   atomic.Uint32
	schemeEngine atomic.Uint32

	traceID atomic.Int64
}

// Defaults from spec §4.F.
const (
	defaultHotLoop      = 59
	defaultHotExit      = 40
	defaultMaxRecord    = 5000
	defaultMaxRetries   = 10
	defaultMaxSides     = 100
	defaultTrySides     = 4
	defaultNumUnrolls   = 2
	defaultSchemeEngine = 0

	tunableMax = 65536
)

// NewTunables returns a Tunables set at spec's documented defaults.
func NewTunables() *Tunables {
	t := &Tunables{}
	t.hotLoop.Store(defaultHotLoop)
	t.hotExit.Store(defaultHotExit)
	t.maxRecord.Store(defaultMaxRecord)
	t.maxRetries.Store(defaultMaxRetries)
	t.maxSides.Store(defaultMaxSides)
	t.trySides.Store(defaultTrySides)
	t.numUnrolls.Store(defaultNumUnrolls)
	t.schemeEngine.Store(defaultSchemeEngine)
	t.traceID.Store(1)
	return t
}

func validateTunable(name string, v int) (uint32, error) {
	if v < 0 || v > tunableMax {
		return 0, newArgumentError("set-tjit-%s!: invalid arg: %d", name, v)
	}
	return uint32(v), nil
}

func (t *Tunables) HotLoop() int { return int(t.hotLoop.Load()) }
func (t *Tunables) SetHotLoop(v int) error {
	u, err := validateTunable("hot-loop", v)
	if err != nil {
		return err
	}
	t.hotLoop.Store(u)
	return nil
}

func (t *Tunables) HotExit() int { return int(t.hotExit.Load()) }
func (t *Tunables) SetHotExit(v int) error {
	u, err := validateTunable("hot-exit", v)
	if err != nil {
		return err
	}
	t.hotExit.Store(u)
	return nil
}

func (t *Tunables) MaxRecord() int { return int(t.maxRecord.Load()) }
func (t *Tunables) SetMaxRecord(v int) error {
	u, err := validateTunable("max-record", v)
	if err != nil {
		return err
	}
	t.maxRecord.Store(u)
	return nil
}

func (t *Tunables) MaxRetries() int { return int(t.maxRetries.Load()) }
func (t *Tunables) SetMaxRetries(v int) error {
	u, err := validateTunable("max-retries", v)
	if err != nil {
		return err
	}
	t.maxRetries.Store(u)
	return nil
}

func (t *Tunables) MaxSides() int { return int(t.maxSides.Load()) }
func (t *Tunables) SetMaxSides(v int) error {
	u, err := validateTunable("max-sides", v)
	if err != nil {
		return err
	}
	t.maxSides.Store(u)
	return nil
}

func (t *Tunables) TrySides() int { return int(t.trySides.Load()) }
func (t *Tunables) SetTrySides(v int) error {
	u, err := validateTunable("try-sides", v)
	if err != nil {
		return err
	}
	t.trySides.Store(u)
	return nil
}

func (t *Tunables) NumUnrolls() int { return int(t.numUnrolls.Load()) }
func (t *Tunables) SetNumUnrolls(v int) error {
	u, err := validateTunable("num-unrolls", v)
	if err != nil {
		return err
	}
	t.numUnrolls.Store(u)
	return nil
}

func (t *Tunables) SchemeEngine() int { return int(t.schemeEngine.Load()) }
func (t *Tunables) SetSchemeEngine(v int) error {
	u, err := validateTunable("scheme-engine", v)
	if err != nil {
		return err
	}
	t.schemeEngine.Store(u)
	return nil
}

// TraceID returns the current trace id counter without advancing it.
func (t *Tunables) TraceID() int { return int(t.traceID.Load()) }

// IncrementTraceID bumps the monotonic trace id counter, called
// exactly once per successful compilation (spec §4.F, §6.2).
func (t *Tunables) IncrementTraceID() {
	t.traceID.Add(1)
}
