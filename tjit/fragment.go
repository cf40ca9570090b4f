package tjit

import (
	"sync"

	"github.com/schemetrace/tjit/hostabi"
)

// fragmentDirectory is the Controller-owned storage for the two
// mappings spec §3 describes: fragment id to fragment, and entry IP
// to the ordered list of root-trace candidates at that IP. Reads go
// through a RWMutex-guarded snapshot so ENTER's candidate walk never
// blocks behind a compile; writes only happen from inside
// Controller.finish, which already holds compileMu (spec §5: fragment
// directory mutations are funneled through the compiler path and
// thus effectively serialized).
type fragmentDirectory struct {
	mu           sync.RWMutex
	fragments    map[int]hostabi.Fragment
	rootTraces   map[hostabi.IP][]hostabi.Fragment
}

func newFragmentDirectory() *fragmentDirectory {
	return &fragmentDirectory{
		fragments:  make(map[int]hostabi.Fragment),
		rootTraces: make(map[hostabi.IP][]hostabi.Fragment),
	}
}

func (d *fragmentDirectory) get(id int) (hostabi.Fragment, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f, ok := d.fragments[id]
	return f, ok
}

// insert records a newly compiled fragment. If it is a root trace
// (no parent), it is also appended to that entry IP's candidate list.
func (d *fragmentDirectory) insert(f hostabi.Fragment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fragments[f.ID()] = f
	if _, _, isSide := f.Parent(); !isSide {
		d.rootTraces[f.EntryIP()] = append(d.rootTraces[f.EntryIP()], f)
	}
}

// rootCandidates returns the ordered candidate list at ip. The slice
// is returned as-is (append-only, never mutated in place) so callers
// may range over it without holding the lock.
func (d *fragmentDirectory) rootCandidates(ip hostabi.IP) []hostabi.Fragment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rootTraces[ip]
}
