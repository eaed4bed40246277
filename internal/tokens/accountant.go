package tokens

import (
	"time"

	"github.com/repopick/repopick/internal/tree"
)

const (
	// MaxFilesPerRefresh caps how many computations one refresh may queue.
	// Files beyond the cap are reported as overflow and stay uncounted
	// until a later refresh re-includes them.
	MaxFilesPerRefresh = 1000

	// DebounceInterval suppresses refreshes triggered by rapid input.
	DebounceInterval = 300 * time.Millisecond
)

// entry is one cache slot. A tracked-but-unresolved entry means the
// computation is pending; count 0 with resolved set is a final value.
type entry struct {
	count    int
	resolved bool
}

// RefreshStats summarizes what one refresh did, for status reporting.
type RefreshStats struct {
	// Queued is how many computations this refresh enqueued.
	Queued int
	// Overflow counts selected files that could not be queued this
	// generation (cap reached or queue full).
	Overflow int
	// Pending is the size of the pending set after the refresh.
	Pending int
}

// Accountant owns the sparse token cache and the derived totals. It lives on
// the control loop: every method is single-goroutine, and background results
// only enter through Apply.
type Accountant struct {
	cache   map[string]entry
	pending map[string]struct{}
	total   int

	// generation is the pending-set size as of the last refresh, kept for
	// progress display.
	generation int

	enqueue      func(path string) bool
	debounce     time.Duration
	lastRefresh  time.Time
	hadSelection bool
	now          func() time.Time
}

// NewAccountant wires the accountant to an enqueue function (normally
// Counter.Enqueue).
func NewAccountant(enqueue func(path string) bool) *Accountant {
	return &Accountant{
		cache:    make(map[string]entry),
		pending:  make(map[string]struct{}),
		enqueue:  enqueue,
		debounce: DebounceInterval,
		now:      time.Now,
	}
}

// Refresh reconciles the cache with the current selection: prunes entries
// for paths that stopped being relevant, recomputes totals from what is
// already resolved, and queues background computation for missing file
// entries up to MaxFilesPerRefresh. It never blocks.
func (a *Accountant) Refresh(st *tree.Store) RefreshStats {
	a.lastRefresh = a.now()

	selected := st.SelectedFiles()
	if len(selected) == 0 {
		a.Clear()
		return RefreshStats{}
	}
	a.hadSelection = true

	dirDesc := st.DirsWithSelectedDescendants()

	for path := range a.cache {
		if !st.Relevant(path, dirDesc) {
			delete(a.cache, path)
			delete(a.pending, path)
		}
	}

	var stats RefreshStats
	for _, file := range selected {
		if _, ok := a.cache[file]; ok {
			continue
		}
		if stats.Queued >= MaxFilesPerRefresh || !a.enqueue(file) {
			stats.Overflow++
			continue
		}
		a.cache[file] = entry{}
		a.pending[file] = struct{}{}
		stats.Queued++
	}

	a.RecomputeTotals(st)

	stats.Pending = len(a.pending)
	a.generation = len(a.pending)
	return stats
}

// RefreshDebounced applies Refresh only when DebounceInterval has elapsed
// since the last applied refresh. The first refresh after the selection
// becomes non-empty always goes through.
func (a *Accountant) RefreshDebounced(st *tree.Store) (RefreshStats, bool) {
	// Emptying the selection clears immediately, and the first refresh after
	// it becomes non-empty again is exempt from the debounce.
	if st.SelectedFileCount() == 0 || !a.hadSelection {
		return a.Refresh(st), true
	}
	if a.now().Sub(a.lastRefresh) < a.debounce {
		return RefreshStats{}, false
	}
	return a.Refresh(st), true
}

// Apply merges one background result and reports whether the generation is
// now complete. Results for paths that were pruned while in flight are
// dropped; they must not resurrect a stale entry.
func (a *Accountant) Apply(path string, count int) bool {
	if _, tracked := a.cache[path]; tracked {
		a.cache[path] = entry{count: count, resolved: true}
	}
	delete(a.pending, path)
	return len(a.pending) == 0
}

// RecomputeTotals rebuilds the grand total and every relevant directory sum
// from the resolved file entries. Directory sums are zeroed first, so the
// pass is idempotent, and unresolved entries simply contribute nothing: the
// result is a correct partial total while computations are still pending.
func (a *Accountant) RecomputeTotals(st *tree.Store) {
	dirDesc := st.DirsWithSelectedDescendants()

	for path, n := range st.Nodes {
		if n.IsDir && st.Relevant(path, dirDesc) {
			a.cache[path] = entry{resolved: true}
		}
	}

	total := 0
	for _, file := range st.SelectedFiles() {
		e, ok := a.cache[file]
		if !ok || !e.resolved {
			continue
		}
		total += e.count
		st.Ancestors(file, func(dir *tree.Node) {
			if !st.Relevant(dir.Path, dirDesc) {
				return
			}
			de := a.cache[dir.Path]
			de.count += e.count
			de.resolved = true
			a.cache[dir.Path] = de
		})
	}
	a.total = total
}

// Total is the grand total over resolved selected files.
func (a *Accountant) Total() int {
	return a.total
}

// Count returns the resolved count for path. The second return is false for
// unknown or still-pending entries.
func (a *Accountant) Count(path string) (int, bool) {
	e, ok := a.cache[path]
	if !ok || !e.resolved {
		return 0, false
	}
	return e.count, true
}

// Tracked reports whether path currently has a cache entry at all.
func (a *Accountant) Tracked(path string) bool {
	_, ok := a.cache[path]
	return ok
}

// PendingCount is the number of computations still outstanding.
func (a *Accountant) PendingCount() int {
	return len(a.pending)
}

// Progress reports how far the current generation has come.
func (a *Accountant) Progress() (done, total int) {
	return a.generation - len(a.pending), a.generation
}

// Clear drops the whole cache and pending set, e.g. when the selection
// becomes empty.
func (a *Accountant) Clear() {
	a.cache = make(map[string]entry)
	a.pending = make(map[string]struct{})
	a.total = 0
	a.generation = 0
	a.hadSelection = false
}
