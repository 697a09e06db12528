package leak

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"weak"

	"github.com/guileen/leakdetect/logger"
)

// activeEntry is the shared value stored for every live tracker in a
// detector's active set; only the keys matter.
var activeEntry = new(struct{})

// Tracker observes a single resource without keeping it alive. Record marks
// significant accesses, Close marks the normal release. All methods are safe
// for concurrent use.
type Tracker[T any] struct {
	ref     weak.Pointer[T]
	cleanup runtime.Cleanup
	det     *Detector[T]

	// head is the top of the access trail. nil means closed, which is
	// terminal.
	head           atomic.Pointer[record]
	droppedRecords atomic.Int32
}

// Record captures the current call site on the access trail.
func (t *Tracker[T]) Record() {
	t.record0(nil, false)
}

// RecordHint captures the current call site together with caller context. A
// hint may implement Hint to control its rendering; anything else renders via
// fmt.
func (t *Tracker[T]) RecordHint(hint any) {
	t.record0(hint, true)
}

// record0 pushes an access record under compare-and-swap. Past the
// target-records depth, each push instead replaces the top record with
// probability 1 - 1/2^min(depth-target, 30): the newest access is always
// retained while the trail depth grows only logarithmically with the access
// count. Contention is only possible while the trail is short, which is also
// the only time no drop decision is needed.
func (t *Tracker[T]) record0(hint any, hasHint bool) {
	target := TargetRecords()
	if target <= 0 {
		return
	}
	var dropped bool
	for {
		oldHead := t.head.Load()
		if oldHead == nil {
			return // closed
		}
		prev := oldHead
		dropped = false
		if n := oldHead.pos + 1; n >= target {
			backOff := min(n-target, 30)
			if dropped = randInt(1<<backOff) != 0; dropped {
				prev = oldHead.next
			}
		}
		if t.head.CompareAndSwap(oldHead, newRecord(prev, hint, hasHint)) {
			break
		}
	}
	if dropped {
		t.droppedRecords.Add(1)
		t.det.stats.dropped.Add(1)
	}
}

// Close marks the resource as released. It returns true exactly once across
// all callers; later calls, and a dispose that lost the race, observe false.
func (t *Tracker[T]) Close() bool {
	if !t.det.active.CompareAndDelete(t, activeEntry) {
		return false
	}
	// Stop the cleanup first so the referent can no longer reach the reclaim
	// queue.
	t.cleanup.Stop()
	t.head.Store(nil)
	t.det.stats.closed.Add(1)
	return true
}

// CloseWith is Close for callers still holding the resource: it checks the
// tracker was created for obj and keeps obj reachable until the close has
// finished, so the runtime cannot reclaim it mid-close and report a spurious
// leak.
func (t *Tracker[T]) CloseWith(obj *T) bool {
	if obj != nil && weak.Make(obj) != t.ref {
		logger.Warn("tracker closed with a different resource",
			"resource_type", t.det.resourceType)
	}
	closed := t.Close()
	runtime.KeepAlive(obj)
	return closed && obj != nil
}

// dispose retires a tracker whose referent was reclaimed. True means the
// tracker was still live, i.e. the resource leaked.
func (t *Tracker[T]) dispose() bool {
	if !t.det.active.CompareAndDelete(t, activeEntry) {
		return false
	}
	t.det.stats.disposed.Add(1)
	return true
}

// trail renders and consumes the access trail. It yields the empty string if
// the tracker is closed, was already rendered, or never recorded an access.
func (t *Tracker[T]) trail() string {
	oldHead := t.head.Swap(nil)
	if oldHead == nil || oldHead == bottom {
		return ""
	}

	dropped := int(t.droppedRecords.Load())
	duped := 0

	var b strings.Builder
	b.WriteString("\nRecent access records: \n")

	seen := make(map[string]struct{}, oldHead.pos+1)
	i := 1
	for r := oldHead; r != bottom; r = r.next {
		s := r.render()
		if _, dup := seen[s]; dup {
			duped++
			continue
		}
		seen[s] = struct{}{}
		if r.next == bottom {
			b.WriteString("Created at:\n")
		} else {
			fmt.Fprintf(&b, "#%d:\n", i)
			i++
		}
		b.WriteString(s)
	}

	if duped > 0 {
		fmt.Fprintf(&b, ": %d leak records were discarded because they were duplicates\n", duped)
	}
	if dropped > 0 {
		fmt.Fprintf(&b, ": %d leak records were discarded because the leak record count is targeted to %d. Set %s to increase the limit.\n",
			dropped, TargetRecords(), PropTargetRecords)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
