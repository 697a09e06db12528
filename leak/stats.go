package leak

import "sync/atomic"

// counters aggregates detector activity. Hot paths touch individual fields
// with atomics; Stats takes a point-in-time snapshot.
type counters struct {
	tracked    atomic.Uint64
	sampledOut atomic.Uint64
	closed     atomic.Uint64
	disposed   atomic.Uint64
	reported   atomic.Uint64
	dropped    atomic.Uint64
}

// Stats is a point-in-time snapshot of one detector's activity.
type Stats struct {
	// Tracked counts installed trackers.
	Tracked uint64 `json:"tracked"`
	// SampledOut counts Track calls that fell through the sampling gate.
	SampledOut uint64 `json:"sampled_out"`
	// Closed counts trackers released normally via Close.
	Closed uint64 `json:"closed"`
	// Disposed counts trackers retired by the reclaim drain, i.e. leaks.
	Disposed uint64 `json:"disposed"`
	// Reported counts emitted leak reports (after deduplication).
	Reported uint64 `json:"reported"`
	// DroppedRecords counts access records discarded by trail back-off.
	DroppedRecords uint64 `json:"dropped_records"`
}

func (c *counters) snapshot() Stats {
	return Stats{
		Tracked:        c.tracked.Load(),
		SampledOut:     c.sampledOut.Load(),
		Closed:         c.closed.Load(),
		Disposed:       c.disposed.Load(),
		Reported:       c.reported.Load(),
		DroppedRecords: c.dropped.Load(),
	}
}
