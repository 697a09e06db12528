package leak

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/google/uuid"
)

// Detector installs trackers for one resource type behind a sampling gate and
// turns reclaimed-but-unclosed trackers into leak reports. Reports are
// deduplicated by their rendered access trail and emitted at most once each.
type Detector[T any] struct {
	id               uuid.UUID
	resourceType     string
	samplingInterval int

	reporter atomic.Pointer[Reporter]

	// active holds every live tracker; values are the shared activeEntry.
	active sync.Map
	// reportedTrails dedupes emitted reports by rendered trail.
	reportedTrails sync.Map
	reclaim        reclaimQueue[T]
	stats          counters
}

// NewDetector creates a detector for the given resource-type label with the
// default sampling interval.
func NewDetector[T any](resourceType string) (*Detector[T], error) {
	return NewDetectorWithInterval[T](resourceType, DefaultSamplingInterval)
}

// NewDetectorWithInterval creates a detector sampling one allocation in
// samplingInterval below LevelParanoid. An interval of 1 samples every
// allocation.
func NewDetectorWithInterval[T any](resourceType string, samplingInterval int) (*Detector[T], error) {
	if resourceType == "" {
		return nil, fmt.Errorf("new detector: %w", ErrEmptyResourceType)
	}
	if samplingInterval < 1 {
		return nil, fmt.Errorf("new detector %q: %w", resourceType, ErrInvalidSamplingInterval)
	}
	d := &Detector[T]{
		id:               uuid.New(),
		resourceType:     resourceType,
		samplingInterval: samplingInterval,
	}
	var rep Reporter = LogReporter{}
	d.reporter.Store(&rep)
	registerDetector(d.id, d)
	return d, nil
}

// Track installs a tracker for obj subject to the sampling gate. A nil return
// means the allocation was not sampled; callers must treat it as a no-op.
func (d *Detector[T]) Track(obj *T) *Tracker[T] {
	if obj == nil {
		return nil
	}
	switch lvl := GetLevel(); {
	case lvl == LevelDisabled:
		return nil
	case lvl < LevelParanoid:
		if randInt(d.samplingInterval) != 0 {
			d.stats.sampledOut.Add(1)
			return nil
		}
	}
	d.drainReclaimed()
	return d.install(obj)
}

func (d *Detector[T]) install(obj *T) *Tracker[T] {
	t := &Tracker[T]{det: d, ref: weak.Make(obj)}
	t.head.Store(bottom)
	d.active.Store(t, activeEntry)
	// The cleanup captures only the tracker, never obj, so tracking cannot
	// keep the resource alive.
	t.cleanup = runtime.AddCleanup(obj, d.reclaim.push, t)
	d.stats.tracked.Add(1)
	return t
}

// drainReclaimed empties the reclaim queue, retiring each tracker and
// emitting one report per unique access trail.
func (d *Detector[T]) drainReclaimed() {
	rep := *d.reporter.Load()
	if !rep.Enabled() {
		// Nothing would be emitted; retire trackers without rendering.
		for t := d.reclaim.poll(); t != nil; t = d.reclaim.poll() {
			t.dispose()
		}
		return
	}

	for t := d.reclaim.poll(); t != nil; t = d.reclaim.poll() {
		if !t.dispose() {
			continue // closed normally before the drain got here
		}
		records := t.trail()
		if _, dup := d.reportedTrails.LoadOrStore(records, struct{}{}); dup {
			continue
		}
		d.stats.reported.Add(1)
		rep.ReportLeak(Report{
			ID:           uuid.New(),
			ResourceType: d.resourceType,
			Records:      records,
			Time:         time.Now(),
		})
	}
}

// SetReporter replaces the reporter leak reports are delivered to. A nil
// reporter is ignored.
func (d *Detector[T]) SetReporter(r Reporter) {
	if r == nil {
		return
	}
	d.reporter.Store(&r)
}

// ResourceType returns the detector's resource-type label.
func (d *Detector[T]) ResourceType() string {
	return d.resourceType
}

// SamplingInterval returns the configured sampling interval.
func (d *Detector[T]) SamplingInterval() int {
	return d.samplingInterval
}

// Stats returns a snapshot of the detector's activity counters.
func (d *Detector[T]) Stats() Stats {
	return d.stats.snapshot()
}

// ActiveCount counts trackers that are neither closed nor disposed.
func (d *Detector[T]) ActiveCount() int {
	n := 0
	d.active.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Unregister removes the detector from the process-wide registry. Trackers it
// already installed keep working.
func (d *Detector[T]) Unregister() {
	detectors.Delete(d.id)
}
