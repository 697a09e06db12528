package bufpool

import (
	"sync"
	"sync/atomic"

	"github.com/guileen/leakdetect/leak"
)

// defaultBufferCap is the initial capacity of freshly created buffers.
const defaultBufferCap = 256

// Pool hands out reference-counted buffers backed by a sync.Pool. Every
// lease runs through the pool's leak detector: a buffer that is never
// released shows up as a leak report once the runtime reclaims it.
type Pool struct {
	name     string
	pool     sync.Pool
	detector *leak.Detector[Buffer]

	acquired uint64
	released uint64
	created  uint64
}

// NewPool creates a buffer pool with the default sampling interval.
func NewPool() *Pool {
	p, err := NewPoolWithInterval(leak.DefaultSamplingInterval)
	if err != nil {
		// Only reachable with an invalid constant.
		panic(err)
	}
	return p
}

// NewPoolWithInterval creates a buffer pool whose leak detector samples one
// lease in samplingInterval.
func NewPoolWithInterval(samplingInterval int) (*Pool, error) {
	detector, err := leak.NewDetectorWithInterval[Buffer]("bufpool.Buffer", samplingInterval)
	if err != nil {
		return nil, err
	}
	p := &Pool{
		name:     "buffer",
		detector: detector,
	}
	p.pool.New = func() any {
		atomic.AddUint64(&p.created, 1)
		return &Buffer{data: make([]byte, 0, defaultBufferCap), pool: p}
	}
	return p, nil
}

// Get acquires a buffer with at least the given capacity and a reference
// count of one. The lease is subject to the detector's sampling gate; when
// sampled, the acquisition site becomes the trail's creation record.
func (p *Pool) Get(size int) *Buffer {
	buf := p.pool.Get().(*Buffer)
	if cap(buf.data) < size {
		buf.data = make([]byte, 0, size)
	} else {
		buf.data = buf.data[:0]
	}
	buf.refCnt.Store(1)
	buf.tracker = p.detector.Track(buf)
	if buf.tracker != nil {
		buf.tracker.Record()
	}
	atomic.AddUint64(&p.acquired, 1)
	return buf
}

// put returns a fully released buffer to the pool.
func (p *Pool) put(b *Buffer) {
	b.data = b.data[:0]
	atomic.AddUint64(&p.released, 1)
	p.pool.Put(b)
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Detector returns the pool's leak detector.
func (p *Pool) Detector() *leak.Detector[Buffer] {
	return p.detector
}

// Stats returns pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Name:     p.name,
		Acquired: atomic.LoadUint64(&p.acquired),
		Released: atomic.LoadUint64(&p.released),
		Created:  atomic.LoadUint64(&p.created),
	}
}

// PoolStats represents statistics for a pool
type PoolStats struct {
	Name     string
	Acquired uint64
	Released uint64
	Created  uint64
}
