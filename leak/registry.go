package leak

import (
	"sync"

	"github.com/google/uuid"
)

// DetectorInfo is the read-only view of a detector the process-wide registry
// exposes for introspection (debug API, metrics collectors).
type DetectorInfo interface {
	ResourceType() string
	SamplingInterval() int
	Stats() Stats
	ActiveCount() int
}

// detectors holds every live detector, keyed by its id. Resource-type labels
// are not unique keys: two detectors may share a label.
var detectors sync.Map

func registerDetector(id uuid.UUID, d DetectorInfo) {
	detectors.Store(id, d)
}

// Detectors snapshots every registered detector in the process.
func Detectors() []DetectorInfo {
	var out []DetectorInfo
	detectors.Range(func(_, v any) bool {
		out = append(out, v.(DetectorInfo))
		return true
	})
	return out
}
