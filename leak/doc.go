// Package leak provides sampling leak detection for reference-counted
// resources. A Detector installs a Tracker on a sampled fraction of
// allocations; the Tracker observes the resource weakly, records where it was
// accessed, and if the runtime reclaims the resource before Close was called,
// the Detector reports the leak together with the recent access trail.
package leak
