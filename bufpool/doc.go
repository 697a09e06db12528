// Package bufpool provides pooled, reference-counted byte buffers with
// integrated leak detection. Buffers are acquired from a Pool with a
// reference count of one and must be released; a buffer reclaimed by the
// runtime while still referenced is reported as a leak together with its
// recent access trail.
package bufpool
