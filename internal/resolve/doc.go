// Package resolve turns raw detections into one chosen screen target.
//
// A Controller run repeats a detection cycle (anchor lookup, then target
// selection) until a target is resolved or attempts run out. Per-attempt
// failures drive the retry and backtrack policy; only the terminal outcome
// is returned to the caller.
package resolve
