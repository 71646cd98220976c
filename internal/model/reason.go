package model

// Reason is a machine-readable failure cause. Automation scripts branch on it.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonAnchorNotFound   Reason = "anchor_not_found"
	ReasonAmbiguousAnchor  Reason = "ambiguous_anchor"
	ReasonNoTargetInRange  Reason = "no_target_in_range"
	ReasonResolutionFailed Reason = "resolution_failed"
	ReasonInvalidInput     Reason = "invalid_input"
	ReasonDispatchError    Reason = "action_dispatch_error"
	ReasonCancelled        Reason = "cancelled"
	ReasonConfiguration    Reason = "configuration_error"
	ReasonDetectorError    Reason = "detector_error"
)

// NotMatched reports whether r means the screen simply did not contain what was asked for.
func (r Reason) NotMatched() bool {
	switch r {
	case ReasonAnchorNotFound, ReasonNoTargetInRange, ReasonDetectorError:
		return true
	}
	return false
}
