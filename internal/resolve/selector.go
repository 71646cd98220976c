package resolve

import (
	"github.com/mj1618/botvision/internal/model"
)

// SelectTarget picks one candidate.
//
// With an anchor, candidates farther than maxDistance are dropped. With a
// region, candidates outside it are dropped. The survivor with the highest
// confidence wins; ties go to the one closest to the anchor, then to the
// first in scan order. Without an anchor the distance filter is skipped and
// DistanceFromAnchor is zero.
func SelectTarget(anchor *model.Point, cands []model.Candidate, maxDistance float64, region *model.Region) (model.ResolvedTarget, error) {
	var (
		best     model.Candidate
		bestDist float64
		found    bool
	)
	for _, c := range cands {
		if region != nil && !region.Contains(c.Position) {
			continue
		}
		var dist float64
		if anchor != nil {
			dist = anchor.Distance(c.Position)
			if dist > maxDistance {
				continue
			}
		}
		if !found || better(c, dist, best, bestDist) {
			best, bestDist, found = c, dist, true
		}
	}
	if !found {
		return model.ResolvedTarget{}, &stageError{reason: model.ReasonNoTargetInRange, count: len(cands)}
	}
	rt := model.ResolvedTarget{
		Position:           best.Position,
		Confidence:         best.Confidence,
		DistanceFromAnchor: bestDist,
	}
	if anchor != nil {
		a := *anchor
		rt.Anchor = &a
	}
	return rt, nil
}

func better(c model.Candidate, dist float64, best model.Candidate, bestDist float64) bool {
	if c.Confidence != best.Confidence {
		return c.Confidence > best.Confidence
	}
	if dist != bestDist {
		return dist < bestDist
	}
	return model.ScanBefore(c.Position, best.Position)
}
