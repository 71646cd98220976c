package resolve

import (
	"context"

	"github.com/mj1618/botvision/internal/model"
)

// ResolveAnchor finds the single instance of an anchor image.
//
// Zero candidates is AnchorNotFound and more than one is AmbiguousAnchor, even
// when one candidate scores far higher than the rest.
func ResolveAnchor(ctx context.Context, d Detector, q model.Query, region *model.Region, threshold float64) (model.Candidate, error) {
	q.Kind = model.SourceImage
	cands, err := d.Detect(ctx, q, region, threshold)
	if err != nil {
		return model.Candidate{}, err
	}
	switch len(cands) {
	case 0:
		return model.Candidate{}, &stageError{reason: model.ReasonAnchorNotFound}
	case 1:
		return cands[0], nil
	default:
		return model.Candidate{}, &stageError{reason: model.ReasonAmbiguousAnchor, count: len(cands)}
	}
}
