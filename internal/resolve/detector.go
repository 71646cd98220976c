package resolve

import (
	"context"
	"errors"

	"github.com/mj1618/botvision/internal/model"
)

// ErrInvalidInput marks detector errors that no retry can fix: an unreadable
// template, an empty region, a missing OCR engine. Detectors wrap it.
var ErrInvalidInput = errors.New("invalid detector input")

// Detector finds candidates for a query inside a screen region.
//
// Implementations return candidates sorted by model.SortCandidates and an
// empty slice, not an error, when nothing clears threshold. A nil region
// means the full screen.
type Detector interface {
	Detect(ctx context.Context, q model.Query, region *model.Region, threshold float64) ([]model.Candidate, error)
}
