package resolve

import (
	"context"
	"sync"

	"github.com/mj1618/botvision/internal/model"
)

type detectCall struct {
	query     model.Query
	region    *model.Region
	threshold float64
}

// fakeDetector serves fixed candidates per query value and honours the
// threshold and ordering contract of Detector.
type fakeDetector struct {
	mu      sync.Mutex
	results map[string][]model.Candidate
	errs    map[string]error
	calls   []detectCall
	onCall  func(n int, q model.Query)
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{results: map[string][]model.Candidate{}, errs: map[string]error{}}
}

func (f *fakeDetector) set(value string, cands ...model.Candidate) {
	f.results[value] = cands
}

func (f *fakeDetector) Detect(ctx context.Context, q model.Query, region *model.Region, threshold float64) ([]model.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, detectCall{query: q, region: region, threshold: threshold})
	n := len(f.calls)
	hook := f.onCall
	err := f.errs[q.Value]
	f.mu.Unlock()
	if hook != nil {
		hook(n, q)
	}
	if err != nil {
		return nil, err
	}
	var out []model.Candidate
	for _, c := range f.results[q.Value] {
		if c.Confidence >= threshold {
			out = append(out, c)
		}
	}
	model.SortCandidates(out)
	return out, nil
}

func (f *fakeDetector) callsFor(value string) []detectCall {
	var out []detectCall
	for _, c := range f.calls {
		if c.query.Value == value {
			out = append(out, c)
		}
	}
	return out
}

func cand(x, y int, conf float64) model.Candidate {
	return model.Candidate{Position: model.Point{X: x, Y: y}, Confidence: conf}
}

func anchorPlan(cfg Config) Plan {
	a := model.ImageQuery("anchor.png")
	return Plan{Anchor: &a, Target: model.ImageQuery("target.png"), Config: cfg}
}
