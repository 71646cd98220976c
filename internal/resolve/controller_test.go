package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/model"
)

func baseConfig() Config {
	return Config{Confidence: 0.9, MaxDistance: 200, MaxAttempts: 3}
}

func TestRun_ResolvesNearestTarget(t *testing.T) {
	d := newFakeDetector()
	d.set("anchor.png", cand(100, 100, 0.97))
	d.set("target.png", cand(500, 500, 0.99), cand(120, 110, 0.95))

	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(baseConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if out.Target.Position != (model.Point{X: 120, Y: 110}) {
		t.Errorf("target = %v, want (120,110)", out.Target.Position)
	}
	if len(out.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(out.Attempts))
	}
	if out.RunID == "" {
		t.Error("expected a run id")
	}
	rec := out.Attempts[0]
	if !rec.AnchorFound || rec.CandidateCount != 2 || rec.Selected == nil {
		t.Errorf("unexpected attempt record %+v", rec)
	}
}

func TestRun_ExhaustsAttemptsWithBacktrack(t *testing.T) {
	d := newFakeDetector()
	d.set("anchor.png", cand(100, 100, 0.97))

	cfg := baseConfig()
	cfg.Backtrack = true
	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(cfg))

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if re.Reason != model.ReasonResolutionFailed || re.LastReason != model.ReasonNoTargetInRange {
		t.Errorf("got %s/%s, want resolution_failed/no_target_in_range", re.Reason, re.LastReason)
	}
	if re.Attempts != 3 || len(out.Attempts) != 3 {
		t.Errorf("attempts = %d (%d records), want 3", re.Attempts, len(out.Attempts))
	}
	if n := len(d.callsFor("anchor.png")); n != 3 {
		t.Errorf("anchor detections = %d, want 3", n)
	}
}

func TestRun_NeverExceedsMaxAttempts(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		d := newFakeDetector()
		cfg := baseConfig()
		cfg.MaxAttempts = n
		_, err := NewController(d, nil).Run(context.Background(), anchorPlan(cfg))
		if err == nil {
			t.Fatalf("maxAttempts=%d: expected failure", n)
		}
		if got := len(d.calls); got != n {
			t.Errorf("maxAttempts=%d: %d detection calls, want %d", n, got, n)
		}
	}
}

func TestRun_PersistentAmbiguity(t *testing.T) {
	d := newFakeDetector()
	d.set("anchor.png", cand(100, 100, 0.99), cand(400, 100, 0.95))
	d.set("target.png", cand(120, 110, 0.95))

	cfg := baseConfig()
	cfg.Backtrack = true
	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(cfg))

	var re *Error
	if !errors.As(err, &re) || re.LastReason != model.ReasonAmbiguousAnchor {
		t.Fatalf("expected ambiguous_anchor as last reason, got %v", err)
	}
	for _, rec := range out.Attempts {
		if rec.Reason != model.ReasonAmbiguousAnchor || rec.CandidateCount != 2 {
			t.Errorf("attempt %d: %+v", rec.Attempt, rec)
		}
	}
	if n := len(d.callsFor("target.png")); n != 0 {
		t.Errorf("target detected %d times, want 0", n)
	}
}

func TestRun_BacktrackWidensSearch(t *testing.T) {
	d := newFakeDetector()
	d.set("anchor.png", cand(100, 100, 0.97))
	// Only clears the threshold once it has been relaxed.
	d.set("target.png", cand(120, 110, 0.87))

	cfg := baseConfig()
	cfg.Backtrack = true
	cfg.SearchRegion = &model.Region{X: 0, Y: 0, Width: 300, Height: 300}
	cfg.TargetRegion = &model.Region{X: 0, Y: 0, Width: 300, Height: 300}
	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(out.Attempts))
	}

	anchorCalls := d.callsFor("anchor.png")
	if anchorCalls[0].region == nil || anchorCalls[0].threshold != 0.9 {
		t.Errorf("first attempt: region=%v threshold=%v, want configured region at 0.9", anchorCalls[0].region, anchorCalls[0].threshold)
	}
	if anchorCalls[1].region != nil {
		t.Errorf("backtrack attempt searched %v, want full screen", anchorCalls[1].region)
	}
	if th := anchorCalls[1].threshold; th >= 0.9 || th < 0.849 {
		t.Errorf("backtrack threshold = %v, want base minus one step", th)
	}
	if !out.Attempts[1].Backtrack || out.Attempts[0].Backtrack {
		t.Errorf("backtrack flags = %v,%v", out.Attempts[0].Backtrack, out.Attempts[1].Backtrack)
	}
}

func TestRun_BacktrackDoesNotCompound(t *testing.T) {
	d := newFakeDetector()
	cfg := baseConfig()
	cfg.Backtrack = true
	cfg.MaxAttempts = 4
	_, _ = NewController(d, nil).Run(context.Background(), anchorPlan(cfg))

	calls := d.callsFor("anchor.png")
	if len(calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(calls))
	}
	for i := 2; i < len(calls); i++ {
		if calls[i].threshold != calls[1].threshold {
			t.Errorf("attempt %d threshold %v differs from attempt 2 threshold %v", i+1, calls[i].threshold, calls[1].threshold)
		}
	}
}

func TestRun_BacktrackConfidenceFloor(t *testing.T) {
	c := NewController(newFakeDetector(), nil)
	cfg := baseConfig()
	cfg.Confidence = 0.02
	cfg.Backtrack = true
	p := c.paramsFor(cfg, 2)
	if p.confidence != 0 {
		t.Errorf("confidence = %v, want 0", p.confidence)
	}
	if p := c.paramsFor(cfg, 1); p.confidence != 0.02 || p.backtrack {
		t.Errorf("first attempt params = %+v", p)
	}
	cfg.Backtrack = false
	if p := c.paramsFor(cfg, 3); p.confidence != 0.02 || p.backtrack {
		t.Errorf("no-backtrack params = %+v", p)
	}
}

func TestRun_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newFakeDetector()
	d.onCall = func(n int, q model.Query) { cancel() }

	cfg := baseConfig()
	cfg.Delay = time.Second
	start := time.Now()
	_, err := NewController(d, nil).Run(ctx, anchorPlan(cfg))

	var re *Error
	if !errors.As(err, &re) || re.Reason != model.ReasonCancelled {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cause should be context.Canceled, got %v", re.Cause)
	}
	if len(d.calls) != 1 {
		t.Errorf("detection calls = %d, want 1", len(d.calls))
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancellation did not interrupt the delay")
	}
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := baseConfig()
	cfg.Delay = 5 * time.Second
	d := newFakeDetector()
	_, err := NewController(d, nil).Run(ctx, anchorPlan(cfg))

	var re *Error
	if !errors.As(err, &re) || re.Reason != model.ReasonCancelled {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if re.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", re.Attempts)
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newFakeDetector()
	_, err := NewController(d, nil).Run(ctx, anchorPlan(baseConfig()))
	var re *Error
	if !errors.As(err, &re) || re.Reason != model.ReasonCancelled {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if len(d.calls) != 0 {
		t.Errorf("detector called %d times", len(d.calls))
	}
}

func TestRun_InvalidInputStopsRetries(t *testing.T) {
	d := newFakeDetector()
	d.errs["anchor.png"] = fmt.Errorf("open anchor.png: %w", ErrInvalidInput)

	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(baseConfig()))
	var re *Error
	if !errors.As(err, &re) || re.Reason != model.ReasonInvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
	if len(d.calls) != 1 || len(out.Attempts) != 1 {
		t.Errorf("calls=%d records=%d, want 1 each", len(d.calls), len(out.Attempts))
	}
}

func TestRun_DetectorErrorIsRetried(t *testing.T) {
	d := newFakeDetector()
	d.set("anchor.png", cand(100, 100, 0.97))
	d.set("target.png", cand(120, 110, 0.95))
	d.errs["anchor.png"] = errors.New("capture failed")
	d.onCall = func(n int, q model.Query) {
		if n == 1 {
			delete(d.errs, "anchor.png")
		}
	}

	out, err := NewController(d, nil).Run(context.Background(), anchorPlan(baseConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(out.Attempts))
	}
	if out.Attempts[0].Reason != model.ReasonDetectorError || out.Attempts[0].Detail == "" {
		t.Errorf("first attempt = %+v", out.Attempts[0])
	}
}

func TestRun_AnchorlessText(t *testing.T) {
	d := newFakeDetector()
	d.set("Submit", cand(700, 20, 0.91), cand(50, 400, 0.96))

	region := &model.Region{X: 0, Y: 0, Width: 800, Height: 600}
	plan := Plan{Target: model.TextQuery("Submit"), Config: Config{Confidence: 0.9, MaxAttempts: 1, SearchRegion: region}}
	out, err := NewController(d, nil).Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if out.Target.Position != (model.Point{X: 50, Y: 400}) {
		t.Errorf("target = %v, want (50,400)", out.Target.Position)
	}
	if d.calls[0].region != region {
		t.Errorf("anchorless lookup searched %v, want the search region", d.calls[0].region)
	}
}

func TestPlanValidate(t *testing.T) {
	anchor := model.ImageQuery("a.png")
	tests := []struct {
		name  string
		plan  Plan
		field string
	}{
		{"confidence above one", Plan{Anchor: &anchor, Target: model.ImageQuery("t.png"), Config: Config{Confidence: 1.5, MaxDistance: 10, MaxAttempts: 1}}, "confidence"},
		{"zero attempts", Plan{Anchor: &anchor, Target: model.ImageQuery("t.png"), Config: Config{Confidence: 0.5, MaxDistance: 10}}, "max_attempts"},
		{"negative delay", Plan{Anchor: &anchor, Target: model.ImageQuery("t.png"), Config: Config{Confidence: 0.5, MaxDistance: 10, MaxAttempts: 1, Delay: -time.Second}}, "delay"},
		{"zero distance", Plan{Anchor: &anchor, Target: model.ImageQuery("t.png"), Config: Config{Confidence: 0.5, MaxAttempts: 1}}, "max_distance"},
		{"empty target", Plan{Anchor: &anchor, Config: Config{Confidence: 0.5, MaxDistance: 10, MaxAttempts: 1}}, "target"},
		{"empty region", Plan{Target: model.TextQuery("x"), Config: Config{Confidence: 0.5, MaxAttempts: 1, SearchRegion: &model.Region{Width: 0, Height: 5}}}, "search_region"},
		{"empty target region", Plan{Target: model.TextQuery("x"), Config: Config{Confidence: 0.5, MaxAttempts: 1, TargetRegion: &model.Region{Width: 5}}}, "target_region"},
		{"both regions empty", Plan{Target: model.TextQuery("x"), Config: Config{Confidence: 0.5, MaxAttempts: 1, SearchRegion: &model.Region{Height: 5}, TargetRegion: &model.Region{Width: 5}}}, "search_region"},
	}
	for _, tt := range tests {
		err := tt.plan.Validate()
		for i := 0; i < 20; i++ {
			if again := tt.plan.Validate(); fmt.Sprint(again) != fmt.Sprint(err) {
				t.Errorf("%s: Validate is not deterministic: %v then %v", tt.name, err, again)
				break
			}
		}
		var ce *config.Error
		if !errors.As(err, &ce) {
			t.Errorf("%s: expected *config.Error, got %v", tt.name, err)
			continue
		}
		if ce.Field != tt.field {
			t.Errorf("%s: field = %q, want %q", tt.name, ce.Field, tt.field)
		}
	}

	ok := Plan{Anchor: &anchor, Target: model.ImageQuery("t.png"), Config: baseConfig()}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}
}

func TestRun_InvalidPlanDetectsNothing(t *testing.T) {
	d := newFakeDetector()
	_, err := NewController(d, nil).Run(context.Background(), Plan{Target: model.TextQuery("x")})
	var ce *config.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if len(d.calls) != 0 {
		t.Errorf("detector called %d times", len(d.calls))
	}
}
