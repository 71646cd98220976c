package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
)

// DefaultBacktrackStep is how far a backtrack attempt lowers the confidence threshold.
const DefaultBacktrackStep = 0.05

// Config is the per-call resolution configuration. It is passed by value and
// never modified during a run.
type Config struct {
	Confidence   float64
	MaxDistance  float64
	Backtrack    bool
	MaxAttempts  int
	Delay        time.Duration
	SearchRegion *model.Region // anchor search area; nil = full screen
	TargetRegion *model.Region // target restriction; nil = no restriction
}

// Plan says what to resolve. Anchor is nil for plain text/image lookups.
type Plan struct {
	Anchor *model.Query
	Target model.Query
	Config Config
}

// Validate rejects plans that no attempt could satisfy.
func (p Plan) Validate() error {
	c := p.Config
	if c.Confidence < 0 || c.Confidence > 1 {
		return &config.Error{Field: "confidence", Msg: fmt.Sprintf("%v is outside [0,1]", c.Confidence)}
	}
	if c.MaxAttempts < 1 {
		return &config.Error{Field: "max_attempts", Msg: fmt.Sprintf("must be at least 1, got %d", c.MaxAttempts)}
	}
	if c.Delay < 0 {
		return &config.Error{Field: "delay", Msg: "must not be negative"}
	}
	if p.Anchor != nil {
		if p.Anchor.Value == "" {
			return &config.Error{Field: "anchor", Msg: "anchor image is required"}
		}
		if c.MaxDistance <= 0 {
			return &config.Error{Field: "max_distance", Msg: fmt.Sprintf("must be positive, got %v", c.MaxDistance)}
		}
	}
	if p.Target.Value == "" {
		return &config.Error{Field: "target", Msg: "target query is required"}
	}
	if err := checkRegion("search_region", c.SearchRegion); err != nil {
		return err
	}
	return checkRegion("target_region", c.TargetRegion)
}

func checkRegion(field string, r *model.Region) error {
	if r != nil && !r.Valid() {
		return &config.Error{Field: field, Msg: fmt.Sprintf("region %s has no area", r)}
	}
	return nil
}

// Outcome is what a successful run returns. Attempts is filled on failure too.
type Outcome struct {
	RunID    string
	Target   model.ResolvedTarget
	Attempts []model.AttemptRecord
}

// Controller runs the attempt loop. The zero value is not usable; Detector is required.
type Controller struct {
	Detector      Detector
	Log           logger.Logger
	BacktrackStep float64
}

// NewController creates a controller with the default backtrack step.
func NewController(d Detector, l logger.Logger) *Controller {
	if l == nil {
		l = logger.NewNop()
	}
	return &Controller{Detector: d, Log: l, BacktrackStep: DefaultBacktrackStep}
}

// attemptParams are the effective search settings of one attempt.
type attemptParams struct {
	confidence float64
	search     *model.Region
	target     *model.Region
	backtrack  bool
}

// paramsFor applies the backtrack policy: every attempt after the first
// searches the full screen at one step below the base confidence.
func (c *Controller) paramsFor(cfg Config, attempt int) attemptParams {
	if !cfg.Backtrack || attempt == 1 {
		return attemptParams{confidence: cfg.Confidence, search: cfg.SearchRegion, target: cfg.TargetRegion}
	}
	return attemptParams{
		confidence: max(0, cfg.Confidence-c.BacktrackStep),
		backtrack:  true,
	}
}

// Run resolves plan to a single target.
//
// It returns *config.Error for an invalid plan and *Error once attempts are
// exhausted, the context is cancelled, or the detector reports invalid input.
func (c *Controller) Run(ctx context.Context, plan Plan) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	if err := plan.Validate(); err != nil {
		return out, err
	}
	cfg := plan.Config
	log := c.logger().With("run", out.RunID, "target", plan.Target.String())

	var last model.Reason
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return out, c.cancelled(log, len(out.Attempts), err)
		}

		p := c.paramsFor(cfg, attempt)
		rec, rt, err := c.attempt(ctx, plan, p)
		rec.Attempt = attempt
		out.Attempts = append(out.Attempts, rec)

		if err == nil {
			out.Target = rt
			log.Info("target resolved",
				"attempt", attempt,
				"backtrack", p.backtrack,
				"x", rt.Position.X,
				"y", rt.Position.Y,
				"confidence", rt.Confidence)
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, c.cancelled(log, attempt, ctxErr)
		}
		if errors.Is(err, ErrInvalidInput) {
			log.Err(err, "detector rejected input", "attempt", attempt)
			return out, &Error{Reason: model.ReasonInvalidInput, LastReason: rec.Reason, Attempts: attempt, Cause: err}
		}

		last = rec.Reason
		log.Debug("attempt failed",
			"attempt", attempt,
			"max", cfg.MaxAttempts,
			"backtrack", p.backtrack,
			"confidence", p.confidence,
			"reason", string(rec.Reason),
			"detail", rec.Detail)

		if attempt == cfg.MaxAttempts {
			break
		}
		if err := wait(ctx, cfg.Delay); err != nil {
			return out, c.cancelled(log, attempt, err)
		}
	}

	log.Warn("resolution failed", "attempts", cfg.MaxAttempts, "reason", string(last))
	return out, &Error{Reason: model.ReasonResolutionFailed, LastReason: last, Attempts: cfg.MaxAttempts}
}

// attempt runs one detection cycle against freshly captured screen state.
func (c *Controller) attempt(ctx context.Context, plan Plan, p attemptParams) (model.AttemptRecord, model.ResolvedTarget, error) {
	rec := model.AttemptRecord{Confidence: p.confidence, Backtrack: p.backtrack}

	var anchorPos *model.Point
	targetRegion := p.target
	if plan.Anchor != nil {
		anchor, err := ResolveAnchor(ctx, c.Detector, *plan.Anchor, p.search, p.confidence)
		if err != nil {
			return failed(rec, err), model.ResolvedTarget{}, err
		}
		rec.AnchorFound = true
		pos := anchor.Position
		anchorPos = &pos
	} else if targetRegion == nil {
		targetRegion = p.search
	}

	cands, err := c.Detector.Detect(ctx, plan.Target, targetRegion, p.confidence)
	if err != nil {
		return failed(rec, err), model.ResolvedTarget{}, err
	}
	rec.CandidateCount = len(cands)

	rt, err := SelectTarget(anchorPos, cands, plan.Config.MaxDistance, p.target)
	if err != nil {
		return failed(rec, err), model.ResolvedTarget{}, err
	}
	sel := rt.Position
	rec.Selected = &sel
	return rec, rt, nil
}

func failed(rec model.AttemptRecord, err error) model.AttemptRecord {
	var se *stageError
	switch {
	case errors.As(err, &se):
		rec.Reason = se.reason
		if se.reason == model.ReasonAmbiguousAnchor {
			rec.CandidateCount = se.count
		}
	case errors.Is(err, ErrInvalidInput):
		rec.Reason = model.ReasonInvalidInput
		rec.Detail = err.Error()
	default:
		rec.Reason = model.ReasonDetectorError
		rec.Detail = err.Error()
	}
	return rec
}

func (c *Controller) cancelled(log logger.Logger, attempts int, cause error) error {
	log.Info("resolution cancelled", "attempts", attempts)
	return &Error{Reason: model.ReasonCancelled, Attempts: attempts, Cause: cause}
}

func (c *Controller) logger() logger.Logger {
	if c.Log == nil {
		return logger.NewNop()
	}
	return c.Log
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
