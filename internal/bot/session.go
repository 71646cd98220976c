// Package bot is the public entry point of the engine: resolve a target on
// screen, act on it, mark it.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/botvision/internal/action"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/overlay"
	"github.com/mj1618/botvision/internal/platform"
	"github.com/mj1618/botvision/internal/resolve"
	"github.com/mj1618/botvision/internal/vision"
)

// RelativeClick asks for a click on the target instance nearest to a unique anchor.
type RelativeClick struct {
	Anchor       string      // anchor template path
	Target       model.Query // image or text
	MaxDistance  float64
	Confidence   float64       // 0 uses the configured threshold; 1-100 is a percentage
	Delay        time.Duration // pause after the click
	Button       platform.MouseButton
	Backtrack    bool
	MaxAttempts  int // 0 uses retry_attempts
	TargetRegion *model.Region
	SearchRegion *model.Region

	Clicks int
	Offset model.Point
	Text   string // typed after the click
}

// Result is the outcome document of one call.
type Result struct {
	OK            bool                  `yaml:"ok"                       json:"ok"`
	Reason        model.Reason          `yaml:"reason,omitempty"         json:"reason,omitempty"`
	LastReason    model.Reason          `yaml:"last_reason,omitempty"    json:"last_reason,omitempty"`
	Error         string                `yaml:"error,omitempty"          json:"error,omitempty"`
	RunID         string                `yaml:"run_id,omitempty"         json:"run_id,omitempty"`
	Point         *model.Point          `yaml:"point,omitempty"          json:"point,omitempty"`
	Target        *model.ResolvedTarget `yaml:"target,omitempty"         json:"target,omitempty"`
	Attempts      []model.AttemptRecord `yaml:"attempts,omitempty"       json:"attempts,omitempty"`
	ScreenChanged *bool                 `yaml:"screen_changed,omitempty" json:"screen_changed,omitempty"`
	Interrupted   bool                  `yaml:"interrupted,omitempty"    json:"interrupted,omitempty"`
}

// Options wires a Session. Detector and Executor are required.
type Options struct {
	Config   config.Config
	Detector resolve.Detector
	Executor *action.Executor
	Overlay  *overlay.Reporter
	Log      logger.Logger
}

// Session runs resolution calls. It holds only immutable collaborators, so
// calls share no state.
type Session struct {
	cfg      config.Config
	detector resolve.Detector
	executor *action.Executor
	overlay  *overlay.Reporter
	log      logger.Logger
}

// New validates the configuration and builds a Session.
func New(opts Options) (*Session, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Detector == nil || opts.Executor == nil {
		return nil, errors.New("bot: detector and executor are required")
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{
		cfg:      opts.Config,
		detector: opts.Detector,
		executor: opts.Executor,
		overlay:  opts.Overlay,
		log:      log,
	}, nil
}

// Open builds a Session on the compiled-in platform backend. Text queries
// fail with invalid_input when no OCR engine is available.
func Open(cfg config.Config, log logger.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}

	ocr, err := vision.NewRecognizer()
	if err != nil {
		log.Debug("text detection unavailable", "error", err.Error())
		ocr = nil
	}
	det := vision.NewScreenDetector(provider.Screenshotter, ocr, cfg.OCRLanguages, log)
	det.Matcher.Scale = cfg.MatchScale

	exec := action.NewExecutor(provider.Inputter, provider.Screenshotter, log)
	if cfg.VerifyClick {
		exec.Verifier = action.NewVerifier(provider.Screenshotter)
	}

	color, _ := config.ParseColor(cfg.OverlayColor)
	rep := &overlay.Reporter{
		Marker:   overlay.Nop{},
		Show:     cfg.ShowOverlay,
		Color:    color,
		Width:    cfg.OverlayWidth,
		Duration: cfg.OverlayDurationValue(),
		Log:      log,
	}
	if cfg.ShowOverlay {
		rep.Marker = overlay.NewSnapshotMarker(provider.Screenshotter, cfg.OverlayDir, log)
	}

	return New(Options{Config: cfg, Detector: det, Executor: exec, Overlay: rep, Log: log})
}

func (s *Session) controller() *resolve.Controller {
	return &resolve.Controller{Detector: s.detector, Log: s.log, BacktrackStep: s.cfg.BacktrackStep}
}

func (s *Session) confidence(v float64) float64 {
	if v == 0 {
		return s.cfg.ConfidenceThreshold
	}
	return config.NormalizeConfidence(v)
}

func (s *Session) attempts(n int) int {
	if n == 0 {
		return s.cfg.RetryAttempts
	}
	return n
}

// ResolveAndClick finds the anchor, picks the target nearest to it and clicks it.
func (s *Session) ResolveAndClick(ctx context.Context, rc RelativeClick) (Result, error) {
	anchor := model.ImageQuery(rc.Anchor)
	plan := resolve.Plan{
		Anchor: &anchor,
		Target: rc.Target,
		Config: resolve.Config{
			Confidence:   s.confidence(rc.Confidence),
			MaxDistance:  rc.MaxDistance,
			Backtrack:    rc.Backtrack,
			MaxAttempts:  s.attempts(rc.MaxAttempts),
			Delay:        s.cfg.AttemptDelayDuration(),
			SearchRegion: rc.SearchRegion,
			TargetRegion: rc.TargetRegion,
		},
	}
	spec := action.Spec{
		Button:    rc.Button,
		Clicks:    rc.Clicks,
		Offset:    rc.Offset,
		PostDelay: rc.Delay,
		Text:      rc.Text,
	}
	return s.resolveAndAct(ctx, plan, spec)
}

// Find locates a single image or text target without an anchor.
func (s *Session) Find(ctx context.Context, q model.Query, confidence float64, region *model.Region) (Result, error) {
	out, err := s.controller().Run(ctx, s.findPlan(q, confidence, region))
	res := Result{RunID: out.RunID, Attempts: out.Attempts}
	if err != nil {
		return failure(res, err), err
	}
	res.OK = true
	res.Target = &out.Target
	p := out.Target.Position
	res.Point = &p
	return res, nil
}

// FindText locates text on screen. A miss is an error carrying its reason.
func (s *Session) FindText(ctx context.Context, text string, confidence float64, region *model.Region) (model.ResolvedTarget, error) {
	res, err := s.Find(ctx, model.TextQuery(text), confidence, region)
	if err != nil {
		return model.ResolvedTarget{}, err
	}
	return *res.Target, nil
}

// ClickText locates text and clicks it.
func (s *Session) ClickText(ctx context.Context, text string, confidence float64, region *model.Region, spec action.Spec) (Result, error) {
	return s.resolveAndAct(ctx, s.findPlan(model.TextQuery(text), confidence, region), spec)
}

// TypeText types text at the current keyboard focus.
func (s *Session) TypeText(ctx context.Context, text string, delayMs int) (Result, error) {
	if text == "" {
		err := &config.Error{Field: "text", Msg: "text is required"}
		return failure(Result{}, err), err
	}
	if err := s.executor.TypeText(ctx, text, delayMs); err != nil {
		return failure(Result{}, err), err
	}
	return Result{OK: true}, nil
}

// PressKey presses a "+"-separated key combination such as "ctrl+shift+t".
func (s *Session) PressKey(ctx context.Context, combo string) error {
	keys := strings.Split(combo, "+")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
		if keys[i] == "" {
			return &config.Error{Field: "key", Msg: fmt.Sprintf("invalid key combination %q", combo)}
		}
	}
	return s.executor.KeyCombo(ctx, keys)
}

func (s *Session) findPlan(q model.Query, confidence float64, region *model.Region) resolve.Plan {
	return resolve.Plan{
		Target: q,
		Config: resolve.Config{
			Confidence:   s.confidence(confidence),
			MaxAttempts:  s.cfg.RetryAttempts,
			Delay:        s.cfg.AttemptDelayDuration(),
			SearchRegion: region,
		},
	}
}

func (s *Session) resolveAndAct(ctx context.Context, plan resolve.Plan, spec action.Spec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return failure(Result{}, err), err
	}
	out, err := s.controller().Run(ctx, plan)
	res := Result{RunID: out.RunID, Attempts: out.Attempts}
	if err != nil {
		return failure(res, err), err
	}
	target := out.Target
	res.Target = &target

	rep, err := s.executor.Execute(ctx, target.Position, spec)
	if err != nil {
		if rep.Point != (model.Point{}) {
			p := rep.Point
			res.Point = &p
		}
		return failure(res, err), err
	}
	res.OK = true
	res.Point = &rep.Point
	res.ScreenChanged = rep.ScreenChanged
	if rep.Interrupted {
		res.Interrupted = true
		return res, nil
	}

	s.overlay.Report(ctx, target)
	return res, nil
}

func failure(res Result, err error) Result {
	res.OK = false
	res.Reason = ReasonOf(err)
	res.Error = err.Error()
	var re *resolve.Error
	if errors.As(err, &re) {
		res.LastReason = re.LastReason
	}
	return res
}

// ReasonOf maps an error returned by a Session onto its reason code.
// Unknown errors map to model.ReasonNone.
func ReasonOf(err error) model.Reason {
	if err == nil {
		return model.ReasonNone
	}
	var (
		re *resolve.Error
		de *action.DispatchError
		ce *config.Error
	)
	switch {
	case errors.As(err, &re):
		return re.Reason
	case errors.As(err, &de):
		return model.ReasonDispatchError
	case errors.As(err, &ce):
		return model.ReasonConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return model.ReasonCancelled
	case errors.Is(err, resolve.ErrInvalidInput):
		return model.ReasonInvalidInput
	}
	return model.ReasonNone
}

// Describe renders a one-line summary of r for logs and tool output.
func (r Result) Describe() string {
	if r.OK {
		if r.Interrupted && r.Point != nil {
			return fmt.Sprintf("ok at (%d,%d), delay interrupted", r.Point.X, r.Point.Y)
		}
		if r.Point != nil {
			return fmt.Sprintf("ok at (%d,%d)", r.Point.X, r.Point.Y)
		}
		return "ok"
	}
	if r.LastReason != model.ReasonNone {
		return fmt.Sprintf("%s (%s)", r.Reason, r.LastReason)
	}
	return string(r.Reason)
}
