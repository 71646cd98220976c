package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/botvision/internal/action"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
)

// StepNames lists the step types RunStep understands.
var StepNames = []string{"click-relative", "find-text", "find-image", "click-text", "type", "move", "sleep"}

// StepResult is the output of one batch step or tool call.
type StepResult struct {
	Step    int    `yaml:"step,omitempty"    json:"step,omitempty"`
	Action  string `yaml:"action"            json:"action"`
	Result  `yaml:",inline"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	Key     string `yaml:"key,omitempty"     json:"key,omitempty"`
	Elapsed string `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

// RunStep executes one named step with parameters from a YAML batch or an
// MCP tool call.
func (s *Session) RunStep(ctx context.Context, name string, params map[string]interface{}) (StepResult, error) {
	var (
		res StepResult
		err error
	)
	switch name {
	case "click-relative":
		res, err = s.stepClickRelative(ctx, params)
	case "find-text":
		res, err = s.stepFind(ctx, model.TextQuery(StringParam(params, "text", "")), params)
	case "find-image":
		res, err = s.stepFind(ctx, model.ImageQuery(StringParam(params, "image", "")), params)
	case "click-text":
		res, err = s.stepClickText(ctx, params)
	case "type":
		res, err = s.stepType(ctx, params)
	case "move":
		res, err = s.stepMove(ctx, params)
	case "sleep":
		res, err = stepSleep(ctx, params)
	default:
		err = &config.Error{Field: "step", Msg: fmt.Sprintf("unknown step type %q (supported: %s)", name, strings.Join(StepNames, ", "))}
		res.Result = failure(Result{}, err)
	}
	res.Action = name
	return res, err
}

// RelativeClickFromParams builds a RelativeClick from step parameters.
func RelativeClickFromParams(params map[string]interface{}) (RelativeClick, error) {
	kind, err := model.ParseSourceKind(StringParam(params, "kind", "image"))
	if err != nil {
		return RelativeClick{}, &config.Error{Field: "kind", Msg: err.Error()}
	}
	button, err := platform.ParseMouseButton(StringParam(params, "button", "left"))
	if err != nil {
		return RelativeClick{}, &config.Error{Field: "button", Msg: err.Error()}
	}
	targetRegion, err := RegionParam(params, "region")
	if err != nil {
		return RelativeClick{}, err
	}
	searchRegion, err := RegionParam(params, "search-region")
	if err != nil {
		return RelativeClick{}, err
	}
	rc := RelativeClick{
		Anchor:       StringParam(params, "anchor", ""),
		Target:       model.Query{Kind: kind, Value: StringParam(params, "target", "")},
		MaxDistance:  FloatParam(params, "max-distance", 0),
		Confidence:   FloatParam(params, "confidence", 0),
		Delay:        time.Duration(IntParam(params, "delay", 0)) * time.Millisecond,
		Button:       button,
		Backtrack:    BoolParam(params, "backtrack", false),
		MaxAttempts:  IntParam(params, "attempts", 0),
		TargetRegion: targetRegion,
		SearchRegion: searchRegion,
		Offset:       model.Point{X: IntParam(params, "offset-x", 0), Y: IntParam(params, "offset-y", 0)},
		Text:         StringParam(params, "type-text", ""),
	}
	if BoolParam(params, "double", false) {
		rc.Clicks = 2
	}
	return rc, nil
}

// ActionSpecFromParams builds the click action of a click-text step.
func ActionSpecFromParams(params map[string]interface{}) (action.Spec, error) {
	button, err := platform.ParseMouseButton(StringParam(params, "button", "left"))
	if err != nil {
		return action.Spec{}, &config.Error{Field: "button", Msg: err.Error()}
	}
	spec := action.Spec{
		Button:    button,
		Offset:    model.Point{X: IntParam(params, "offset-x", 0), Y: IntParam(params, "offset-y", 0)},
		PostDelay: time.Duration(IntParam(params, "delay", 0)) * time.Millisecond,
		Text:      StringParam(params, "type-text", ""),
	}
	if BoolParam(params, "double", false) {
		spec.Clicks = 2
	}
	return spec, nil
}

func (s *Session) stepClickRelative(ctx context.Context, params map[string]interface{}) (StepResult, error) {
	rc, err := RelativeClickFromParams(params)
	if err != nil {
		return StepResult{Result: failure(Result{}, err)}, err
	}
	res, err := s.ResolveAndClick(ctx, rc)
	return StepResult{Result: res, Text: rc.Text}, err
}

func (s *Session) stepFind(ctx context.Context, q model.Query, params map[string]interface{}) (StepResult, error) {
	region, err := RegionParam(params, "region")
	if err != nil {
		return StepResult{Result: failure(Result{}, err)}, err
	}
	res, err := s.Find(ctx, q, FloatParam(params, "confidence", 0), region)
	return StepResult{Result: res}, err
}

func (s *Session) stepClickText(ctx context.Context, params map[string]interface{}) (StepResult, error) {
	region, err := RegionParam(params, "region")
	if err != nil {
		return StepResult{Result: failure(Result{}, err)}, err
	}
	spec, err := ActionSpecFromParams(params)
	if err != nil {
		return StepResult{Result: failure(Result{}, err)}, err
	}
	res, err := s.ClickText(ctx, StringParam(params, "text", ""), FloatParam(params, "confidence", 0), region, spec)
	return StepResult{Result: res}, err
}

func (s *Session) stepType(ctx context.Context, params map[string]interface{}) (StepResult, error) {
	text := StringParam(params, "text", "")
	key := StringParam(params, "key", "")
	if text == "" && key == "" {
		err := &config.Error{Field: "text", Msg: "text or key is required"}
		return StepResult{Result: failure(Result{}, err)}, err
	}
	out := StepResult{Text: text, Key: key}
	if text != "" {
		res, err := s.TypeText(ctx, text, IntParam(params, "delay", 0))
		if err != nil {
			out.Result = res
			return out, err
		}
	}
	if key != "" {
		if err := s.PressKey(ctx, key); err != nil {
			out.Result = failure(Result{}, err)
			return out, err
		}
	}
	out.OK = true
	return out, nil
}

func (s *Session) stepMove(ctx context.Context, params map[string]interface{}) (StepResult, error) {
	p := model.Point{X: IntParam(params, "x", 0), Y: IntParam(params, "y", 0)}
	if err := s.executor.MoveMouse(ctx, p); err != nil {
		return StepResult{Result: failure(Result{Point: &p}, err)}, err
	}
	return StepResult{Result: Result{OK: true, Point: &p}}, nil
}

func stepSleep(ctx context.Context, params map[string]interface{}) (StepResult, error) {
	ms := IntParam(params, "ms", 0)
	if ms <= 0 {
		err := &config.Error{Field: "ms", Msg: "must be > 0"}
		return StepResult{Result: failure(Result{}, err)}, err
	}
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return StepResult{Result: failure(Result{}, ctx.Err())}, ctx.Err()
	case <-t.C:
	}
	return StepResult{Result: Result{OK: true}, Elapsed: fmt.Sprintf("%dms", ms)}, nil
}
