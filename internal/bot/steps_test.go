package bot

import (
	"context"
	"testing"

	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
	"gopkg.in/yaml.v3"
)

func TestParams(t *testing.T) {
	var params map[string]interface{}
	doc := `{anchor: logo.png, max-distance: 150, confidence: 85.5, attempts: 2, backtrack: true, region: "0,0,800,600", port: 8080}`
	if err := yaml.Unmarshal([]byte(doc), &params); err != nil {
		t.Fatal(err)
	}

	if got := StringParam(params, "anchor", ""); got != "logo.png" {
		t.Errorf("anchor = %q", got)
	}
	if got := StringParam(params, "port", ""); got != "8080" {
		t.Errorf("numeric string param = %q, want %q", got, "8080")
	}
	if got := FloatParam(params, "max-distance", 0); got != 150 {
		t.Errorf("max-distance = %v, want 150", got)
	}
	if got := FloatParam(params, "confidence", 0); got != 85.5 {
		t.Errorf("confidence = %v, want 85.5", got)
	}
	if got := IntParam(params, "attempts", 0); got != 2 {
		t.Errorf("attempts = %v, want 2", got)
	}
	if !BoolParam(params, "backtrack", false) {
		t.Error("backtrack = false, want true")
	}
	if got := IntParam(params, "missing", 7); got != 7 {
		t.Errorf("default = %v, want 7", got)
	}
	r, err := RegionParam(params, "region")
	if err != nil || r == nil || *r != (model.Region{Width: 800, Height: 600}) {
		t.Errorf("region = %v, %v", r, err)
	}
	if r, err := RegionParam(params, "none"); r != nil || err != nil {
		t.Errorf("missing region = %v, %v", r, err)
	}
	if _, err := RegionParam(map[string]interface{}{"region": "1,2,3"}, "region"); ReasonOf(err) != model.ReasonConfiguration {
		t.Errorf("bad region error = %v", err)
	}
}

func TestRelativeClickFromParams(t *testing.T) {
	rc, err := RelativeClickFromParams(map[string]interface{}{
		"anchor":       "a.png",
		"target":       "Name",
		"kind":         "text",
		"max-distance": 120.0,
		"button":       "right",
		"double":       true,
		"delay":        250,
		"offset-x":     40,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rc.Target != model.TextQuery("Name") || rc.Button != platform.MouseRight || rc.Clicks != 2 {
		t.Errorf("rc = %+v", rc)
	}
	if rc.Delay.Milliseconds() != 250 || rc.Offset.X != 40 || rc.MaxDistance != 120 {
		t.Errorf("rc = %+v", rc)
	}

	if _, err := RelativeClickFromParams(map[string]interface{}{"button": "thumb"}); ReasonOf(err) != model.ReasonConfiguration {
		t.Errorf("bad button: %v", err)
	}
}

func TestRunStep(t *testing.T) {
	det := &stubDetector{results: map[string][]model.Candidate{
		"anchor.png": {at(100, 100, 0.99)},
		"field.png":  {at(150, 100, 0.99)},
		"OK":         {at(10, 10, 0.99)},
	}}
	in := &stubInput{}
	s := newSession(t, det, in, &stubMarker{})
	ctx := context.Background()

	steps := []struct {
		name   string
		params map[string]interface{}
	}{
		{"click-relative", map[string]interface{}{"anchor": "anchor.png", "target": "field.png", "max-distance": 100}},
		{"find-text", map[string]interface{}{"text": "OK"}},
		{"click-text", map[string]interface{}{"text": "OK"}},
		{"type", map[string]interface{}{"text": "hi", "key": "enter"}},
		{"move", map[string]interface{}{"x": 5, "y": 6}},
		{"sleep", map[string]interface{}{"ms": 1}},
	}
	for _, st := range steps {
		res, err := s.RunStep(ctx, st.name, st.params)
		if err != nil {
			t.Errorf("%s: %v", st.name, err)
			continue
		}
		if !res.OK || res.Action != st.name {
			t.Errorf("%s: result %+v", st.name, res)
		}
	}
	if len(in.clicks) != 2 || len(in.typed) != 1 {
		t.Errorf("clicks=%v typed=%v", in.clicks, in.typed)
	}

	res, err := s.RunStep(ctx, "drag", nil)
	if err == nil || res.OK || res.Reason != model.ReasonConfiguration || res.Action != "drag" {
		t.Errorf("unknown step: %+v, %v", res, err)
	}
	if _, err := s.RunStep(ctx, "sleep", map[string]interface{}{}); err == nil {
		t.Error("sleep without ms should fail")
	}
	if _, err := s.RunStep(ctx, "type", map[string]interface{}{}); err == nil {
		t.Error("type without text or key should fail")
	}
}

func TestStepResult_YAMLInline(t *testing.T) {
	p := model.Point{X: 1, Y: 2}
	b, err := yaml.Marshal(StepResult{Step: 3, Action: "move", Result: Result{OK: true, Point: &p}})
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]interface{}
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back["ok"] != true || back["action"] != "move" || back["step"] != 3 {
		t.Errorf("flattened document = %v", back)
	}
}
