package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
	"github.com/mj1618/botvision/internal/resolve"
)

// ScreenDetector answers image and text queries against fresh screen captures.
type ScreenDetector struct {
	Screen    platform.Screenshotter
	Templates *TemplateCache
	Matcher   Matcher
	OCR       Recognizer // nil disables text queries
	Languages []string
	Log       logger.Logger
}

// NewScreenDetector creates a detector with an empty template cache.
func NewScreenDetector(screen platform.Screenshotter, ocr Recognizer, languages []string, log logger.Logger) *ScreenDetector {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScreenDetector{
		Screen:    screen,
		Templates: NewTemplateCache(),
		OCR:       ocr,
		Languages: languages,
		Log:       log,
	}
}

var _ resolve.Detector = (*ScreenDetector)(nil)

// Detect captures region (nil for the full screen) and returns the candidates
// for q that clear threshold. A region with no on-screen area is invalid input.
func (d *ScreenDetector) Detect(ctx context.Context, q model.Query, region *model.Region, threshold float64) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Value == "" {
		return nil, fmt.Errorf("empty %s query: %w", q.Kind, resolve.ErrInvalidInput)
	}

	screen, err := platform.FullScreen(d.Screen)
	if err != nil {
		return nil, fmt.Errorf("screen size: %w", err)
	}
	area := screen
	if region != nil {
		var ok bool
		if area, ok = region.Intersect(screen); !ok {
			return nil, fmt.Errorf("region %s is off screen: %w", region, resolve.ErrInvalidInput)
		}
	}

	var cands []model.Candidate
	switch q.Kind {
	case model.SourceText:
		cands, err = d.detectText(ctx, q.Value, area, threshold)
	default:
		cands, err = d.detectImage(q.Value, area, threshold)
	}
	if err != nil {
		return nil, err
	}
	model.SortCandidates(cands)
	d.log().Debug("detect",
		"query", q.String(),
		"region", area.String(),
		"threshold", threshold,
		"candidates", len(cands))
	return cands, nil
}

func (d *ScreenDetector) detectImage(path string, area model.Region, threshold float64) ([]model.Candidate, error) {
	tmpl, err := d.templates().Load(path)
	if err != nil {
		return nil, err
	}
	img, err := d.Screen.CaptureRegion(area)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", area, err)
	}

	matches, err := d.Matcher.Find(toGray(img), tmpl, threshold)
	if errors.Is(err, ErrFlatTemplate) {
		return nil, fmt.Errorf("template %s: %w: %v", path, resolve.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, err
	}

	cands := make([]model.Candidate, 0, len(matches))
	for _, m := range matches {
		box := model.Region{
			X:      area.X + m.Box.Min.X,
			Y:      area.Y + m.Box.Min.Y,
			Width:  m.Box.Dx(),
			Height: m.Box.Dy(),
		}
		cands = append(cands, model.Candidate{
			Position:   box.Center(),
			Confidence: m.Score,
			Source:     model.SourceImage,
			Box:        box,
		})
	}
	return cands, nil
}

func (d *ScreenDetector) detectText(ctx context.Context, text string, area model.Region, threshold float64) ([]model.Candidate, error) {
	if d.OCR == nil {
		return nil, fmt.Errorf("find text %q: %w: %v", text, resolve.ErrInvalidInput, ErrNoRecognizer)
	}
	img, err := d.Screen.CaptureRegion(area)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", area, err)
	}
	words, err := d.OCR.Recognize(ctx, img, d.Languages)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	for i := range words {
		words[i].Box.X += area.X
		words[i].Box.Y += area.Y
	}
	return MatchText(words, text, threshold), nil
}

func (d *ScreenDetector) templates() *TemplateCache {
	if d.Templates == nil {
		d.Templates = NewTemplateCache()
	}
	return d.Templates
}

func (d *ScreenDetector) log() logger.Logger {
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}
