//go:build cgo

package desktop

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/botvision/internal/model"
)

// Screenshotter implements platform.Screenshotter with robotgo captures.
type Screenshotter struct{}

// NewScreenshotter creates a new robotgo-backed screenshotter.
func NewScreenshotter() *Screenshotter {
	return &Screenshotter{}
}

// CaptureRegion captures r, which must lie entirely on the virtual screen.
func (s *Screenshotter) CaptureRegion(r model.Region) (image.Image, error) {
	w, h, err := s.ScreenSize()
	if err != nil {
		return nil, err
	}
	if clipped, ok := r.Intersect(model.Region{Width: w, Height: h}); !ok || clipped != r {
		return nil, fmt.Errorf("region %s is not inside the %dx%d screen", r, w, h)
	}
	img, err := robotgo.CaptureImg(r.X, r.Y, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("screen capture failed: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("screen capture returned no image (check screen recording permission)")
	}
	return img, nil
}

// ScreenSize returns the main display size.
func (s *Screenshotter) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("could not determine screen size")
	}
	return w, h, nil
}
