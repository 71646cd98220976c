package platform

import (
	"image"

	"github.com/mj1618/botvision/internal/model"
)

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	TypeText(text string, delayMs int) error
	KeyCombo(keys []string) error
}

// Screenshotter captures screen pixels.
type Screenshotter interface {
	// CaptureRegion returns the pixels of the given screen rectangle. The
	// returned image's bounds start at (0,0) and match the region size.
	CaptureRegion(r model.Region) (image.Image, error)

	// ScreenSize returns the size of the virtual screen in pixels.
	ScreenSize() (width, height int, err error)
}

// FullScreen returns the region covering the whole virtual screen.
func FullScreen(s Screenshotter) (model.Region, error) {
	w, h, err := s.ScreenSize()
	if err != nil {
		return model.Region{}, err
	}
	return model.Region{Width: w, Height: h}, nil
}
