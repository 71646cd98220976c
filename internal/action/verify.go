package action

import (
	"fmt"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
)

// Verifier compares perceptual hashes of the area around a click taken
// before and after it.
type Verifier struct {
	Screen      platform.Screenshotter
	Radius      int           // half the side of the compared square
	Settle      time.Duration // extra wait before the second capture
	MaxDistance int           // hamming distances above this count as a change
}

// NewVerifier returns a verifier with a 100px square and a 200ms settle time.
func NewVerifier(screen platform.Screenshotter) *Verifier {
	return &Verifier{Screen: screen, Radius: 50, Settle: 200 * time.Millisecond, MaxDistance: 2}
}

type hashed struct {
	area model.Region
	hash *goimagehash.ImageHash
}

// snapshot hashes the area around p.
func (v *Verifier) snapshot(p model.Point) (*hashed, error) {
	screen, err := platform.FullScreen(v.Screen)
	if err != nil {
		return nil, err
	}
	area, ok := model.Around(p, max(v.Radius, 4)).Intersect(screen)
	if !ok {
		return nil, fmt.Errorf("no screen area around (%d,%d)", p.X, p.Y)
	}
	return v.hashArea(area)
}

// changed hashes the area of before again and reports whether it differs.
func (v *Verifier) changed(before *hashed) (bool, error) {
	after, err := v.hashArea(before.area)
	if err != nil {
		return false, err
	}
	dist, err := before.hash.Distance(after.hash)
	if err != nil {
		return false, err
	}
	return dist > v.MaxDistance, nil
}

func (v *Verifier) hashArea(area model.Region) (*hashed, error) {
	img, err := v.Screen.CaptureRegion(area)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", area, err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return &hashed{area: area, hash: hash}, nil
}
