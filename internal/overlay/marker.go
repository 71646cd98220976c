// Package overlay marks resolved targets so a human can see what was clicked.
//
// Marking is best-effort: a failure is logged and never changes the outcome
// of the action that preceded it.
package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
)

// Marker highlights a screen position for a while.
type Marker interface {
	DrawMarker(ctx context.Context, pos model.Point, c color.RGBA, width int, d time.Duration) error
}

// Nop draws nothing.
type Nop struct{}

func (Nop) DrawMarker(context.Context, model.Point, color.RGBA, int, time.Duration) error { return nil }

// SnapshotMarker captures the area around the position, draws the marker on
// the capture and writes it as a PNG into Dir. It then holds for the marker
// duration so the pacing matches an on-screen overlay.
type SnapshotMarker struct {
	Screen platform.Screenshotter
	Dir    string
	Radius int // half the side of the captured square
	Log    logger.Logger
}

// NewSnapshotMarker writes markers into dir, or the system temp dir when empty.
func NewSnapshotMarker(screen platform.Screenshotter, dir string, log logger.Logger) *SnapshotMarker {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "botvision")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SnapshotMarker{Screen: screen, Dir: dir, Radius: 120, Log: log}
}

func (m *SnapshotMarker) DrawMarker(ctx context.Context, pos model.Point, c color.RGBA, width int, d time.Duration) error {
	screen, err := platform.FullScreen(m.Screen)
	if err != nil {
		return err
	}
	area, ok := model.Around(pos, max(m.Radius, 16)).Intersect(screen)
	if !ok {
		return fmt.Errorf("marker at (%d,%d) is off screen", pos.X, pos.Y)
	}
	img, err := m.Screen.CaptureRegion(area)
	if err != nil {
		return fmt.Errorf("capture %s: %w", area, err)
	}

	local := image.Pt(pos.X-area.X, pos.Y-area.Y)
	marked := Annotate(img, local, fmt.Sprintf("(%d,%d)", pos.X, pos.Y), c, width)

	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(m.Dir, "marker-"+uuid.NewString()+".png")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, marked); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	m.Log.Info("marker written", "path", path, "x", pos.X, "y", pos.Y)

	return hold(ctx, d)
}

func hold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
