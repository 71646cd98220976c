package overlay

import (
	"context"
	"image/color"
	"time"

	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
)

// Reporter shows a marker at resolved targets when enabled.
type Reporter struct {
	Marker   Marker
	Show     bool
	Color    color.RGBA
	Width    int
	Duration time.Duration
	Log      logger.Logger
}

// Report marks target. Errors are logged at warn level and dropped.
func (r *Reporter) Report(ctx context.Context, target model.ResolvedTarget) {
	if r == nil || !r.Show || r.Marker == nil {
		return
	}
	err := r.Marker.DrawMarker(ctx, target.Position, r.Color, r.Width, r.Duration)
	if err != nil {
		log := r.Log
		if log == nil {
			log = logger.NewNop()
		}
		log.Warn("overlay failed",
			"x", target.Position.X,
			"y", target.Position.Y,
			"error", err.Error())
	}
}
