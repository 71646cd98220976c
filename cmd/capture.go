package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/output"
	"github.com/mj1618/botvision/internal/overlay"
	"github.com/mj1618/botvision/internal/platform"
	"github.com/spf13/cobra"
)

// CaptureResult is the YAML output of a capture command.
type CaptureResult struct {
	OK     bool         `yaml:"ok"             json:"ok"`
	Action string       `yaml:"action"         json:"action"`
	Path   string       `yaml:"path"           json:"path"`
	Region model.Region `yaml:"region"         json:"region"`
	Mark   *model.Point `yaml:"mark,omitempty" json:"mark,omitempty"`
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save a screen region to a PNG file",
	Long: `Capture the screen, or part of it, to a PNG file. Useful for cutting anchor
and target templates, and for checking where a click would land with --mark.

Examples:
  botvision capture --out screen.png
  botvision capture --region 100,200,80,24 --out anchor.png
  botvision capture --out check.png --mark 640,360 --label target`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().String("region", "", "Capture only x,y,w,h (default: full screen)")
	captureCmd.Flags().String("out", "capture.png", "Output PNG path")
	captureCmd.Flags().String("mark", "", "Draw a marker at absolute screen point x,y")
	captureCmd.Flags().String("label", "", "Label drawn next to the marker")
}

func runCapture(cmd *cobra.Command, args []string) error {
	regionFlag, _ := cmd.Flags().GetString("region")
	outPath, _ := cmd.Flags().GetString("out")
	markFlag, _ := cmd.Flags().GetString("mark")
	label, _ := cmd.Flags().GetString("label")

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	screen, err := platform.FullScreen(provider.Screenshotter)
	if err != nil {
		return err
	}
	region := screen
	if regionFlag != "" {
		r, err := bot.RegionParam(map[string]interface{}{"region": regionFlag}, "region")
		if err != nil {
			return err
		}
		clipped, ok := r.Intersect(screen)
		if !ok {
			return &config.Error{Field: "region", Msg: "lies outside the screen"}
		}
		region = clipped
	}

	img, err := provider.Screenshotter.CaptureRegion(region)
	if err != nil {
		return fmt.Errorf("failed to capture screen: %w", err)
	}

	result := CaptureResult{OK: true, Action: "capture", Path: outPath, Region: region}
	if markFlag != "" {
		p, err := parsePoint(markFlag)
		if err != nil {
			return err
		}
		color, _ := config.ParseColor(cfg.OverlayColor)
		local := image.Pt(p.X-region.X, p.Y-region.Y)
		img = overlay.Annotate(img, local, label, color, cfg.OverlayWidth)
		result.Mark = &p
	}

	if err := writePNG(outPath, img); err != nil {
		return err
	}
	log.Info("captured screen", "path", outPath, "width", region.Width, "height", region.Height)
	return output.Print(result)
}

// parsePoint parses "x,y".
func parsePoint(s string) (model.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model.Point{}, &config.Error{Field: "mark", Msg: fmt.Sprintf("expected x,y, got %q", s)}
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return model.Point{}, &config.Error{Field: "mark", Msg: fmt.Sprintf("expected integers, got %q", s)}
	}
	return model.Point{X: x, Y: y}, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}
