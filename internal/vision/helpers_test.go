package vision

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mj1618/botvision/internal/model"
)

// randomPattern returns a size×size grayscale block of seeded noise.
func randomPattern(seed int64, size int) *image.Gray {
	r := rand.New(rand.NewSource(seed))
	g := image.NewGray(image.Rect(0, 0, size, size))
	for i := range g.Pix {
		g.Pix[i] = uint8(r.Intn(256))
	}
	return g
}

// blockPattern returns noise made of block×block squares of equal value.
func blockPattern(seed int64, size, block int) *image.Gray {
	r := rand.New(rand.NewSource(seed))
	g := image.NewGray(image.Rect(0, 0, size, size))
	for by := 0; by < size; by += block {
		for bx := 0; bx < size; bx += block {
			v := uint8(r.Intn(256))
			for y := by; y < by+block && y < size; y++ {
				for x := bx; x < bx+block && x < size; x++ {
					g.SetGray(x, y, color.Gray{Y: v})
				}
			}
		}
	}
	return g
}

// canvas returns a w×h image of a flat background with pattern pasted at each point.
func canvas(w, h int, pattern *image.Gray, at ...image.Point) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 128
	}
	pb := pattern.Bounds()
	for _, p := range at {
		for y := 0; y < pb.Dy(); y++ {
			for x := 0; x < pb.Dx(); x++ {
				g.SetGray(p.X+x, p.Y+y, pattern.GrayAt(x, y))
			}
		}
	}
	return g
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeScreen serves crops of a fixed image and counts captures.
type fakeScreen struct {
	img      *image.Gray
	captures []model.Region
}

func (s *fakeScreen) CaptureRegion(r model.Region) (image.Image, error) {
	s.captures = append(s.captures, r)
	out := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			out.SetGray(x, y, s.img.GrayAt(r.X+x, r.Y+y))
		}
	}
	return out, nil
}

func (s *fakeScreen) ScreenSize() (int, int, error) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy(), nil
}
