package vision

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// toGray converts img to an 8-bit grayscale image whose bounds start at (0,0).
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// scaleGray resizes g by factor s with bilinear sampling.
func scaleGray(g *image.Gray, s float64) *image.Gray {
	b := g.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*s)))
	h := max(1, int(math.Round(float64(b.Dy())*s)))
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// plane is a grayscale image as float64 samples, row-major.
type plane struct {
	w, h int
	v    []float64
}

func planeOf(g *image.Gray) plane {
	b := g.Bounds()
	p := plane{w: b.Dx(), h: b.Dy(), v: make([]float64, b.Dx()*b.Dy())}
	for y := 0; y < p.h; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < p.w; x++ {
			p.v[y*p.w+x] = float64(row[x])
		}
	}
	return p
}

// integral holds summed-area tables of a plane and of its squares.
type integral struct {
	w   int // plane width + 1
	sum []float64
	sq  []float64
}

func newIntegral(p plane) integral {
	w := p.w + 1
	ii := integral{w: w, sum: make([]float64, w*(p.h+1)), sq: make([]float64, w*(p.h+1))}
	for y := 0; y < p.h; y++ {
		var rs, rq float64
		for x := 0; x < p.w; x++ {
			v := p.v[y*p.w+x]
			rs += v
			rq += v * v
			ii.sum[(y+1)*w+x+1] = ii.sum[y*w+x+1] + rs
			ii.sq[(y+1)*w+x+1] = ii.sq[y*w+x+1] + rq
		}
	}
	return ii
}

// window returns the sum and sum of squares of the w×h block at (x, y).
func (ii integral) window(x, y, w, h int) (float64, float64) {
	a, b := y*ii.w+x, y*ii.w+x+w
	c, d := (y+h)*ii.w+x, (y+h)*ii.w+x+w
	return ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a], ii.sq[d] - ii.sq[b] - ii.sq[c] + ii.sq[a]
}
