package vision

import (
	"errors"
	"image"
	"math"
	"runtime"
	"sort"
	"sync"
)

// ErrFlatTemplate is returned for a template with a single uniform color;
// correlation is undefined for it.
var ErrFlatTemplate = errors.New("template has no contrast")

// minScaledSide is the smallest template side worth matching after downscaling.
const minScaledSide = 6

// Match is one template hit in the coordinates of the searched image.
type Match struct {
	Box   image.Rectangle
	Score float64
}

// Matcher finds a template in an image with normalized cross-correlation.
//
// Scale in (0,1) downsamples both images before matching; 0 or 1 matches at
// full resolution. Workers bounds the goroutines used; 0 means GOMAXPROCS.
type Matcher struct {
	Scale   float64
	Workers int
}

// Find returns every non-overlapping location where tmpl scores at least
// threshold, strongest first. A template larger than screen yields no matches.
func (m Matcher) Find(screen, tmpl *image.Gray, threshold float64) ([]Match, error) {
	tw, th := tmpl.Bounds().Dx(), tmpl.Bounds().Dy()
	if tw > screen.Bounds().Dx() || th > screen.Bounds().Dy() {
		return nil, nil
	}

	s := m.Scale
	src, t := screen, tmpl
	if s > 0 && s < 1 && float64(min(tw, th))*s >= minScaledSide {
		src, t = scaleGray(screen, s), scaleGray(tmpl, s)
	} else {
		s = 1
	}

	hits, err := m.correlate(planeOf(src), planeOf(t), threshold)
	if err != nil {
		return nil, err
	}
	sw, sh := t.Bounds().Dx(), t.Bounds().Dy()
	hits = suppress(hits, sw, sh)

	if s != 1 {
		for i := range hits {
			x := int(math.Round(float64(hits[i].Box.Min.X) / s))
			y := int(math.Round(float64(hits[i].Box.Min.Y) / s))
			hits[i].Box = image.Rect(x, y, x+tw, y+th)
		}
	}
	return hits, nil
}

// correlate scores every placement of t inside src and keeps those at or above threshold.
func (m Matcher) correlate(src, t plane, threshold float64) ([]Match, error) {
	n := float64(t.w * t.h)
	var mean float64
	for _, v := range t.v {
		mean += v
	}
	mean /= n
	tz := make([]float64, len(t.v))
	var tnorm float64
	for i, v := range t.v {
		tz[i] = v - mean
		tnorm += tz[i] * tz[i]
	}
	if tnorm < 1e-9 {
		return nil, ErrFlatTemplate
	}

	ii := newIntegral(src)
	rows := src.h - t.h + 1
	cols := src.w - t.w + 1
	if rows <= 0 || cols <= 0 {
		return nil, nil
	}

	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, rows)

	parts := make([][]Match, workers)
	var wg sync.WaitGroup
	for wi := 0; wi < workers; wi++ {
		wg.Add(1)
		go func(wi int) {
			defer wg.Done()
			for y := wi; y < rows; y += workers {
				for x := 0; x < cols; x++ {
					sum, sq := ii.window(x, y, t.w, t.h)
					variance := sq - sum*sum/n
					if variance <= 1e-9*max(sq, 1) {
						continue
					}
					var cross float64
					for j := 0; j < t.h; j++ {
						srow := src.v[(y+j)*src.w+x : (y+j)*src.w+x+t.w]
						trow := tz[j*t.w : (j+1)*t.w]
						for i, v := range srow {
							cross += v * trow[i]
						}
					}
					score := min(1, cross/math.Sqrt(variance*tnorm))
					if score >= threshold {
						parts[wi] = append(parts[wi], Match{Box: image.Rect(x, y, x+t.w, y+t.h), Score: score})
					}
				}
			}
		}(wi)
	}
	wg.Wait()

	var hits []Match
	for _, p := range parts {
		hits = append(hits, p...)
	}
	return hits, nil
}

// suppress keeps the strongest hit of every cluster. A hit whose origin lies
// within half a template of a stronger kept hit is dropped.
func suppress(hits []Match, w, h int) []Match {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		a, b := hits[i].Box.Min, hits[j].Box.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	halfW, halfH := max(1, w/2), max(1, h/2)
	var kept []Match
	for _, c := range hits {
		overlaps := false
		for _, k := range kept {
			dx, dy := c.Box.Min.X-k.Box.Min.X, c.Box.Min.Y-k.Box.Min.Y
			if abs(dx) < halfW && abs(dy) < halfH {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
