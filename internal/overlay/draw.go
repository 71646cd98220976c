package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// markerHalf is half the side of the square drawn around a marked point.
const markerHalf = 14

// Annotate returns a copy of img with a square, a crosshair and label drawn
// at p, which is in img's coordinates.
func Annotate(img image.Image, p image.Point, label string, c color.RGBA, width int) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	width = max(1, width)
	half := markerHalf + width
	for i := 0; i < width; i++ {
		drawRectangle(rgba, p.X-half+i, p.Y-half+i, p.X+half-i, p.Y+half-i, c)
	}
	drawCrosshair(rgba, p, half/2, c)
	drawTextWithOutline(rgba, label, p.X, p.Y+half+14, color.White, color.Black)
	return rgba
}

// drawRectangle draws a one pixel rectangle outline clipped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		if y1 >= r.Min.Y {
			img.Set(x, y1, c)
		}
		if y2-1 < r.Max.Y {
			img.Set(x, y2-1, c)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if x1 >= r.Min.X {
			img.Set(x1, y, c)
		}
		if x2-1 < r.Max.X {
			img.Set(x2-1, y, c)
		}
	}
}

func drawCrosshair(img *image.RGBA, p image.Point, arm int, c color.Color) {
	for d := -arm; d <= arm; d++ {
		if (image.Point{X: p.X + d, Y: p.Y}).In(img.Bounds()) {
			img.Set(p.X+d, p.Y, c)
		}
		if (image.Point{X: p.X, Y: p.Y + d}).In(img.Bounds()) {
			img.Set(p.X, p.Y+d, c)
		}
	}
}

// drawTextWithOutline centres text on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	// basicfont.Face7x13 glyphs are 7 pixels wide.
	ox := x - len(text)*7/2
	oy := y

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	d.Src = image.NewUniform(outlineColor)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(ox+dx, oy+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(textColor)
	d.Dot = fixed.P(ox, oy)
	d.DrawString(text)
}
