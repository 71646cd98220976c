//go:build cgo

package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/vision"
	"github.com/otiai10/gosseract/v2"
)

func init() {
	vision.NewRecognizerFunc = func() (vision.Recognizer, error) {
		return &Recognizer{}, nil
	}
}

// Recognizer runs Tesseract word-level recognition.
type Recognizer struct{}

// Recognize returns the words tesseract finds in img, in reading order.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, languages []string) ([]vision.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			return nil, fmt.Errorf("set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := make([]vision.Word, 0, len(boxes))
	for _, b := range boxes {
		box := b.Box
		words = append(words, vision.Word{
			Text:       b.Word,
			Box:        model.Region{X: box.Min.X, Y: box.Min.Y, Width: box.Dx(), Height: box.Dy()},
			Confidence: b.Confidence / 100,
			Line:       lineKey(b.BlockNum, b.ParNum, b.LineNum),
		})
	}
	return words, nil
}

// lineKey folds tesseract's block/paragraph/line numbers into one comparable key.
func lineKey(block, par, line int) int {
	return (block*1000+par)*1000 + line
}
