//go:build cgo

package tesseract

import (
	"testing"

	"github.com/mj1618/botvision/internal/vision"
)

func TestLineKey(t *testing.T) {
	if lineKey(1, 0, 2) == lineKey(1, 1, 2) {
		t.Error("lines in different paragraphs share a key")
	}
	if lineKey(0, 0, 3) != lineKey(0, 0, 3) {
		t.Error("lineKey is not stable")
	}
}

func TestRegistered(t *testing.T) {
	r, err := vision.NewRecognizer()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.(*Recognizer); !ok {
		t.Errorf("registered recognizer is %T", r)
	}
}
