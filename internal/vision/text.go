package vision

import (
	"context"
	"errors"
	"image"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/mj1618/botvision/internal/model"
)

// Word is one OCR result. Box is in the coordinates of the recognized image
// and Confidence is in [0,1]. Words with the same Line belong to one text line
// and are listed in reading order.
type Word struct {
	Text       string
	Box        model.Region
	Confidence float64
	Line       int
}

// Recognizer runs OCR over an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, languages []string) ([]Word, error)
}

// ErrNoRecognizer is returned when no OCR engine was compiled in.
var ErrNoRecognizer = errors.New("no OCR engine available; build with cgo and tesseract installed")

// NewRecognizerFunc is set by OCR backends via init().
// See internal/vision/tesseract.
var NewRecognizerFunc func() (Recognizer, error)

// NewRecognizer returns the registered OCR engine.
func NewRecognizer() (Recognizer, error) {
	if NewRecognizerFunc == nil {
		return nil, ErrNoRecognizer
	}
	return NewRecognizerFunc()
}

// normalizeText lowercases s and collapses runs of whitespace to one space.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity is 1 minus the Levenshtein distance of the normalized strings
// over the longer rune length. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = normalizeText(a), normalizeText(b)
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(n)
}

type phrase struct {
	line       int
	start, end int // word indices within the line, end exclusive
	cand       model.Candidate
}

// MatchText finds phrases of consecutive same-line words that resemble query.
//
// A phrase's confidence is its mean word confidence times its similarity to
// query. Phrases one word shorter or longer than query are tried so that OCR
// splits and merges still match. Overlapping phrases keep only the strongest.
func MatchText(words []Word, query string, threshold float64) []model.Candidate {
	q := normalizeText(query)
	if q == "" {
		return nil
	}
	n := len(strings.Fields(q))

	var lines [][]Word
	index := map[int]int{}
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		i, ok := index[w.Line]
		if !ok {
			i = len(lines)
			index[w.Line] = i
			lines = append(lines, nil)
		}
		lines[i] = append(lines[i], w)
	}

	var found []phrase
	for li, line := range lines {
		for start := range line {
			for size := max(1, n-1); size <= n+1 && start+size <= len(line); size++ {
				span := line[start : start+size]
				c := scorePhrase(span, q)
				if c.Confidence >= threshold {
					found = append(found, phrase{line: li, start: start, end: start + size, cand: c})
				}
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].cand.Confidence > found[j].cand.Confidence
	})
	var kept []phrase
	for _, p := range found {
		clash := false
		for _, k := range kept {
			if k.line == p.line && p.start < k.end && k.start < p.end {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, p)
		}
	}

	out := make([]model.Candidate, 0, len(kept))
	for _, p := range kept {
		out = append(out, p.cand)
	}
	model.SortCandidates(out)
	return out
}

func scorePhrase(span []Word, q string) model.Candidate {
	texts := make([]string, len(span))
	var conf float64
	box := span[0].Box
	for i, w := range span {
		texts[i] = w.Text
		conf += w.Confidence
		box = union(box, w.Box)
	}
	conf /= float64(len(span))
	score := conf * Similarity(strings.Join(texts, " "), q)
	return model.Candidate{
		Position:   box.Center(),
		Confidence: max(0, min(1, score)),
		Source:     model.SourceText,
		Box:        box,
	}
}

func union(a, b model.Region) model.Region {
	x1, y1 := min(a.X, b.X), min(a.Y, b.Y)
	x2 := max(a.X+a.Width, b.X+b.Width)
	y2 := max(a.Y+a.Height, b.Y+b.Height)
	return model.Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
