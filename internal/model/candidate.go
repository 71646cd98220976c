package model

import (
	"fmt"
	"sort"
	"strings"
)

// SourceKind says which detector produced a candidate.
type SourceKind int

const (
	SourceImage SourceKind = iota
	SourceText
)

func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	default:
		return "image"
	}
}

// ParseSourceKind converts a flag value to a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(s) {
	case "image", "img", "":
		return SourceImage, nil
	case "text", "ocr":
		return SourceText, nil
	default:
		return SourceImage, fmt.Errorf("unknown target kind: %q (expected image or text)", s)
	}
}

// MarshalYAML renders the kind by name.
func (k SourceKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// MarshalText renders the kind by name for JSON output.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Query is what a detector looks for: a template image path or a text phrase.
type Query struct {
	Kind  SourceKind `yaml:"kind"  json:"kind"`
	Value string     `yaml:"value" json:"value"`
}

// ImageQuery is shorthand for a template query.
func ImageQuery(path string) Query { return Query{Kind: SourceImage, Value: path} }

// TextQuery is shorthand for an OCR query.
func TextQuery(text string) Query { return Query{Kind: SourceText, Value: text} }

func (q Query) String() string {
	return fmt.Sprintf("%s:%s", q.Kind, q.Value)
}

// Candidate is one detection. Position is the centre of Box in screen coordinates.
type Candidate struct {
	Position   Point      `yaml:"position"   json:"position"`
	Confidence float64    `yaml:"confidence" json:"confidence"`
	Source     SourceKind `yaml:"source"     json:"source"`
	Box        Region     `yaml:"box"        json:"box"`
}

// ScanBefore reports whether a precedes b in top-left to bottom-right scan order.
func ScanBefore(a, b Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// SortCandidates orders candidates by descending confidence, ties by scan order.
func SortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Confidence != cs[j].Confidence {
			return cs[i].Confidence > cs[j].Confidence
		}
		return ScanBefore(cs[i].Position, cs[j].Position)
	})
}

// ResolvedTarget is the single target chosen for one resolution call.
type ResolvedTarget struct {
	Position           Point   `yaml:"position"            json:"position"`
	Confidence         float64 `yaml:"confidence"          json:"confidence"`
	DistanceFromAnchor float64 `yaml:"distance_from_anchor" json:"distance_from_anchor"`
	Anchor             *Point  `yaml:"anchor,omitempty"    json:"anchor,omitempty"`
}

// AttemptRecord is the diagnostic trail of one detection cycle.
type AttemptRecord struct {
	Attempt        int     `yaml:"attempt"                json:"attempt"`
	Backtrack      bool    `yaml:"backtrack,omitempty"    json:"backtrack,omitempty"`
	Confidence     float64 `yaml:"confidence"             json:"confidence"`
	AnchorFound    bool    `yaml:"anchor_found,omitempty" json:"anchor_found,omitempty"`
	CandidateCount int     `yaml:"candidates"             json:"candidates"`
	Selected       *Point  `yaml:"selected,omitempty"     json:"selected,omitempty"`
	Reason         Reason  `yaml:"reason,omitempty"       json:"reason,omitempty"`
	Detail         string  `yaml:"detail,omitempty"       json:"detail,omitempty"`
}
