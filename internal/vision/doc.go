// Package vision implements resolve.Detector against live screen captures.
//
// Image queries are answered by normalized cross-correlation template
// matching, text queries by an OCR Recognizer followed by fuzzy phrase
// matching. Every Detect call captures the screen again.
package vision
