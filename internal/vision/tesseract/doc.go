// Package tesseract registers a Tesseract OCR engine as the vision
// Recognizer. It needs cgo and the tesseract/leptonica libraries.
package tesseract
