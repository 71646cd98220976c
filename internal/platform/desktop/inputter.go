//go:build cgo

package desktop

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/botvision/internal/platform"
)

// Inputter implements platform.Inputter with robotgo events.
type Inputter struct{}

// NewInputter creates a new robotgo-backed inputter.
func NewInputter() *Inputter {
	return &Inputter{}
}

// Click moves to (x, y) and clicks count times with the given button.
func (i *Inputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 || count > 2 {
		return fmt.Errorf("unsupported click count %d (expected 1 or 2)", count)
	}
	robotgo.Move(x, y)
	robotgo.Click(robotgoButton(button), count == 2)
	return nil
}

// MoveMouse moves the pointer without clicking.
func (i *Inputter) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// TypeText types text one character at a time, sleeping delayMs between keystrokes.
func (i *Inputter) TypeText(text string, delayMs int) error {
	if delayMs <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, r := range text {
		robotgo.TypeStr(string(r))
		robotgo.MilliSleep(delayMs)
	}
	return nil
}

// KeyCombo presses the last key while holding the preceding ones, e.g. ["ctrl", "c"].
func (i *Inputter) KeyCombo(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty key combination")
	}
	key := strings.ToLower(keys[len(keys)-1])
	mods := make([]string, 0, len(keys)-1)
	for _, k := range keys[:len(keys)-1] {
		mods = append(mods, strings.ToLower(k))
	}
	if len(mods) == 0 {
		return robotgo.KeyTap(key)
	}
	return robotgo.KeyTap(key, mods)
}

func robotgoButton(b platform.MouseButton) string {
	switch b {
	case platform.MouseRight:
		return "right"
	case platform.MouseMiddle:
		return "center"
	default:
		return "left"
	}
}
