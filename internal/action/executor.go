// Package action dispatches pointer and keyboard input at resolved targets.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/platform"
)

// ErrOffScreen is the cause of a DispatchError for a point outside the screen.
var ErrOffScreen = errors.New("point is outside the screen")

// Spec describes the action performed at a resolved target.
type Spec struct {
	Button    platform.MouseButton
	Clicks    int           // 1 or 2; 0 means 1
	Offset    model.Point   // added to the target position before dispatch
	PostDelay time.Duration // pause after the action
	Text      string        // typed after the click when set
	TypeDelay int           // milliseconds between keystrokes
}

// Validate checks the parts of s that do not depend on the screen.
func (s Spec) Validate() error {
	if s.Clicks < 0 || s.Clicks > 2 {
		return &config.Error{Field: "clicks", Msg: fmt.Sprintf("must be 1 or 2, got %d", s.Clicks)}
	}
	if s.PostDelay < 0 {
		return &config.Error{Field: "delay", Msg: "must not be negative"}
	}
	if s.TypeDelay < 0 {
		return &config.Error{Field: "type_delay", Msg: "must not be negative"}
	}
	return nil
}

// DispatchError reports that the input backend failed. It is never retried.
type DispatchError struct {
	Op    string
	Point model.Point
	Cause error
}

func (e *DispatchError) Error() string {
	if e.Op == "type" || e.Op == "key" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s at (%d,%d) failed: %v", e.Op, e.Point.X, e.Point.Y, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// Report is what Execute did. Interrupted means the context ended during the
// post-action delay; the input had already been sent.
type Report struct {
	Point         model.Point `yaml:"point"                    json:"point"`
	ScreenChanged *bool       `yaml:"screen_changed,omitempty" json:"screen_changed,omitempty"`
	Interrupted   bool        `yaml:"interrupted,omitempty"    json:"interrupted,omitempty"`
}

// Executor sends input through a platform backend.
type Executor struct {
	Input    platform.Inputter
	Screen   platform.Screenshotter // bounds checks; nil skips them
	Verifier *Verifier              // optional before/after comparison
	Log      logger.Logger
}

// NewExecutor creates an executor without click verification.
func NewExecutor(in platform.Inputter, screen platform.Screenshotter, log logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{Input: in, Screen: screen, Log: log}
}

// Execute clicks target shifted by spec.Offset, types spec.Text if set and
// waits spec.PostDelay.
func (e *Executor) Execute(ctx context.Context, target model.Point, spec Spec) (Report, error) {
	if err := spec.Validate(); err != nil {
		return Report{}, err
	}
	clicks := max(spec.Clicks, 1)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	p := target.Add(spec.Offset)
	rep := Report{Point: p}
	if err := e.checkBounds(p); err != nil {
		return rep, &DispatchError{Op: "click", Point: p, Cause: err}
	}

	var before *hashed
	if e.Verifier != nil {
		s, err := e.Verifier.snapshot(p)
		if err != nil {
			e.log().Warn("click verification skipped", "error", err.Error())
		} else {
			before = s
		}
	}

	if err := e.Input.Click(p.X, p.Y, spec.Button, clicks); err != nil {
		return rep, &DispatchError{Op: "click", Point: p, Cause: err}
	}
	e.log().Info("clicked", "x", p.X, "y", p.Y, "button", spec.Button.String(), "count", clicks)

	if spec.Text != "" {
		if err := e.Input.TypeText(spec.Text, spec.TypeDelay); err != nil {
			return rep, &DispatchError{Op: "type", Point: p, Cause: err}
		}
		e.log().Info("typed", "chars", len([]rune(spec.Text)))
	}

	if err := sleep(ctx, spec.PostDelay); err != nil {
		e.log().Info("post-click delay interrupted", "x", p.X, "y", p.Y, "error", err.Error())
		rep.Interrupted = true
		return rep, nil
	}

	if before != nil {
		if err := sleep(ctx, e.Verifier.Settle); err != nil {
			rep.Interrupted = true
			return rep, nil
		}
		changed, err := e.Verifier.changed(before)
		if err != nil {
			e.log().Warn("click verification failed", "error", err.Error())
		} else {
			rep.ScreenChanged = &changed
		}
	}
	return rep, nil
}

// TypeText types text at the current focus.
func (e *Executor) TypeText(ctx context.Context, text string, delayMs int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Input.TypeText(text, delayMs); err != nil {
		return &DispatchError{Op: "type", Cause: err}
	}
	e.log().Info("typed", "chars", len([]rune(text)))
	return nil
}

// KeyCombo presses keys together, e.g. ["ctrl", "c"].
func (e *Executor) KeyCombo(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Input.KeyCombo(keys); err != nil {
		return &DispatchError{Op: "key", Cause: err}
	}
	e.log().Info("pressed", "keys", keys)
	return nil
}

// MoveMouse moves the pointer to p.
func (e *Executor) MoveMouse(ctx context.Context, p model.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.checkBounds(p); err != nil {
		return &DispatchError{Op: "move", Point: p, Cause: err}
	}
	if err := e.Input.MoveMouse(p.X, p.Y); err != nil {
		return &DispatchError{Op: "move", Point: p, Cause: err}
	}
	return nil
}

func (e *Executor) checkBounds(p model.Point) error {
	if e.Screen == nil {
		return nil
	}
	screen, err := platform.FullScreen(e.Screen)
	if err != nil {
		return err
	}
	if !screen.Contains(p) {
		return fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOffScreen, p.X, p.Y, screen.Width, screen.Height)
	}
	return nil
}

func (e *Executor) log() logger.Logger {
	if e.Log == nil {
		return logger.NewNop()
	}
	return e.Log
}

// sleep waits d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
