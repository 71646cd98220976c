package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mj1618/botvision/internal/action"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/resolve"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"click-relative", "find-text", "find-image", "click-text", "type", "capture", "do", "config", "serve"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "format", "pretty", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitError},
		{"not found", &resolve.Error{Reason: model.ReasonResolutionFailed, LastReason: model.ReasonAnchorNotFound, Attempts: 3}, ExitNotFound},
		{"out of range", &resolve.Error{Reason: model.ReasonResolutionFailed, LastReason: model.ReasonNoTargetInRange, Attempts: 3}, ExitNotFound},
		{"ambiguous", &resolve.Error{Reason: model.ReasonResolutionFailed, LastReason: model.ReasonAmbiguousAnchor, Attempts: 3}, ExitAmbiguous},
		{"detector kept failing", &resolve.Error{Reason: model.ReasonResolutionFailed, LastReason: model.ReasonDetectorError, Attempts: 3}, ExitNotFound},
		{"no last reason", &resolve.Error{Reason: model.ReasonResolutionFailed}, ExitNotFound},
		{"dispatch", &action.DispatchError{Op: "click", Cause: errors.New("denied")}, ExitDispatch},
		{"cancelled", &resolve.Error{Reason: model.ReasonCancelled, Cause: context.Canceled}, ExitCancelled},
		{"context", fmt.Errorf("step 2: %w", context.Canceled), ExitCancelled},
		{"config", &config.Error{Field: "overlay_width", Msg: "must be > 0"}, ExitConfig},
		{"invalid input", fmt.Errorf("load: %w", resolve.ErrInvalidInput), ExitInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
