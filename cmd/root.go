package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/logger"
	"github.com/mj1618/botvision/internal/model"
	"github.com/mj1618/botvision/internal/output"
	"github.com/mj1618/botvision/internal/resolve"
	"github.com/mj1618/botvision/internal/version"
	"github.com/spf13/cobra"
)

// Exit codes reported by Execute.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitNotFound     = 2
	ExitAmbiguous    = 3
	ExitDispatch     = 4
	ExitCancelled    = 5
	ExitConfig       = 6
	ExitInvalidInput = 7
)

var (
	// cfg and log are set by the root PersistentPreRunE.
	cfg = config.Default()
	log = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "botvision",
	Short: "Find things on screen by image or text and click them",
	Long: `botvision drives a desktop like a user would: it captures the screen, finds
targets by template image or OCR text, and dispatches mouse and keyboard input.

click-relative resolves a target that appears several times by picking the
instance closest to a unique anchor.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "Override log_level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
			loaded.LogLevel = level
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		cfg = loaded

		l, err := logger.New(cfg.LoggerOptions())
		if err != nil {
			return &config.Error{Field: "log_writers", Msg: err.Error()}
		}
		log = l.With("cmd", cmd.Name())
		return nil
	}
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	reason := bot.ReasonOf(err)
	if reason == model.ReasonResolutionFailed {
		reason = lastReason(err)
	}
	switch {
	case reason.NotMatched(), reason == model.ReasonResolutionFailed:
		return ExitNotFound
	case reason == model.ReasonAmbiguousAnchor:
		return ExitAmbiguous
	case reason == model.ReasonDispatchError:
		return ExitDispatch
	case reason == model.ReasonCancelled:
		return ExitCancelled
	case reason == model.ReasonConfiguration:
		return ExitConfig
	case reason == model.ReasonInvalidInput:
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// lastReason returns what the final attempt of a failed resolution ran into.
func lastReason(err error) model.Reason {
	var re *resolve.Error
	if errors.As(err, &re) && re.LastReason != model.ReasonNone {
		return re.LastReason
	}
	return model.ReasonResolutionFailed
}
