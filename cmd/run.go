package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/output"
	"github.com/spf13/cobra"
)

// openSession is swapped by tests.
var openSession = func() (stepRunner, error) {
	return bot.Open(cfg, log)
}

// stepRunner executes named steps. *bot.Session implements it.
type stepRunner interface {
	RunStep(ctx context.Context, name string, params map[string]interface{}) (bot.StepResult, error)
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// flagParams collects the flags the user set into step parameters, keyed by
// flag name. Unset flags are left out so step defaults and config apply.
func flagParams(cmd *cobra.Command, names ...string) map[string]interface{} {
	params := make(map[string]interface{})
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		raw := f.Value.String()
		switch f.Value.Type() {
		case "int":
			if n, err := strconv.Atoi(raw); err == nil {
				params[name] = n
			}
		case "float64":
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				params[name] = v
			}
		case "bool":
			if b, err := strconv.ParseBool(raw); err == nil {
				params[name] = b
			}
		default:
			params[name] = raw
		}
	}
	return params
}

// runStep opens a session, runs one step, prints its result and returns the
// step error so the process exits non-zero.
func runStep(cmd *cobra.Command, name string, params map[string]interface{}) error {
	session, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, stepErr := session.RunStep(ctx, name, params)
	log.Debug("step finished", "step", name, "result", result.Describe())
	if err := output.Print(result); err != nil {
		return err
	}
	return stepErr
}
