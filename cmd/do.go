package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mj1618/botvision/internal/bot"
	"github.com/mj1618/botvision/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DoResult is the YAML output of a batch do command.
type DoResult struct {
	OK        bool             `yaml:"ok"              json:"ok"`
	Action    string           `yaml:"action"          json:"action"`
	Steps     int              `yaml:"steps"           json:"steps"`
	Completed int              `yaml:"completed"       json:"completed"`
	Error     string           `yaml:"error,omitempty" json:"error,omitempty"`
	Elapsed   string           `yaml:"elapsed"         json:"elapsed"`
	Results   []bot.StepResult `yaml:"results"         json:"results"`
}

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute multiple steps in a batch",
	Long: `Execute a sequence of steps from a YAML list on stdin.

Each step is a step name with its parameters as a map. Steps execute
sequentially, and by default execution stops on the first error.

Supported step types: ` + strings.Join(bot.StepNames, ", ") + `

Example:
  botvision do <<'EOF'
  - click-relative: { anchor: email_label.png, target: input.png, max-distance: 150 }
  - type: { text: "john@example.com" }
  - type: { key: "tab" }
  - click-text: { text: "Submit" }
  - sleep: { ms: 500 }
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error (default: true)")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	steps, err := parseSteps(data)
	if err != nil {
		return err
	}

	session, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, stepErr := runBatch(ctx, session, steps, stopOnError)
	if err := output.Print(result); err != nil {
		return err
	}
	return stepErr
}

// parseSteps decodes a YAML list of single-key step maps.
func parseSteps(data []byte) ([]map[string]map[string]interface{}, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("no steps provided on stdin: pipe a YAML list of steps")
	}
	var steps []map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no steps provided: expected a YAML list of steps")
	}
	return steps, nil
}

// runBatch executes steps in order. The returned error is the first step
// failure, or nil when every step succeeded.
func runBatch(ctx context.Context, runner stepRunner, steps []map[string]map[string]interface{}, stopOnError bool) (DoResult, error) {
	start := time.Now()
	out := DoResult{Action: "do", Steps: len(steps), Results: make([]bot.StepResult, 0, len(steps))}
	var firstErr error

	for i, step := range steps {
		stepNum := i + 1
		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = ctx.Err()
				out.Error = fmt.Sprintf("step %d: %s", stepNum, ctx.Err())
			}
			break
		}

		if len(step) != 1 {
			err := fmt.Errorf("step %d: expected exactly one step key, got %d", stepNum, len(step))
			out.Results = append(out.Results, bot.StepResult{Step: stepNum, Result: bot.Result{Error: err.Error()}})
			if firstErr == nil {
				firstErr = err
				out.Error = err.Error()
			}
			if stopOnError {
				break
			}
			continue
		}

		for name, params := range step {
			stepStart := time.Now()
			result, err := runner.RunStep(ctx, name, params)
			result.Step = stepNum
			if result.Elapsed == "" {
				result.Elapsed = time.Since(stepStart).Round(time.Millisecond).String()
			}
			out.Results = append(out.Results, result)
			if err != nil {
				log.Warn("step failed", "step", stepNum, "action", name, "error", err.Error())
				if firstErr == nil {
					firstErr = err
					out.Error = fmt.Sprintf("step %d: %s", stepNum, err)
				}
			} else {
				out.Completed++
			}
		}
		if firstErr != nil && stopOnError {
			break
		}
	}

	out.OK = firstErr == nil
	out.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return out, firstErr
}
