package cmd

import (
	"github.com/mj1618/botvision/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and print the effective configuration",
	Long: `Load the configuration (defaults, then --config, then --log-level), validate
every option and print the result. Exits with status 6 on an invalid option.

Examples:
  botvision config
  botvision config --config bot.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
