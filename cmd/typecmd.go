package cmd

import "github.com/spf13/cobra"

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text or press key combinations",
	Long:  "Type text at the current keyboard focus or press a key combination. Text can be passed as a positional argument or via --text.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to type (alternative to positional arg)")
	typeCmd.Flags().String("key", "", "Key combination (e.g. \"ctrl+c\", \"ctrl+shift+t\", \"enter\", \"tab\")")
	typeCmd.Flags().Int("delay", 0, "Delay between keystrokes in ms")
}

func runType(cmd *cobra.Command, args []string) error {
	params := flagParams(cmd, "text", "key", "delay")
	if len(args) > 0 {
		params["text"] = args[0]
	}
	return runStep(cmd, "type", params)
}
