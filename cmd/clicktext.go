package cmd

import "github.com/spf13/cobra"

var clickTextCmd = &cobra.Command{
	Use:   "click-text [text]",
	Short: "Locate text on screen with OCR and click it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClickText,
}

func init() {
	rootCmd.AddCommand(clickTextCmd)
	clickTextCmd.Flags().String("text", "", "Text to click (alternative to positional arg)")
	clickTextCmd.Flags().Float64("confidence", 0, "Minimum confidence, 0-1 or 0-100 (default from config)")
	clickTextCmd.Flags().String("region", "", "Search only inside x,y,w,h")
	clickTextCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickTextCmd.Flags().Bool("double", false, "Double-click")
	clickTextCmd.Flags().Int("delay", 0, "Pause after the click in ms")
	clickTextCmd.Flags().Int("offset-x", 0, "Horizontal offset added to the click point")
	clickTextCmd.Flags().Int("offset-y", 0, "Vertical offset added to the click point")
	clickTextCmd.Flags().String("type-text", "", "Text to type after clicking")
}

func runClickText(cmd *cobra.Command, args []string) error {
	params := flagParams(cmd, "text", "confidence", "region", "button", "double", "delay", "offset-x", "offset-y", "type-text")
	if len(args) > 0 {
		params["text"] = args[0]
	}
	return runStep(cmd, "click-text", params)
}
