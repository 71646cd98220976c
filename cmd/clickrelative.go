package cmd

import "github.com/spf13/cobra"

var clickRelativeFlags = []string{
	"anchor", "target", "kind", "max-distance", "confidence", "delay", "button", "double",
	"backtrack", "attempts", "region", "search-region", "offset-x", "offset-y", "type-text",
}

var clickRelativeCmd = &cobra.Command{
	Use:   "click-relative",
	Short: "Click the target instance closest to a unique anchor",
	Long: `Find the anchor image on screen (it must appear exactly once), find every
instance of the target, keep those within --max-distance of the anchor and
click the best one. Retries up to --attempts times; with --backtrack the
retries search the whole screen at a relaxed confidence.

Examples:
  botvision click-relative --anchor email_label.png --target input.png --max-distance 150
  botvision click-relative --anchor name.png --target "Save" --kind text --max-distance 300 --backtrack
  botvision click-relative --anchor a.png --target t.png --max-distance 200 --type-text "hello"`,
	RunE: runClickRelative,
}

func init() {
	rootCmd.AddCommand(clickRelativeCmd)
	clickRelativeCmd.Flags().String("anchor", "", "Anchor template image path")
	clickRelativeCmd.Flags().String("target", "", "Target template path, or text when --kind text")
	clickRelativeCmd.Flags().String("kind", "image", "Target kind: image, text")
	clickRelativeCmd.Flags().Float64("max-distance", 0, "Maximum anchor-to-target distance in pixels")
	clickRelativeCmd.Flags().Float64("confidence", 0, "Minimum confidence, 0-1 or 0-100 (default from config)")
	clickRelativeCmd.Flags().Int("delay", 0, "Pause after the click in ms")
	clickRelativeCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickRelativeCmd.Flags().Bool("double", false, "Double-click")
	clickRelativeCmd.Flags().Bool("backtrack", false, "Retry over the full screen with relaxed confidence")
	clickRelativeCmd.Flags().Int("attempts", 0, "Maximum detection attempts (default from config)")
	clickRelativeCmd.Flags().String("region", "", "Restrict the target to x,y,w,h")
	clickRelativeCmd.Flags().String("search-region", "", "Search the anchor only inside x,y,w,h")
	clickRelativeCmd.Flags().Int("offset-x", 0, "Horizontal offset added to the click point")
	clickRelativeCmd.Flags().Int("offset-y", 0, "Vertical offset added to the click point")
	clickRelativeCmd.Flags().String("type-text", "", "Text to type after clicking")
	_ = clickRelativeCmd.MarkFlagRequired("anchor")
	_ = clickRelativeCmd.MarkFlagRequired("target")
	_ = clickRelativeCmd.MarkFlagRequired("max-distance")
}

func runClickRelative(cmd *cobra.Command, args []string) error {
	return runStep(cmd, "click-relative", flagParams(cmd, clickRelativeFlags...))
}
