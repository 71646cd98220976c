package cmd

import "github.com/spf13/cobra"

var findTextCmd = &cobra.Command{
	Use:   "find-text [text]",
	Short: "Locate text on screen with OCR",
	Long: `Locate text on screen and print its centre and bounds without clicking.
Matching is case-insensitive and tolerates small OCR errors.

Examples:
  botvision find-text "Submit"
  botvision find-text --text "Sign in" --region 0,0,800,600 --confidence 70`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFindText,
}

var findImageCmd = &cobra.Command{
	Use:   "find-image [image]",
	Short: "Locate a template image on screen",
	Long: `Locate a template image on screen and print its centre and bounds without
clicking. When it appears more than once the strongest match wins, ties going
to the topmost, then leftmost.

Examples:
  botvision find-image logo.png
  botvision find-image --image button.png --confidence 0.9`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFindImage,
}

func init() {
	rootCmd.AddCommand(findTextCmd)
	findTextCmd.Flags().String("text", "", "Text to find (alternative to positional arg)")
	findTextCmd.Flags().Float64("confidence", 0, "Minimum confidence, 0-1 or 0-100 (default from config)")
	findTextCmd.Flags().String("region", "", "Search only inside x,y,w,h")

	rootCmd.AddCommand(findImageCmd)
	findImageCmd.Flags().String("image", "", "Template image path (alternative to positional arg)")
	findImageCmd.Flags().Float64("confidence", 0, "Minimum confidence, 0-1 or 0-100 (default from config)")
	findImageCmd.Flags().String("region", "", "Search only inside x,y,w,h")
}

func runFindText(cmd *cobra.Command, args []string) error {
	params := flagParams(cmd, "text", "confidence", "region")
	if len(args) > 0 {
		params["text"] = args[0]
	}
	return runStep(cmd, "find-text", params)
}

func runFindImage(cmd *cobra.Command, args []string) error {
	params := flagParams(cmd, "image", "confidence", "region")
	if len(args) > 0 {
		params["image"] = args[0]
	}
	return runStep(cmd, "find-image", params)
}
