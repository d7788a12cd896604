package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "styleshot",
		Short: "AI product photography studio for clothing items",
		Long: `StyleShot turns a photo of a clothing item into a styled product shot.

Pick a virtual model and a studio scene, tune the lighting, and generate the image
with Gemini or OpenAI. Results can be exported at social-media and storefront sizes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newBatchCmd())

	return cmd
}
