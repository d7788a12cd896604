package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MalinduDS/styleshot/internal/batch"
	"github.com/MalinduDS/styleshot/internal/images"
	"github.com/MalinduDS/styleshot/internal/imagegen"
	"github.com/MalinduDS/styleshot/internal/lighting"
	"github.com/MalinduDS/styleshot/internal/studio"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		imagePath  string
		modelID    string
		scene      string
		background string
		outDir     string
		promptOnly bool
		light      lighting.State
		flags      providerFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one styled product shot",
		Long: `Runs a single generation from the command line and writes the generated
image plus one file per export preset into the output directory.`,
		Example: `  # Layla in the default Parisian apartment
  styleshot generate --image dress.jpg

  # A freeform scene with warmer lighting, no virtual model
  styleshot generate --image shirt.png --model none --scene "on a sunny beach" --warmth 30

  # Print the prompt without calling the provider
  styleshot generate --image dress.jpg --background runway-show --prompt-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, pipeline, err := flags.load()
			if err != nil {
				return err
			}
			if scene != "" && background != "" {
				return fmt.Errorf("--scene and --background are mutually exclusive")
			}
			if background != "" {
				if _, ok := c.Background(background); !ok {
					return fmt.Errorf("%w: %s", studio.ErrUnknownBackground, background)
				}
				scene = background
			}

			workDir, err := os.MkdirTemp("", "styleshot-")
			if err != nil {
				return fmt.Errorf("failed to create work directory: %w", err)
			}
			defer os.RemoveAll(workDir)

			sess := studio.New("cli", studio.Options{
				Catalog:    c,
				Pipeline:   pipeline,
				UploadsDir: workDir,
			})
			defer sess.Close()

			fetcher := images.NewFetcher(cfg.MaxUploadBytes)
			if err := batch.Configure(cmd.Context(), sess, fetcher, imagePath, modelID, scene, light); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Prompt: %s\n", sess.Prompt())
			if promptOnly {
				return nil
			}

			if _, err := sess.Generate(cmd.Context()); err != nil {
				return errors.New(imagegen.UserMessage(err))
			}

			files, err := batch.WriteOutputs(cmd.Context(), sess, outDir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "Wrote %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Product photo path or URL (required)")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", `Virtual model id from "styleshot models" ("none" for no model)`)
	cmd.Flags().StringVarP(&scene, "scene", "s", "", "Freeform scene description")
	cmd.Flags().StringVarP(&background, "background", "b", "", "Studio background key")
	cmd.Flags().IntVar(&light.Brightness, "brightness", 0, "Brightness (-50..50)")
	cmd.Flags().IntVar(&light.Contrast, "contrast", 0, "Contrast (-50..50)")
	cmd.Flags().IntVar(&light.Warmth, "warmth", 0, "Warmth (-50..50)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "styleshot-output", "Output directory")
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "Print the composed prompt and exit")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
