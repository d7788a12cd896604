package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MalinduDS/styleshot/internal/batch"
	"github.com/MalinduDS/styleshot/internal/images"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		outDir string
		limit  int
		flags  providerFlags
	)

	cmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Generate product shots for every row of a manifest",
		Long: `Reads a .parquet or .jsonl manifest with the columns id, image_path, model_id,
scene, brightness, contrast and warmth. Rows are processed one at a time; each
row gets its own output directory and a YAML report summarises the run.`,
		Example: `  styleshot batch looks.jsonl --out shoots/
  styleshot batch catalog.parquet --provider openai --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath := args[0]

			cfg, c, pipeline, err := flags.load()
			if err != nil {
				return err
			}

			rows, err := batch.NewLoader(manifestPath).Load()
			if err != nil {
				return err
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			slog.Info("Loaded manifest", "path", manifestPath, "rows", len(rows))

			runner := &batch.Runner{
				Catalog:  c,
				Pipeline: pipeline,
				Fetcher:  images.NewFetcher(cfg.MaxUploadBytes),
				OutDir:   outDir,
			}
			results, runErr := runner.Run(cmd.Context(), rows)

			report := batch.NewReport(pipeline.Provider(), pipeline.Model(), manifestPath, results)
			path, err := report.Save(outDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed\nReport saved to: %s\n",
				report.Config.Succeeded, report.Config.Failed, path)
			return runErr
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "styleshot-output", "Output directory")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Process at most this many rows (0 = all)")
	flags.register(cmd)

	return cmd
}
