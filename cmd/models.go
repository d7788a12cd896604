package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newModelsCmd() *cobra.Command {
	var (
		catalogFile string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List virtual models, studio backgrounds and export presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(catalogFile)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				data, err := yaml.Marshal(c)
				if err != nil {
					return fmt.Errorf("failed to marshal YAML: %w", err)
				}
				_, err = out.Write(data)
				return err
			case "text":
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, yaml)", format)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tNAME\tDESCRIPTION")
			for _, m := range c.Models {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, m.Description)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "BACKGROUND\tNAME\tSUMMARY")
			for _, b := range c.Backgrounds {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Key, b.Name, b.Summary())
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "PRESET\tNAME\tSIZE")
			for _, p := range c.ExportPresets {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\n", p.Key, p.Name, p.Width, p.Height)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Catalog YAML file (default: built-in catalog)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or yaml")

	return cmd
}
