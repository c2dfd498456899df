package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/output"
	"github.com/reportlens/reportlens/internal/extract"
)

// NewPagesCommand creates the pages command.
func NewPagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <source>",
		Short: "List report pages in display order",
		Long: `Discover and order the report's pages without writing artifacts.

Each page is listed with its resolved position, classified type, and
visual count. Hidden pages are excluded; their count is reported
separately.`,
		Example: `  # List pages of a project
  reportlens pages ./reports/Demo.pbip

  # As JSON
  reportlens pages ./exports/demo.pbix --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			result, err := cmdCtx.Extractor().Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(result.Pages)
			}

			r.Header(1, fmt.Sprintf("Pages (%d visible, %d hidden)", len(result.Pages), result.HiddenPages))

			rows := make([][]string, 0, len(result.Pages))
			for _, p := range result.Pages {
				rows = append(rows, []string{
					fmt.Sprintf("%d", p.Ordinal+1),
					p.DisplayName,
					extract.ClassifyPage(p.DisplayName),
					fmt.Sprintf("%d", len(p.Visuals)),
				})
			}
			r.Table([]string{"#", "Page", "Type", "Visuals"}, rows)

			for _, w := range result.Warnings {
				r.Warning(w)
			}
			return nil
		},
	}
}
