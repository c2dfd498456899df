package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/output"
	"github.com/reportlens/reportlens/internal/extract"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <source>",
		Short: "Extract pages, model, and queries from a report",
		Long: `Run the full extraction pipeline against a report source and write
the analysis artifacts.

The source may be a project file (.pbip), a project directory, or an
archive (.pbix). The run produces two files in the output directory:
analysis_request.json (slide-level metadata) and context.json (pages,
model, and generated queries).`,
		Example: `  # Extract a project
  reportlens extract ./reports/Demo.pbip

  # Extract an archive into a custom directory
  reportlens extract ./exports/demo.pbix --out-dir build/analysis

  # Machine-readable result
  reportlens extract ./reports/Demo.pbip --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := cmdCtx.Extractor().Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderExtractResult(cmdCtx.Renderer, result)
		},
	}
}

func renderExtractResult(r *output.Renderer, result *extract.Result) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(result)
	}

	r.Header(1, fmt.Sprintf("Extracted %s", result.Source))
	r.KeyValue("Pages", fmt.Sprintf("%d visible, %d hidden", len(result.Pages), result.HiddenPages))
	r.KeyValue("Model", fmt.Sprintf("%d tables, %d measures, %d relationships",
		len(result.Model.Tables), len(result.Model.Measures), len(result.Model.Relationships)))
	r.KeyValue("Queries", fmt.Sprintf("%d", countQueries(result)))
	r.KeyValue("Request", result.RequestPath)
	r.KeyValue("Context", result.ContextPath)
	if result.RunID != "" {
		r.KeyValue("Run", result.RunID)
	}

	for _, w := range result.Warnings {
		r.Warning(w)
	}
	r.Println("")
	r.Success("extraction complete")
	return nil
}

func countQueries(result *extract.Result) int {
	n := 0
	for _, g := range result.Queries {
		n += len(g.Queries)
	}
	return n
}
