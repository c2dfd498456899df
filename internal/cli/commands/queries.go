package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/output"
	"github.com/reportlens/reportlens/pkg/core"
)

// NewQueriesCommand creates the queries command.
func NewQueriesCommand() *cobra.Command {
	var pageFilter int

	cmd := &cobra.Command{
		Use:   "queries <source>",
		Short: "Show the DAX queries generated for each page",
		Long: `Generate and print the per-visual DAX queries without writing
artifacts.

Each query carries the originating measure expression so the printed
output is self-contained. Use --page to restrict output to one slide.`,
		Example: `  # All queries
  reportlens queries ./reports/Demo.pbip

  # Only slide 2
  reportlens queries ./reports/Demo.pbip --page 2

  # As JSON
  reportlens queries ./reports/Demo.pbip --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			result, err := cmdCtx.Extractor().Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			groups := result.Queries
			if pageFilter > 0 {
				groups = filterGroups(groups, pageFilter)
				if len(groups) == 0 {
					return fmt.Errorf("no page with slide number %d", pageFilter)
				}
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(groups)
			}

			for _, group := range groups {
				r.Header(2, fmt.Sprintf("Slide %d: %s", group.SlideNumber, group.PageName))
				if len(group.Queries) == 0 {
					r.Dim("no queries")
					r.Println("")
					continue
				}
				for _, q := range group.Queries {
					r.KeyValue("Query", q.Label)
					if q.MeasureExpression != "" && q.MeasureExpression != core.ExpressionNotFound {
						r.Dim("measure: " + q.MeasureExpression)
					} else if q.MeasureExpression == core.ExpressionNotFound {
						r.Warning(fmt.Sprintf("%s: %s", q.Label, core.ExpressionNotFound))
					}
					r.Println(q.DAX)
					r.Println("")
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pageFilter, "page", 0, "Only show queries for this slide number")
	return cmd
}

func filterGroups(groups []core.QueryGroup, slide int) []core.QueryGroup {
	for _, g := range groups {
		if g.SlideNumber == slide {
			return []core.QueryGroup{g}
		}
	}
	return nil
}
