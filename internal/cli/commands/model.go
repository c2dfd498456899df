package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/output"
)

// NewModelCommand creates the model command.
func NewModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model <source>",
		Short: "Show the aggregated semantic model",
		Long: `Parse the semantic model definitions and print the aggregated
tables, measures, and relationships without writing artifacts.`,
		Example: `  # Summarize a project's model
  reportlens model ./reports/Demo.pbip

  # As JSON
  reportlens model ./reports/Demo.pbip --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			result, err := cmdCtx.Extractor().Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			model := result.Model
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(model)
			}

			r.Header(1, fmt.Sprintf("Model (%d tables, %d measures, %d relationships)",
				len(model.Tables), len(model.Measures), len(model.Relationships)))

			if len(model.Tables) > 0 {
				r.Header(2, "Tables")
				rows := make([][]string, 0, len(model.Tables))
				for _, t := range model.Tables {
					rows = append(rows, []string{t.Name, fmt.Sprintf("%d", len(t.Columns))})
				}
				r.Table([]string{"Table", "Columns"}, rows)
			}

			if len(model.Measures) > 0 {
				r.Header(2, "Measures")
				rows := make([][]string, 0, len(model.Measures))
				for _, m := range model.Measures {
					rows = append(rows, []string{m.Table, m.Name, m.Expression})
				}
				r.Table([]string{"Table", "Measure", "Expression"}, rows)
			}

			if len(model.Relationships) > 0 {
				r.Header(2, "Relationships")
				rows := make([][]string, 0, len(model.Relationships))
				for _, rel := range model.Relationships {
					rows = append(rows, []string{
						fmt.Sprintf("%s[%s]", rel.FromTable, rel.FromColumn),
						fmt.Sprintf("%s[%s]", rel.ToTable, rel.ToColumn),
						rel.Cardinality,
					})
				}
				r.Table([]string{"From", "To", "Cardinality"}, rows)
			}

			for _, w := range result.Warnings {
				r.Warning(w)
			}
			return nil
		},
	}
}
