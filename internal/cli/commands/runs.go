package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/output"
	"github.com/reportlens/reportlens/pkg/core"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show extraction run history",
		Long:  `List recorded extraction runs, newest first.`,
		Example: `  # Last 20 runs
  reportlens runs

  # Last 5 runs as JSON
  reportlens runs --limit 5 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmdCtx.Store == nil {
				return fmt.Errorf("run history is disabled (history: false)")
			}

			runs, err := cmdCtx.Store.ListRuns(limit)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(runs)
			}

			r.Header(1, fmt.Sprintf("Runs (%d)", len(runs)))
			if len(runs) == 0 {
				r.Dim("no runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.Source,
					string(run.Status),
					fmt.Sprintf("%d", run.Pages),
					fmt.Sprintf("%d", run.Queries),
					fmt.Sprintf("%d", run.Warnings),
					run.StartedAt.Local().Format(time.DateTime),
					runDuration(run),
				})
			}
			r.Table([]string{"ID", "Source", "Status", "Pages", "Queries", "Warnings", "Started", "Duration"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *core.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
