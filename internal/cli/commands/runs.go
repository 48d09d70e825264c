package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/modguard/internal/cli/output"
	"github.com/leapstack-labs/modguard/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent analysis runs",
		Long: `Show the most recent discovery and check runs recorded in the state
database, newest first.`,
		Example: `  # Last 20 runs
  modguard runs

  # Last 5 runs as JSON
  modguard runs --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			cmdCtx.WithFormat(cmd, format)

			runs, err := cmdCtx.Engine.Runs(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return renderRuns(cmdCtx.Renderer, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func renderRuns(r *output.Renderer, runs []*state.Run) error {
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(map[string]any{"runs": runs})
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded yet. Run 'modguard check' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run),
			strconv.Itoa(run.FilesTotal),
			strconv.Itoa(run.Modules),
			strconv.Itoa(run.Violations),
		})
	}

	r.Header(1, fmt.Sprintf("Recent Runs (%d)", len(runs)))
	r.Println("")
	r.Table([]string{"Run", "Status", "Started", "Duration", "Files", "Modules", "Violations"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(run *state.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}
