package cli

import (
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*stats.Granularity)(nil)

func newStatsCmd(app *App) *cobra.Command {
	var view stats.Granularity

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study hours over time and per subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := app.Stats.Report(cmd.Context(), view)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatBuckets(report.Granularity, report.Buckets))
			fmt.Fprint(out, formatter.FormatSummary(report.Summary, report.Reference))
			return nil
		},
	}

	cmd.Flags().Var(&view, "view", "Series to show: daily (7 days), weekly (4 weeks) or monthly (6 months)")
	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show every subject, chapter and topic with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var active *domain.TimerTarget
			if status := app.Timer.Status(ctx); status.Running {
				active = &status.Target
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStudyTree(app.Study.Tree(ctx), active))
			return nil
		},
	}
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that all totals roll up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs := app.Study.Check(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatViolations(vs))
			if len(vs) > 0 {
				return fmt.Errorf("%d consistency problem(s)", len(vs))
			}
			return nil
		},
	}
}
