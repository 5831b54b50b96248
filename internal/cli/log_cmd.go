package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var hours, minutes int

	cmd := &cobra.Command{
		Use:   "log SUBJECT CHAPTER",
		Short: "Log untimed study on a chapter",
		Long: "Log study time that was not timed, for example reading away from the\n" +
			"computer. The time counts toward the chapter and subject, not a topic.\n" +
			"Negative values count as zero. Without flags on a terminal a form asks\n" +
			"for the amount.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := app.Study.ResolvePath(ctx, args...)
			if err != nil {
				return err
			}

			flagsSet := cmd.Flags().Changed("hours") || cmd.Flags().Changed("minutes")
			if !flagsSet {
				if !app.interactive() {
					return fmt.Errorf("set --hours and/or --minutes")
				}
				names := pathNames(app.Study.Tree(ctx), ids...)
				var h, m string
				if err := manualLogForm(names[1], &h, &m).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
						return nil
					}
					return err
				}
				hours, minutes = parseFormInt(h), parseFormInt(m)
			}

			msg, err := applyManualLog(ctx, app, ids[0], ids[1], hours, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "Hours studied")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Minutes studied")
	return cmd
}

// applyManualLog records the entry and returns the line to print.
func applyManualLog(ctx context.Context, app *App, subjectID, chapterID string, hours, minutes int) (string, error) {
	seconds, err := app.Study.LogManual(ctx, subjectID, chapterID, hours, minutes)
	if err != nil {
		return "", err
	}
	if seconds == 0 {
		return formatter.Dim("Nothing to log."), nil
	}
	names := pathNames(app.Study.Tree(ctx), subjectID, chapterID)
	return formatter.Success(fmt.Sprintf("Logged %s on %s %s %s",
		formatter.Bold(formatter.FormatDuration(seconds)), names[0], formatter.Dim("›"), names[1])), nil
}
