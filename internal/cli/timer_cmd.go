package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/alexanderramin/studyfocus/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTimerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time study on a topic",
	}
	cmd.AddCommand(
		newTimerStartCmd(app),
		newTimerStopCmd(app),
		newTimerStatusCmd(app),
	)
	return cmd
}

func newTimerStartCmd(app *App) *cobra.Command {
	var limit time.Duration

	cmd := &cobra.Command{
		Use:   "start SUBJECT CHAPTER TOPIC",
		Short: "Start the timer and run until stopped",
		Long: "Start timing a topic. A timer already running elsewhere is stopped and\n" +
			"logged first. On a terminal the focus view opens; otherwise the timer\n" +
			"runs until interrupted or until --for elapses, then logs the session.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target, err := resolveTarget(ctx, app, args)
			if err != nil {
				return err
			}
			prev, err := app.Timer.Start(ctx, target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if prev.ElapsedSeconds > 0 {
				fmt.Fprintln(out, formatter.Success("Logged "+formatter.FormatDuration(prev.ElapsedSeconds)+" on the previous timer"))
			}

			if app.interactive() && limit == 0 {
				if err := app.Study.Select(ctx, service.Selection{SubjectID: target.SubjectID, ChapterID: target.ChapterID}); err != nil {
					return err
				}
				return runFocusProgram(cmd, app)
			}

			status := app.Timer.Status(ctx)
			fmt.Fprintln(out, "Timing "+formatter.FormatTimerLine(status.SubjectName, status.ChapterName, status.TopicName, 0)+
				formatter.Dim("  (Ctrl+C to stop)"))

			waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				waitCtx, cancel = context.WithTimeout(waitCtx, limit)
				defer cancel()
			}
			<-waitCtx.Done()

			return stopAndReport(cmd, app, status)
		},
	}

	cmd.Flags().DurationVar(&limit, "for", 0, "Stop automatically after this long (e.g. 25m)")
	return cmd
}

// stopAndReport stops the timer and prints the logged session. before is the
// status captured while the timer was running, for the display names.
func stopAndReport(cmd *cobra.Command, app *App, before service.TimerStatus) error {
	res, err := app.Timer.Stop(context.WithoutCancel(cmd.Context()))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if before.Running && res.Target == before.Target {
		if res.ElapsedSeconds == 0 {
			fmt.Fprintln(out, formatter.Dim("Stopped before a full second; nothing logged."))
			return nil
		}
		fmt.Fprintln(out, formatter.Success(fmt.Sprintf("Logged %s on %s",
			formatter.Bold(formatter.FormatDuration(res.ElapsedSeconds)), before.TopicName)))
		return nil
	}
	if res.ElapsedSeconds > 0 {
		fmt.Fprintln(out, formatter.Success("Logged "+formatter.FormatDuration(res.ElapsedSeconds)))
	}
	return nil
}

func newTimerStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer and log the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := app.Timer.Status(cmd.Context())
			if !status.Running {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No timer running."))
				return nil
			}
			return stopAndReport(cmd, app, status)
		},
	}
}

func newTimerStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := app.Timer.Status(cmd.Context())
			if !status.Running {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No timer running."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimerLine(
				status.SubjectName, status.ChapterName, status.TopicName, status.ElapsedSeconds))
			return nil
		},
	}
}

func newFocusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "focus",
		Short: "Browse subjects and run the timer interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.interactive() {
				return fmt.Errorf("focus needs an interactive terminal")
			}
			app.Timer.Resume(cmd.Context())
			return runFocusProgram(cmd, app)
		},
	}
}

// runFocusProgram runs the focus view full screen. Quitting stops the timer.
func runFocusProgram(cmd *cobra.Command, app *App) error {
	m := newFocusModel(cmd.Context(), app)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		// Leave nothing running behind a crashed view.
		_, _ = app.Timer.Stop(context.WithoutCancel(cmd.Context()))
		return fmt.Errorf("running focus view: %w", err)
	}
	if fm, ok := final.(*focusModel); ok && fm.lastResult != "" {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fm.lastResult))
	}
	return nil
}
