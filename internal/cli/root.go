package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/alexanderramin/studyfocus/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Study service.StudyService
	Timer service.TimerService
	Stats service.StatsService

	// Flush writes pending state after a one-shot command. Nil skips it.
	Flush func(ctx context.Context) error

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "studyfocus" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "studyfocus",
		Short:         "Track study time per subject, chapter and topic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app.Flush == nil {
				return
			}
			if err := app.Flush(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Warning(fmt.Sprintf("could not save: %v", err)))
			}
		},
	}

	root.AddCommand(
		newSubjectCmd(app),
		newChapterCmd(app),
		newTopicCmd(app),
		newLogCmd(app),
		newTimerCmd(app),
		newStatsCmd(app),
		newTreeCmd(app),
		newCheckCmd(app),
		newFocusCmd(app),
	)

	return root
}
