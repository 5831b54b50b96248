package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/spf13/cobra"
)

func newSubjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage subjects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a subject",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Study.AddSubject(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Added subject "+formatter.Bold(s.Name)+" "+formatter.Dim(s.ID)))
				return nil
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List subjects with their totals",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubjectList(app.Study.Tree(cmd.Context()).Subjects))
				return nil
			},
		},
		newRemoveCmd(app, domain.KindSubject, "rm SUBJECT"),
	)
	return cmd
}

func newChapterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage chapters of a subject",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add SUBJECT NAME",
			Short: "Add a chapter to a subject",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := app.Study.ResolvePath(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c, err := app.Study.AddChapter(cmd.Context(), ids[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Added chapter "+formatter.Bold(c.Name)+" "+formatter.Dim(c.ID)))
				return nil
			},
		},
		newRemoveCmd(app, domain.KindChapter, "rm SUBJECT CHAPTER"),
	)
	return cmd
}

func newTopicCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage topics of a chapter",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add SUBJECT CHAPTER NAME",
			Short: "Add a topic to a chapter",
			Args:  cobra.MinimumNArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := app.Study.ResolvePath(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				t, err := app.Study.AddTopic(cmd.Context(), ids[0], ids[1], strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Added topic "+formatter.Bold(t.Name)+" "+formatter.Dim(t.ID)))
				return nil
			},
		},
		newRemoveCmd(app, domain.KindTopic, "rm SUBJECT CHAPTER TOPIC"),
	)
	return cmd
}

// newRemoveCmd deletes a node of kind addressed by kind.Depth() path
// segments. Unknown paths are reported; the ledger itself never fails a
// delete of a missing node.
func newRemoveCmd(app *App, kind domain.NodeKind, use string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: []string{"delete"},
		Short:   fmt.Sprintf("Delete a %s and everything under it", kind),
		Args:    cobra.ExactArgs(kind.Depth()),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := app.Study.ResolvePath(cmd.Context(), args...)
			if err != nil {
				return err
			}
			removed, err := app.Study.Delete(cmd.Context(), kind, ids...)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Deleted %s %s", kind, formatter.Bold(args[len(args)-1]))
			if removed > 0 {
				msg += formatter.Dim(fmt.Sprintf(" (%s of study time removed)", formatter.FormatDuration(removed)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(msg))
			return nil
		},
	}
}
