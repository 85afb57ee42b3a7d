package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photobook/pkg/feedback"
)

// feedbackCommand creates the feedback command.
func (c *CLI) feedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record reviewer feedback on composed pages",
	}
	cmd.AddCommand(c.feedbackRecordCommand())
	return cmd
}

// feedbackRecordCommand creates the "feedback record" subcommand.
func (c *CLI) feedbackRecordCommand() *cobra.Command {
	var (
		logPath string
		entry   feedback.Entry
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append a feedback entry for a page",
		Long: fmt.Sprintf(`Append a feedback entry for a page of the last composed book.

The next compose run with --feedback maps the page back to the template it
used and nudges that template's score up or down.

Actions: %s`, strings.Join(feedback.Actions(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(feedback.Actions(), entry.Action) {
				return fmt.Errorf("unknown action %q (want one of %s)", entry.Action, strings.Join(feedback.Actions(), ", "))
			}
			if logPath == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				logPath = cfg.Feedback.FeedbackLog
				if entry.Folder == "" {
					entry.Folder = cfg.Pipeline.Folder
				}
			}
			if logPath == "" {
				return fmt.Errorf("no feedback log: pass --log or set feedback.feedback_log")
			}

			l := feedback.NewLog(logPath)
			if err := l.Record(cmd.Context(), entry); err != nil {
				return err
			}
			printSuccess("Recorded %s for page %d", entry.Action, entry.Page)
			printDetail("Log: %s", l.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "feedback log (default: feedback.feedback_log from config)")
	cmd.Flags().IntVar(&entry.Page, "page", 0, "page number, starting at 1")
	cmd.Flags().StringVar(&entry.Action, "action", "", "feedback action")
	cmd.Flags().StringVar(&entry.Folder, "folder", "", "folder the book belongs to")
	cmd.Flags().StringVar(&entry.Reason, "reason", "", "free-form note")
	_ = cmd.MarkFlagRequired("page")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}
