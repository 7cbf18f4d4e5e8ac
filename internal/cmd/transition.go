package cmd

import (
	"github.com/uname-n/git-issue/internal/audit"

	"github.com/spf13/cobra"
)

// newCommentCmd creates the comment command.
func newCommentCmd(provider *AppProvider) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "comment <id>",
		Short: "Add a comment to an issue",
		Long: `Append a comment to an issue. The entry is stored with the +++ marker.

Example:
  git-issue comment 001 -m "Reproduced on main"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			id := args[0]
			entry, err := app.Engine.Comment(cmd.Context(), id, message)
			if err != nil {
				return err
			}
			if err := app.record(audit.CommentEntry(id, message)); err != nil {
				return err
			}
			return app.printEntry(id, entry)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Comment text (required)")
	cmd.MarkFlagRequired("message")

	return cmd
}

// newCloseCmd creates the close command.
func newCloseCmd(provider *AppProvider) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close an issue",
		Long: `Close an issue, recording the message as a >>> note.

A root issue cannot be closed while any of its sub-issues is open, and an
issue that is already closed cannot be closed again.

Example:
  git-issue close 001 -m "Fixed in 3f2a1c"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			id := args[0]
			entry, err := app.Engine.Close(cmd.Context(), id, message)
			if err != nil {
				return err
			}
			if err := app.record(audit.CloseEntry(id, message)); err != nil {
				return err
			}
			return app.printEntry(id, entry)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Close note (required)")
	cmd.MarkFlagRequired("message")

	return cmd
}

// newReopenCmd creates the reopen command.
func newReopenCmd(provider *AppProvider) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "reopen <id>",
		Short: "Reopen a closed issue",
		Long: `Reopen a closed issue, recording the message as a <<< note.

A sub-issue cannot be reopened while its parent is closed.

Example:
  git-issue reopen 001-002 -m "Regressed"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			id := args[0]
			entry, err := app.Engine.Reopen(cmd.Context(), id, message)
			if err != nil {
				return err
			}
			if err := app.record(audit.ReopenEntry(id, message)); err != nil {
				return err
			}
			return app.printEntry(id, entry)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Reopen note (required)")
	cmd.MarkFlagRequired("message")

	return cmd
}
