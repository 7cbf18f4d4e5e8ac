package cmd

import (
	"fmt"

	"github.com/uname-n/git-issue/internal/issuestorage"

	"github.com/spf13/cobra"
)

// newLogCmd creates the log command.
func newLogCmd(provider *AppProvider) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit trail",
		Long: `Show the audit log of completed operations, most recent first.

Examples:
  git-issue log
  git-issue log -l 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("%w: --limit must not be negative", issuestorage.ErrInvalidInput)
			}

			entries, err := app.Audit.Entries(limit)
			if err != nil {
				return err
			}

			if app.JSON {
				if entries == nil {
					entries = []string{}
				}
				return app.printJSON(entries)
			}
			for _, e := range entries {
				fmt.Fprintln(app.Out, e)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show only the last N entries (0 for all)")

	return cmd
}
