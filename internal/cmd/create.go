package cmd

import (
	"fmt"

	"github.com/uname-n/git-issue/internal/audit"
	"github.com/uname-n/git-issue/internal/lifecycle"
	"github.com/uname-n/git-issue/internal/listing"

	"github.com/spf13/cobra"
)

// newCreateCmd creates the create command.
func newCreateCmd(provider *AppProvider) *cobra.Command {
	var params lifecycle.CreateParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new issue or sub-issue",
		Long: `Create a new issue. With --parent the issue is created as a sub-issue
of an existing root issue.

Examples:
  git-issue create -t "Fix login" -c "Users cannot log in" --label bug,auth
  git-issue create -p 001 -t "Add test" -c "Cover the failing case"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			issue, err := app.Engine.Create(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := app.record(audit.CreateEntry(issue)); err != nil {
				return err
			}

			if app.JSON {
				return app.printJSON(issue)
			}
			fmt.Fprintln(app.Out, listing.Summary(issue))
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Parent, "parent", "p", "", "Parent issue ID (creates a sub-issue)")
	cmd.Flags().StringVarP(&params.Title, "title", "t", "", "Issue title (required)")
	cmd.Flags().StringVarP(&params.Content, "content", "c", "", "Issue body (required)")
	cmd.Flags().StringSliceVar(&params.Labels, "label", nil, "Comma-separated labels")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("content")

	return cmd
}
