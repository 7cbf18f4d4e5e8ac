package cmd

import (
	"fmt"
	"strings"

	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/listing"

	"github.com/spf13/cobra"
)

// ViewResult is the JSON output of view.
type ViewResult struct {
	Issue     *issuestorage.Issue `json:"issue"`
	SubIssues []string            `json:"sub_issues"`
}

// newViewCmd creates the view command.
func newViewCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <id>",
		Aliases: []string{"show"},
		Short:   "View an issue and its details",
		Long: `Show an issue's summary line, body, sub-issue references and comments.

Example:
  git-issue view 001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			issue, children, err := app.Engine.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if app.JSON {
				if children == nil {
					children = []string{}
				}
				return app.printJSON(ViewResult{Issue: issue, SubIssues: children})
			}

			fmt.Fprintln(app.Out, listing.Summary(issue))
			fmt.Fprintf(app.Out, "\n%s\n\n", issue.Content)
			if len(children) > 0 {
				fmt.Fprintf(app.Out, "@ref{%s}\n", strings.Join(children, ", "))
			}
			for _, c := range issue.Comments {
				fmt.Fprintln(app.Out, c)
			}
			return nil
		},
	}

	return cmd
}
