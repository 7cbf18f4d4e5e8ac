package cmd

import (
	"fmt"
	"os"

	"github.com/uname-n/git-issue/internal/audit"
	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/lifecycle"
	"github.com/uname-n/git-issue/internal/listing"

	"github.com/spf13/cobra"
)

// newPlanCmd creates the plan command.
func newPlanCmd(provider *AppProvider) *cobra.Command {
	var (
		file   string
		inline string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Batch create an issue and its sub-issues from JSON",
		Long: `Create a root issue and its sub-issues from a JSON document:

  {
    "title": "Parent issue",
    "content": "Description",
    "labels": ["feature"],
    "sub_issues": [
      {"title": "Step 1", "content": "Details", "labels": ["bug"]}
    ]
  }

Creation is not transactional: if a sub-issue fails, the issues created
before it are kept. On this command --json takes the inline plan, so the
output is always the summary line of each created issue.

Examples:
  git-issue plan -f plan.json
  git-issue plan -j '{"title":"Epic","content":"...","sub_issues":[]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			var (
				data []byte
				src  audit.PlanSource
			)
			switch {
			case file != "" && inline != "":
				return fmt.Errorf("%w: use either --file or --json, not both", issuestorage.ErrInvalidInput)
			case file != "":
				data, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading plan: %w", err)
				}
				src.File = file
			case inline != "":
				data = []byte(inline)
				src.Inline = len(inline)
			default:
				return fmt.Errorf("%w: no JSON input provided; use --file or --json", issuestorage.ErrInvalidInput)
			}

			spec, err := lifecycle.ParsePlan(data)
			if err != nil {
				return err
			}

			parent, children, err := app.Engine.Plan(cmd.Context(), spec)
			if parent != nil {
				fmt.Fprintln(app.Out, listing.Summary(parent))
				for _, c := range children {
					fmt.Fprintln(app.Out, listing.Summary(c))
				}
			}
			if err != nil {
				return err
			}
			return app.record(audit.PlanEntry(src))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a JSON plan file")
	cmd.Flags().StringVarP(&inline, "json", "j", "", "Inline JSON plan")

	return cmd
}
