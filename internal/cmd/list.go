package cmd

import (
	"fmt"

	"github.com/uname-n/git-issue/internal/config"
	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/listing"

	"github.com/spf13/cobra"
)

// newListCmd creates the ls command.
func newListCmd(provider *AppProvider) *cobra.Command {
	var (
		state  string
		label  string
		sortBy string
		order  string
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List issues",
		Long: `List root issues, each followed by its sub-issues.

Sub-issues are filtered on their own and shown only beneath a root that
passed the filter. --order reverses the roots; sub-issues always appear in
ascending order. Defaults for --state and --order come from the list.state
and list.order config keys.

Examples:
  git-issue ls
  git-issue ls --state all --label bug
  git-issue ls --order desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			if sortBy != "id" {
				return fmt.Errorf("%w: unknown sort key %q (only id is supported)", issuestorage.ErrInvalidInput, sortBy)
			}
			if !cmd.Flags().Changed("state") {
				state = app.configValue(config.KeyListState, "open")
			}
			if !cmd.Flags().Changed("order") {
				order = app.configValue(config.KeyListOrder, "asc")
			}

			groups, err := listing.Collect(cmd.Context(), app.Storage,
				listing.Filter{State: state, Label: label}, listing.Order(order))
			if err != nil {
				return err
			}

			if app.JSON {
				if groups == nil {
					groups = []listing.Group{}
				}
				return app.printJSON(groups)
			}
			for _, g := range groups {
				fmt.Fprintln(app.Out, app.listLine(g.Root))
				for _, child := range g.Children {
					fmt.Fprintln(app.Out, app.listLine(child))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "open", "Filter by state: open, closed or all")
	cmd.Flags().StringVar(&label, "label", "", "Filter by label (case-insensitive)")
	cmd.Flags().StringVar(&sortBy, "sort", "id", "Sort key (id)")
	cmd.Flags().StringVar(&order, "order", "asc", "Order: asc or desc")

	return cmd
}
