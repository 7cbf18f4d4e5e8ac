package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DoctorResult represents the output of the doctor command.
type DoctorResult struct {
	Problems []string `json:"problems"`
	Fixed    bool     `json:"fixed"`
}

// doctor is implemented by stores that can check their own integrity.
type doctor interface {
	Doctor(ctx context.Context, fix bool) ([]string, error)
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd(provider *AppProvider) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the issue store for inconsistencies",
		Long: `Check the issue store for inconsistencies.

Checks for:
- Records that cannot be decoded
- Records whose stored id does not match their file name
- Sub-issue directories without a parent record
- Closed issues that still have open sub-issues
- Unexpected files and directories
- Temp files left by an interrupted write (removed with --fix)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			d, ok := app.Storage.(doctor)
			if !ok {
				return fmt.Errorf("storage backend does not support doctor")
			}
			problems, err := d.Doctor(cmd.Context(), fix)
			if err != nil {
				return fmt.Errorf("doctor failed: %w", err)
			}

			if app.JSON {
				if problems == nil {
					problems = []string{}
				}
				return app.printJSON(DoctorResult{Problems: problems, Fixed: fix})
			}

			if len(problems) == 0 {
				fmt.Fprintln(app.Out, app.SuccessColor("No problems found."))
				return nil
			}

			fmt.Fprintf(app.Out, "Found %d problems:\n", len(problems))
			for _, problem := range problems {
				fmt.Fprintf(app.Out, "  - %s\n", problem)
			}
			if !fix {
				fmt.Fprintln(app.Out, "\nRun 'git-issue doctor --fix' to remove orphaned temp files.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Remove orphaned temp files (default is check only)")

	return cmd
}
