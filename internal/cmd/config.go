package cmd

import (
	"fmt"
	"sort"

	"github.com/uname-n/git-issue/internal/config"
	"github.com/uname-n/git-issue/internal/issuestorage"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage git-issue configuration, stored as flat key-value pairs in
<store>/config.yaml.

Known keys:
  list.state   default --state for ls (open, closed, all)
  list.order   default --order for ls (asc, desc)
  log.level    diagnostic log level (debug, info, warn, error)
  log.format   diagnostic log format (text, json)`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))

	return cmd
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Print the effective value of a configuration key, or "key (not set)".

Example:
  git-issue config get list.order`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.ConfigStore.Get(key)

			if app.JSON {
				return app.printJSON(map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}
			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a known configuration key and write it to config.yaml.

Example:
  git-issue config set list.state all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := config.CheckValue(key, value); err != nil {
				return fmt.Errorf("%w: %w", issuestorage.ErrInvalidInput, err)
			}
			if err := app.ConfigStore.Set(key, value); err != nil {
				return fmt.Errorf("setting config: %w", err)
			}

			if app.JSON {
				return app.printJSON(map[string]string{"key": key, "value": value})
			}
			fmt.Fprintf(app.Out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// newConfigListCmd creates the "config list" subcommand.
func newConfigListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List the effective configuration, defaults and environment overrides
included, sorted by key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.ConfigStore.All()
			if app.JSON {
				return app.printJSON(all)
			}
			if len(all) == 0 {
				fmt.Fprintln(app.Out, "No configuration set")
				return nil
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Fprintln(app.Out, "Configuration:")
			for _, k := range keys {
				fmt.Fprintf(app.Out, "  %s = %s\n", k, all[k])
			}
			return nil
		},
	}
}

// newConfigUnsetCmd creates the "config unset" subcommand.
func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Long: `Remove a key from config.yaml; its default applies again on the next run.

Example:
  git-issue config unset list.order`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.ConfigStore.Unset(key); err != nil {
				return fmt.Errorf("unsetting config: %w", err)
			}

			if app.JSON {
				return app.printJSON(map[string]string{"key": key})
			}
			fmt.Fprintf(app.Out, "Unset %s\n", key)
			return nil
		},
	}
}
