package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/uname-n/git-issue/internal/audit"
	"github.com/uname-n/git-issue/internal/config"
	"github.com/uname-n/git-issue/internal/config/yamlstore"
	"github.com/uname-n/git-issue/internal/issuestorage/filesystem"
	"github.com/uname-n/git-issue/internal/lifecycle"
	"github.com/uname-n/git-issue/internal/logging"

	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	StorePath  string
	JSONOutput bool
	Verbose    bool
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		Out: app.Out,
		Err: app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	paths, err := config.ResolvePaths(p.StorePath)
	if err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	cfg, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	config.ApplyDefaults(cfg)
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger, err := newLogger(errOut, cfg, p.Verbose)
	if err != nil {
		return nil, err
	}

	store := filesystem.New(paths.StoreDir, filesystem.WithLogger(logger))
	// The store root is created on every invocation, reads included.
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}
	logger.Debug("opened store", "dir", paths.StoreDir, "config", paths.ConfigFile)

	return &App{
		Storage:     store,
		Engine:      lifecycle.New(store, lifecycle.WithLogger(logger)),
		Audit:       audit.New(paths.StoreDir),
		ConfigStore: cfg,
		StoreDir:    paths.StoreDir,
		Logger:      logger,
		Out:         out,
		Err:         errOut,
		JSON:        p.JSONOutput,
	}, nil
}

func newLogger(w io.Writer, cfg config.Store, verbose bool) (*slog.Logger, error) {
	levelName, _ := cfg.Get(config.KeyLogLevel)
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.KeyLogLevel, err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	format, _ := cfg.Get(config.KeyLogFormat)
	return logging.New(w, level, format)
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "git-issue",
		Short: "A local, file-backed issue tracker",
		Long: `git-issue tracks issues as YAML files in a .issues directory next to
your code. Issues form a two-level hierarchy: root issues (001, 002, ...)
and sub-issues (001-001, 001-002, ...). A parent cannot be closed while
any of its sub-issues is open, and a sub-issue cannot be reopened while
its parent is closed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&provider.StorePath, "dir", "", "Path to the issue store (default: $GIT_ISSUE_DIR or ./.issues)")
	rootCmd.PersistentFlags().BoolVarP(&provider.Verbose, "verbose", "v", false, "Log debug output to stderr")

	// Register all commands
	rootCmd.AddCommand(newCreateCmd(provider))
	rootCmd.AddCommand(newListCmd(provider))
	rootCmd.AddCommand(newViewCmd(provider))
	rootCmd.AddCommand(newCommentCmd(provider))
	rootCmd.AddCommand(newCloseCmd(provider))
	rootCmd.AddCommand(newReopenCmd(provider))
	rootCmd.AddCommand(newLogCmd(provider))
	rootCmd.AddCommand(newPlanCmd(provider))
	rootCmd.AddCommand(newDoctorCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))

	return rootCmd
}
