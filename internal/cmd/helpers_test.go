package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uname-n/git-issue/internal/audit"
	"github.com/uname-n/git-issue/internal/config"
	"github.com/uname-n/git-issue/internal/config/yamlstore"
	"github.com/uname-n/git-issue/internal/issuestorage/filesystem"
	"github.com/uname-n/git-issue/internal/lifecycle"
	"github.com/uname-n/git-issue/internal/logging"

	"github.com/spf13/cobra"
)

func setupTestApp(t *testing.T) (*App, *filesystem.FilesystemStorage) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".issues")
	store := filesystem.New(dir)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}
	cfg, err := yamlstore.New(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("failed to open config: %v", err)
	}
	config.ApplyDefaults(cfg)
	return &App{
		Storage:     store,
		Engine:      lifecycle.New(store),
		Audit:       audit.New(dir),
		ConfigStore: cfg,
		StoreDir:    dir,
		Logger:      logging.Discard(),
		Out:         &bytes.Buffer{},
		Err:         &bytes.Buffer{},
	}, store
}

// run executes a freshly built command with args and returns its output.
// The shared output buffer is reset first.
func run(t *testing.T, app *App, newCmd func(*AppProvider) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := app.Out.(*bytes.Buffer)
	out.Reset()
	cmd := newCmd(NewTestProvider(app))
	cmd.SetArgs(args)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)
	err := cmd.Execute()
	return out.String(), err
}

// mustRun is run that fails the test on error.
func mustRun(t *testing.T, app *App, newCmd func(*AppProvider) *cobra.Command, args ...string) string {
	t.Helper()
	out, err := run(t, app, newCmd, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

// createIssue creates an issue through the create command and returns its ID.
func createIssue(t *testing.T, app *App, parent, title string, labels ...string) string {
	t.Helper()
	args := []string{"-t", title, "-c", title + " body"}
	if parent != "" {
		args = append(args, "-p", parent)
	}
	if len(labels) > 0 {
		args = append(args, "--label", strings.Join(labels, ","))
	}
	out := mustRun(t, app, newCreateCmd, args...)
	id, _, ok := strings.Cut(strings.TrimSpace(out), " | ")
	if !ok {
		t.Fatalf("unexpected create output %q", out)
	}
	return id
}

func auditEntries(t *testing.T, app *App) []string {
	t.Helper()
	entries, err := app.Audit.Entries(0)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	return entries
}
