// Package cmd implements the git-issue command-line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/uname-n/git-issue/internal/audit"
	"github.com/uname-n/git-issue/internal/config"
	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/lifecycle"

	"golang.org/x/term"
)

// App holds application state shared across commands.
type App struct {
	Storage     issuestorage.IssueStore
	Engine      *lifecycle.Engine
	Audit       *audit.Log
	ConfigStore config.Store
	StoreDir    string // path to the store root
	Logger      *slog.Logger
	Out         io.Writer
	Err         io.Writer
	JSON        bool // output in JSON format
}

// record appends a completed mutation to the audit log.
func (a *App) record(entry string) error {
	if err := a.Audit.Append(entry); err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	a.Logger.Debug("audit", "entry", entry)
	return nil
}

// configValue returns the value of key, or fallback if it is unset.
func (a *App) configValue(key, fallback string) string {
	if a.ConfigStore != nil {
		if v, ok := a.ConfigStore.Get(key); ok && v != "" {
			return v
		}
	}
	return fallback
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}
