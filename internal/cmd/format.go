package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/listing"
)

// listLine renders an issue for ls: the summary plus " [closed]" when closed.
func (a *App) listLine(issue *issuestorage.Issue) string {
	line := listing.Summary(issue)
	if issue.IsClosed() {
		line += " " + a.WarnColor("[closed]")
	}
	return line
}

// printJSON writes v as one indented JSON document.
func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EntryResult is the JSON output of comment, close and reopen.
type EntryResult struct {
	ID    string `json:"id"`
	Entry string `json:"entry"`
}

// printEntry reports an appended comment entry as "<id> | <entry>".
func (a *App) printEntry(id, entry string) error {
	if a.JSON {
		return a.printJSON(EntryResult{ID: id, Entry: entry})
	}
	fmt.Fprintf(a.Out, "%s | %s\n", id, entry)
	return nil
}
