// Package audit records one line per completed mutation in an append-only
// log kept in the store root.
package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uname-n/git-issue/internal/issuestorage"
)

// FileName is the audit log's name inside the store root.
const FileName = "audit.log"

// Log is an append-only audit log.
type Log struct {
	path string
}

// New returns the audit log for the store rooted at storeRoot.
func New(storeRoot string) *Log {
	return &Log{path: filepath.Join(storeRoot, FileName)}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

var lineEscaper = strings.NewReplacer("\\", "\\\\", "\r", "\\r", "\n", "\\n")

// Append writes entry as one line. Embedded line breaks are escaped.
func (l *Log) Append(entry string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	if _, err := f.WriteString(lineEscaper.Replace(entry) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing audit log: %w", err)
	}
	return f.Close()
}

// Entries returns the logged lines, most recent first. A limit of zero or
// less returns every line. A log that does not exist yet has no entries.
func (l *Log) Entries(limit int) ([]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines, nil
}

// CreateEntry describes a created issue.
func CreateEntry(issue *issuestorage.Issue) string {
	return fmt.Sprintf("CREATE id=%s title=%s", issue.ID, issue.Title)
}

// CommentEntry describes a comment added to id.
func CommentEntry(id, msg string) string {
	return fmt.Sprintf("COMMENT id=%s msg=%s", id, msg)
}

// CloseEntry describes id being closed.
func CloseEntry(id, msg string) string {
	return fmt.Sprintf("CLOSE id=%s msg=%s", id, msg)
}

// ReopenEntry describes id being reopened.
func ReopenEntry(id, msg string) string {
	return fmt.Sprintf("REOPEN id=%s msg=%s", id, msg)
}

// PlanSource names where a plan document came from.
type PlanSource struct {
	File   string // path, when read from a file
	Inline int    // length of the inline JSON otherwise
}

// PlanEntry describes an applied plan.
func PlanEntry(src PlanSource) string {
	if src.File != "" {
		return "PLAN source=file=" + src.File
	}
	return fmt.Sprintf("PLAN source=inline_json (%d chars)", src.Inline)
}
