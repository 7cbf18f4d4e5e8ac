// Package lifecycle applies create, comment, close and reopen transitions to
// issue records, enforcing the invariants between a parent and its
// sub-issues. Every operation reads the records it needs from the store,
// validates, and writes back; nothing is cached between calls.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/uname-n/git-issue/internal/issuestorage"
)

// Engine is the only component that changes issue state.
type Engine struct {
	store  issuestorage.IssueStore
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of transitions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over store.
func New(store issuestorage.IssueStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateParams holds the fields of a new issue. An empty Parent creates a
// root issue.
type CreateParams struct {
	Parent  string
	Title   string
	Content string
	Labels  []string
}

// Create allocates an ID and saves a new open issue with no comments.
// With a parent, the parent must exist and must itself be a root.
func (e *Engine) Create(ctx context.Context, p CreateParams) (*issuestorage.Issue, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", issuestorage.ErrInvalidInput)
	}

	var id string
	if p.Parent != "" {
		parent, err := issuestorage.ParseID(p.Parent)
		if err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
		if parent.IsChild() {
			return nil, fmt.Errorf("%w: %s is a sub-issue; sub-issues cannot have children", issuestorage.ErrInvalidInput, p.Parent)
		}
		if _, err := e.store.Load(ctx, p.Parent); err != nil {
			return nil, fmt.Errorf("loading parent: %w", err)
		}
		id, err = e.store.NextChildID(ctx, p.Parent)
		if err != nil {
			return nil, fmt.Errorf("allocating child id: %w", err)
		}
	} else {
		var err error
		id, err = e.store.NextRootID(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocating id: %w", err)
		}
	}

	issue := &issuestorage.Issue{
		ID:      id,
		Title:   p.Title,
		Content: p.Content,
		Labels:  copyLabels(p.Labels),
		State:   issuestorage.StateOpen,
	}
	if err := e.store.Save(ctx, issue); err != nil {
		return nil, err
	}
	e.logger.Debug("created issue", "id", id, "parent", p.Parent)
	return issue, nil
}

// copyLabels returns labels exactly as given. Whitespace and case are only
// folded when matching a filter.
func copyLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	return append([]string(nil), labels...)
}

// AddComment appends text verbatim to the issue's comments.
func (e *Engine) AddComment(ctx context.Context, id, text string) error {
	issue, err := e.store.Load(ctx, id)
	if err != nil {
		return err
	}
	issue.Comments = append(issue.Comments, text)
	if err := e.store.Save(ctx, issue); err != nil {
		return err
	}
	e.logger.Debug("added comment", "id", id)
	return nil
}

// Comment appends a plain comment entry and returns it.
func (e *Engine) Comment(ctx context.Context, id, msg string) (string, error) {
	entry := issuestorage.Entry(issuestorage.MarkerComment, msg)
	if err := e.AddComment(ctx, id, entry); err != nil {
		return "", err
	}
	return entry, nil
}

// Close marks the issue closed and records msg as a close note. It fails
// with ErrPreconditionFailed while any sub-issue is open and with
// ErrInvalidState if the issue is already closed. On failure nothing is
// written.
func (e *Engine) Close(ctx context.Context, id, msg string) (string, error) {
	parsed, err := issuestorage.ParseID(id)
	if err != nil {
		return "", err
	}
	issue, err := e.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if issue.IsClosed() {
		return "", fmt.Errorf("%w: issue is already closed: %s", issuestorage.ErrInvalidState, id)
	}

	if !parsed.IsChild() {
		open, err := e.openChildren(ctx, id)
		if err != nil {
			return "", err
		}
		if len(open) > 0 {
			return "", fmt.Errorf("%w: cannot close %s: child issues are still pending: %s",
				issuestorage.ErrPreconditionFailed, id, strings.Join(open, ", "))
		}
	}

	entry := issuestorage.Entry(issuestorage.MarkerClose, msg)
	issue.Comments = append(issue.Comments, entry)
	issue.State = issuestorage.StateClosed
	if err := e.store.Save(ctx, issue); err != nil {
		return "", err
	}
	e.logger.Debug("closed issue", "id", id)
	return entry, nil
}

// openChildren loads every sub-issue of id and returns the open ones.
func (e *Engine) openChildren(ctx context.Context, id string) ([]string, error) {
	ids, err := e.store.ChildIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", id, err)
	}
	var open []string
	for _, childID := range ids {
		child, err := e.store.Load(ctx, childID)
		if err != nil {
			return nil, fmt.Errorf("loading child: %w", err)
		}
		if !child.IsClosed() {
			open = append(open, childID)
		}
	}
	return open, nil
}

// Reopen marks a closed issue open and records msg as a reopen note. It
// fails with ErrInvalidState if the issue is not closed, and for a
// sub-issue with ErrPreconditionFailed while the parent is closed.
func (e *Engine) Reopen(ctx context.Context, id, msg string) (string, error) {
	parsed, err := issuestorage.ParseID(id)
	if err != nil {
		return "", err
	}
	issue, err := e.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if !issue.IsClosed() {
		return "", fmt.Errorf("%w: issue is not closed: %s", issuestorage.ErrInvalidState, id)
	}

	if parsed.IsChild() {
		parentID := parsed.Parent().String()
		parent, err := e.store.Load(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("loading parent: %w", err)
		}
		if parent.IsClosed() {
			return "", fmt.Errorf("%w: cannot reopen %s: parent issue %s closed",
				issuestorage.ErrPreconditionFailed, id, parentID)
		}
	}

	entry := issuestorage.Entry(issuestorage.MarkerReopen, msg)
	issue.State = issuestorage.StateOpen
	issue.Comments = append(issue.Comments, entry)
	if err := e.store.Save(ctx, issue); err != nil {
		return "", err
	}
	e.logger.Debug("reopened issue", "id", id)
	return entry, nil
}

// View returns the issue and, for a root, its sub-issue IDs in order.
func (e *Engine) View(ctx context.Context, id string) (*issuestorage.Issue, []string, error) {
	parsed, err := issuestorage.ParseID(id)
	if err != nil {
		return nil, nil, err
	}
	issue, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if parsed.IsChild() {
		return issue, nil, nil
	}
	children, err := e.store.ChildIDs(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("listing children of %s: %w", id, err)
	}
	return issue, children, nil
}

