// Package listing reads every record in a store and groups the ones that
// pass a filter under their root issue.
package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/uname-n/git-issue/internal/issuestorage"
)

// StateAll disables state filtering.
const StateAll = "all"

// Order is the direction roots are sorted in.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder validates an order token.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderAsc, OrderDesc:
		return Order(s), nil
	}
	return "", fmt.Errorf("%w: unknown order %q (want asc or desc)", issuestorage.ErrInvalidInput, s)
}

// Filter selects records by state and label. An empty Label matches every
// record.
type Filter struct {
	State string
	Label string
}

func (f Filter) validate() error {
	if f.State == StateAll {
		return nil
	}
	if _, err := issuestorage.ParseState(f.State); err != nil {
		return fmt.Errorf("%w: %v (want open, closed or all)", issuestorage.ErrInvalidInput, err)
	}
	return nil
}

// Match reports whether issue passes the filter.
func (f Filter) Match(issue *issuestorage.Issue) bool {
	if f.State != StateAll && string(issue.State) != f.State {
		return false
	}
	if strings.TrimSpace(f.Label) != "" && !issue.HasLabel(f.Label) {
		return false
	}
	return true
}

// Group is a root issue and those of its children that passed the filter.
type Group struct {
	Root     *issuestorage.Issue   `json:"issue"`
	Children []*issuestorage.Issue `json:"sub_issues"`
}

// Collect loads every record and returns the matching roots in order, each
// with its matching children in ascending ID order. A child whose root did
// not match is not listed.
func Collect(ctx context.Context, store issuestorage.IssueStore, f Filter, order Order) ([]Group, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if _, err := ParseOrder(string(order)); err != nil {
		return nil, err
	}

	rootIDs, err := store.RootIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}

	var groups []Group
	for _, id := range rootIDs {
		root, err := store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if !f.Match(root) {
			continue
		}
		childIDs, err := store.ChildIDs(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", id, err)
		}
		group := Group{Root: root}
		for _, childID := range childIDs {
			child, err := store.Load(ctx, childID)
			if err != nil {
				return nil, err
			}
			if f.Match(child) {
				group.Children = append(group.Children, child)
			}
		}
		groups = append(groups, group)
	}

	if order == OrderDesc {
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
	}
	return groups, nil
}

// Summary renders the one-line form of an issue: "<id> | <title>", followed
// by " - label1,label2" when the issue has labels.
func Summary(issue *issuestorage.Issue) string {
	s := issue.ID + " | " + issue.Title
	if len(issue.Labels) > 0 {
		s += " - " + strings.Join(issue.Labels, ",")
	}
	return s
}
