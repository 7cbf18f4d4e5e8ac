package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/uname-n/git-issue/internal/issuestorage"
)

// PlanItem describes one issue of a plan.
type PlanItem struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels,omitempty"`
}

// PlanSpec is a parent issue together with the sub-issues to create under it.
type PlanSpec struct {
	PlanItem
	SubIssues []PlanItem `json:"sub_issues"`
}

// planDoc mirrors the JSON document with pointer fields so that missing
// keys can be told apart from empty strings.
type planDoc struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Labels    []string  `json:"labels"`
	SubIssues []planDoc `json:"sub_issues"`
}

func (d planDoc) item(where string) (PlanItem, error) {
	if d.Title == nil {
		return PlanItem{}, fmt.Errorf("%w: plan %s: missing title", issuestorage.ErrInvalidInput, where)
	}
	if strings.TrimSpace(*d.Title) == "" {
		return PlanItem{}, fmt.Errorf("%w: plan %s: title is required", issuestorage.ErrInvalidInput, where)
	}
	if d.Content == nil {
		return PlanItem{}, fmt.Errorf("%w: plan %s: missing content", issuestorage.ErrInvalidInput, where)
	}
	return PlanItem{Title: *d.Title, Content: *d.Content, Labels: d.Labels}, nil
}

// ParsePlan decodes a plan document:
//
//	{"title": "...", "content": "...", "labels": [...],
//	 "sub_issues": [{"title": "...", "content": "...", "labels": [...]}]}
//
// labels and sub_issues may be omitted; title and content may not.
func ParsePlan(data []byte) (PlanSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc planDoc
	if err := dec.Decode(&doc); err != nil {
		return PlanSpec{}, fmt.Errorf("%w: parsing plan: %v", issuestorage.ErrInvalidInput, err)
	}
	if dec.More() {
		return PlanSpec{}, fmt.Errorf("%w: parsing plan: trailing data after document", issuestorage.ErrInvalidInput)
	}

	root, err := doc.item("root")
	if err != nil {
		return PlanSpec{}, err
	}
	spec := PlanSpec{PlanItem: root}
	for i, sub := range doc.SubIssues {
		if len(sub.SubIssues) > 0 {
			return PlanSpec{}, fmt.Errorf("%w: plan sub_issues[%d]: sub-issues cannot have children", issuestorage.ErrInvalidInput, i)
		}
		item, err := sub.item(fmt.Sprintf("sub_issues[%d]", i))
		if err != nil {
			return PlanSpec{}, err
		}
		spec.SubIssues = append(spec.SubIssues, item)
	}
	return spec, nil
}

// Plan creates the parent issue and then each sub-issue under it, in
// order. A failure partway leaves the issues already created in place.
func (e *Engine) Plan(ctx context.Context, spec PlanSpec) (*issuestorage.Issue, []*issuestorage.Issue, error) {
	parent, err := e.Create(ctx, CreateParams{
		Title:   spec.Title,
		Content: spec.Content,
		Labels:  spec.Labels,
	})
	if err != nil {
		return nil, nil, err
	}

	var children []*issuestorage.Issue
	for _, sub := range spec.SubIssues {
		child, err := e.Create(ctx, CreateParams{
			Parent:  parent.ID,
			Title:   sub.Title,
			Content: sub.Content,
			Labels:  sub.Labels,
		})
		if err != nil {
			return parent, children, fmt.Errorf("creating sub-issue %q: %w", sub.Title, err)
		}
		children = append(children, child)
	}
	e.logger.Debug("applied plan", "parent", parent.ID, "children", len(children))
	return parent, children, nil
}
