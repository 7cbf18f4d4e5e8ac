// Package issuestorage defines the issue record and the interface for its
// persistence. All storage engines (filesystem, in-memory) implement
// IssueStore and must pass RunContractTests.
package issuestorage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uname-n/git-issue/internal/idgen"

	"gopkg.in/yaml.v3"
)

// Sentinel errors. Callers match them with errors.Is; every layer wraps
// them with context.
var (
	ErrNotFound           = errors.New("issue not found")
	ErrCorrupt            = errors.New("corrupt issue record")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidInput       = errors.New("invalid input")
)

// State is the lifecycle state of an issue.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ParseState converts the persisted token into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateOpen, StateClosed:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// UnmarshalYAML rejects anything other than the two known tokens.
func (s *State) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("state must be a scalar, got %s at line %d", kindName(node.Kind), node.Line)
	}
	st, err := ParseState(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = st
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	}
	return "node"
}

// Comment markers distinguish plain comments from close and reopen notes.
const (
	MarkerComment = "+++"
	MarkerClose   = ">>>"
	MarkerReopen  = "<<<"
)

// Entry builds a comment line carrying the given marker.
func Entry(marker, msg string) string {
	return marker + " " + msg
}

// Issue is the persisted issue record.
//
// State is changed only through the lifecycle engine; nothing else in the
// module assigns it after creation.
type Issue struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Content  string   `yaml:"content" json:"content"`
	Labels   []string `yaml:"labels" json:"labels"`
	State    State    `yaml:"state" json:"state"`
	Comments []string `yaml:"comments" json:"comments"`
}

// HasLabel reports whether the issue carries label, comparing
// case-insensitively with surrounding whitespace ignored.
func (issue *Issue) HasLabel(label string) bool {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, l := range issue.Labels {
		if strings.ToLower(strings.TrimSpace(l)) == want {
			return true
		}
	}
	return false
}

// IsClosed reports whether the issue is closed.
func (issue *Issue) IsClosed() bool {
	return issue.State == StateClosed
}

// Validate checks the fields every stored record must satisfy.
func (issue *Issue) Validate() error {
	if _, err := idgen.Parse(issue.ID); err != nil {
		return err
	}
	if _, err := ParseState(string(issue.State)); err != nil {
		return err
	}
	return nil
}

// IssueStore defines the interface for issue persistence.
// The store is the only source of truth; implementations keep no cache
// between calls.
type IssueStore interface {
	// Init prepares the store for use (creates directories, etc.).
	Init(ctx context.Context) error

	// Load reads the record for id.
	// Returns ErrNotFound if it doesn't exist and ErrCorrupt if its content
	// does not decode into a valid record with the same id.
	Load(ctx context.Context, id string) (*Issue, error)

	// Save writes issue, overwriting any existing record with the same ID.
	Save(ctx context.Context, issue *Issue) error

	// NextRootID scans existing root records and returns the next root ID.
	NextRootID(ctx context.Context) (string, error)

	// NextChildID scans the children of parentID and returns the next
	// child ID. It does not check that the parent exists.
	NextChildID(ctx context.Context, parentID string) (string, error)

	// RootIDs returns the IDs of all root records in ID order.
	RootIDs(ctx context.Context) ([]string, error)

	// ChildIDs returns the IDs of the children of parentID in ID order.
	// A parent without children yields an empty slice.
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
}

// ParseID parses id at the storage boundary, wrapping failures in
// ErrInvalidInput.
func ParseID(id string) (idgen.ID, error) {
	parsed, err := idgen.Parse(id)
	if err != nil {
		return idgen.ID{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return parsed, nil
}
