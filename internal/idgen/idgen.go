// Package idgen implements parsing, formatting and allocation helpers for
// git-issue IDs.
//
// Root IDs are zero-padded decimal numbers ("001", "042"). Child IDs append
// a zero-padded sequence local to their parent: "001-003". The hierarchy is
// exactly two levels deep, so an ID contains at most one dash.
package idgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Width is the minimum number of digits in each ID component. Components
// widen past it once the sequence exceeds 999.
const Width = 3

// Separator joins the root and child components of a child ID.
const Separator = "-"

// ErrInvalidID is returned when a string is not a well-formed issue ID.
var ErrInvalidID = errors.New("invalid issue ID")

// ID is the structured form of an issue ID. Child is zero for root IDs.
type ID struct {
	Root  int
	Child int
}

// RootID returns the root ID with sequence n.
func RootID(n int) ID {
	return ID{Root: n}
}

// ChildID returns the n-th child ID under parent's root.
func ChildID(parent ID, n int) ID {
	return ID{Root: parent.Root, Child: n}
}

// Parse converts s into an ID. Each component must be all digits, greater
// than zero, and in canonical zero-padded form ("004", not "4" or "0004").
func Parse(s string) (ID, error) {
	rootPart, childPart, isChild := strings.Cut(s, Separator)
	var id ID
	var ok bool
	if id.Root, ok = parseComponent(rootPart); !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if isChild {
		if id.Child, ok = parseComponent(childPart); !ok {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
	}
	if id.String() != s {
		return ID{}, fmt.Errorf("%w: %q is not zero-padded to %d digits", ErrInvalidID, s, Width)
	}
	return id, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant IDs.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func parseComponent(s string) (int, bool) {
	if len(s) < Width {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsChild reports whether id denotes a sub-issue.
func (id ID) IsChild() bool {
	return id.Child > 0
}

// Parent returns the root ID that owns id. For a root ID it returns id.
func (id ID) Parent() ID {
	return ID{Root: id.Root}
}

// String returns the persisted form of id.
func (id ID) String() string {
	if id.IsChild() {
		return fmt.Sprintf("%0*d%s%0*d", Width, id.Root, Separator, Width, id.Child)
	}
	return fmt.Sprintf("%0*d", Width, id.Root)
}

// RootSeq reports the root sequence encoded by name, a directory entry with
// its extension already stripped. Entries that are not root IDs report false.
func RootSeq(name string) (int, bool) {
	id, err := Parse(name)
	if err != nil || id.IsChild() {
		return 0, false
	}
	return id.Root, true
}

// ChildSeq reports the child sequence encoded by name if it is a child ID
// of parent.
func ChildSeq(parent ID, name string) (int, bool) {
	id, err := Parse(name)
	if err != nil || !id.IsChild() || id.Root != parent.Root {
		return 0, false
	}
	return id.Child, true
}

// Less orders ID strings by their numeric components. For IDs of the
// default width this matches plain lexicographic order.
func Less(a, b string) bool {
	aRoot, aChild, _ := strings.Cut(a, Separator)
	bRoot, bChild, _ := strings.Cut(b, Separator)
	if aRoot != bRoot {
		return lessComponent(aRoot, bRoot)
	}
	return lessComponent(aChild, bChild)
}

func lessComponent(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
