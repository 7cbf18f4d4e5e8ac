package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uname-n/git-issue/internal/issuestorage"
	"github.com/uname-n/git-issue/internal/issuestorage/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.MemoryStorage) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Init(context.Background()))
	return New(store), store
}

func mustCreate(t *testing.T, e *Engine, parent, title string) *issuestorage.Issue {
	t.Helper()
	issue, err := e.Create(context.Background(), CreateParams{Parent: parent, Title: title, Content: title + " body"})
	require.NoError(t, err)
	return issue
}

func TestCreate_Root(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	issue, err := e.Create(ctx, CreateParams{
		Title:   "Fix login",
		Content: "Users cannot log in",
		Labels:  []string{"bug", " High "},
	})
	require.NoError(t, err)
	assert.Equal(t, "001", issue.ID)
	assert.Equal(t, issuestorage.StateOpen, issue.State)
	assert.Equal(t, []string{"bug", " High "}, issue.Labels)
	assert.Empty(t, issue.Comments)

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, issue, got)

	second := mustCreate(t, e, "", "Second")
	assert.Equal(t, "002", second.ID)
}

func TestCreate_Child(t *testing.T) {
	e, _ := newTestEngine(t)

	mustCreate(t, e, "", "Parent")
	mustCreate(t, e, "", "Other")
	assert.Equal(t, "001-001", mustCreate(t, e, "001", "A").ID)
	assert.Equal(t, "001-002", mustCreate(t, e, "001", "B").ID)
	assert.Equal(t, "002-001", mustCreate(t, e, "002", "C").ID)

	// Children never advance root allocation.
	assert.Equal(t, "003", mustCreate(t, e, "", "Third").ID)
}

func TestCreate_Errors(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Parent")
	mustCreate(t, e, "001", "Child")

	tests := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing parent", CreateParams{Parent: "099", Title: "x"}, issuestorage.ErrNotFound},
		{"malformed parent", CreateParams{Parent: "../001", Title: "x"}, issuestorage.ErrInvalidInput},
		{"grandchild", CreateParams{Parent: "001-001", Title: "x"}, issuestorage.ErrInvalidInput},
		{"empty title", CreateParams{Title: "  "}, issuestorage.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Create(ctx, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Failed creates allocate nothing.
	assert.Equal(t, "002", mustCreate(t, e, "", "Next").ID)
	assert.Equal(t, "001-002", mustCreate(t, e, "001", "Next child").ID)
}

func TestCreate_UniqueIDs(t *testing.T) {
	e, _ := newTestEngine(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := mustCreate(t, e, "", "root").ID
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		for j := 0; j < 3; j++ {
			child := mustCreate(t, e, id, "child").ID
			require.False(t, seen[child], "duplicate id %s", child)
			seen[child] = true
		}
	}
	assert.Len(t, seen, 80)
}

func TestComment(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Issue")

	entry, err := e.Comment(ctx, "001", "looking into it")
	require.NoError(t, err)
	assert.Equal(t, "+++ looking into it", entry)

	require.NoError(t, e.AddComment(ctx, "001", "raw line"))

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, []string{"+++ looking into it", "raw line"}, got.Comments)
	assert.Equal(t, issuestorage.StateOpen, got.State)

	_, err = e.Comment(ctx, "002", "nobody home")
	assert.ErrorIs(t, err, issuestorage.ErrNotFound)
}

func TestClose(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Issue")

	entry, err := e.Close(ctx, "001", "fixed")
	require.NoError(t, err)
	assert.Equal(t, ">>> fixed", entry)

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, issuestorage.StateClosed, got.State)
	assert.Equal(t, []string{">>> fixed"}, got.Comments)
}

func TestClose_AlreadyClosed(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Issue")
	_, err := e.Close(ctx, "001", "first")
	require.NoError(t, err)

	_, err = e.Close(ctx, "001", "second")
	require.ErrorIs(t, err, issuestorage.ErrInvalidState)
	assert.Contains(t, err.Error(), "issue is already closed")

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, []string{">>> first"}, got.Comments, "failed close must not append")
}

func TestClose_BlockedByOpenChildren(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Parent")
	mustCreate(t, e, "001", "A")
	mustCreate(t, e, "001", "B")
	_, err := e.Close(ctx, "001-001", "done")
	require.NoError(t, err)

	_, err = e.Close(ctx, "001", "all done")
	require.ErrorIs(t, err, issuestorage.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "child issues are still pending")
	assert.Contains(t, err.Error(), "001-002")
	assert.NotContains(t, err.Error(), "001-001")

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, issuestorage.StateOpen, got.State)
	assert.Empty(t, got.Comments)

	_, err = e.Close(ctx, "001-002", "done")
	require.NoError(t, err)
	_, err = e.Close(ctx, "001", "all done")
	require.NoError(t, err)
}

func TestClose_CorruptChild(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Parent")
	store.Put("001-001", []byte("id: 001-001\nstate: pending\n"))

	_, err := e.Close(ctx, "001", "done")
	assert.ErrorIs(t, err, issuestorage.ErrCorrupt)
}

func TestReopen(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Issue")
	_, err := e.Close(ctx, "001", "fixed")
	require.NoError(t, err)

	entry, err := e.Reopen(ctx, "001", "regressed")
	require.NoError(t, err)
	assert.Equal(t, "<<< regressed", entry)

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, issuestorage.StateOpen, got.State)
	assert.Equal(t, []string{">>> fixed", "<<< regressed"}, got.Comments)
}

func TestReopen_NotClosed(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Issue")

	_, err := e.Reopen(ctx, "001", "again")
	require.ErrorIs(t, err, issuestorage.ErrInvalidState)
	assert.Contains(t, err.Error(), "issue is not closed")

	got, err := store.Load(ctx, "001")
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestReopen_ChildOfClosedParent(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Parent")
	mustCreate(t, e, "001", "Child")
	_, err := e.Close(ctx, "001-001", "done")
	require.NoError(t, err)
	_, err = e.Close(ctx, "001", "done")
	require.NoError(t, err)

	_, err = e.Reopen(ctx, "001-001", "oops")
	require.ErrorIs(t, err, issuestorage.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "parent issue 001 closed")

	child, err := store.Load(ctx, "001-001")
	require.NoError(t, err)
	assert.Equal(t, issuestorage.StateClosed, child.State)
	assert.Equal(t, []string{">>> done"}, child.Comments)

	_, err = e.Reopen(ctx, "001", "parent first")
	require.NoError(t, err)
	_, err = e.Reopen(ctx, "001-001", "now the child")
	require.NoError(t, err)
}

func TestTransitions_MissingAndMalformed(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Close(ctx, "001", "x")
	assert.ErrorIs(t, err, issuestorage.ErrNotFound)
	_, err = e.Reopen(ctx, "001", "x")
	assert.ErrorIs(t, err, issuestorage.ErrNotFound)
	_, err = e.Close(ctx, "1", "x")
	assert.ErrorIs(t, err, issuestorage.ErrInvalidInput)
	_, err = e.Reopen(ctx, "001-", "x")
	assert.ErrorIs(t, err, issuestorage.ErrInvalidInput)
}

func TestView(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	mustCreate(t, e, "", "Parent")
	mustCreate(t, e, "001", "A")
	mustCreate(t, e, "001", "B")

	issue, children, err := e.View(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "Parent", issue.Title)
	assert.Equal(t, []string{"001-001", "001-002"}, children)

	issue, children, err = e.View(ctx, "001-002")
	require.NoError(t, err)
	assert.Equal(t, "B", issue.Title)
	assert.Empty(t, children)
}

// TestScenario walks one hierarchy through every guarded transition.
func TestScenario(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	parent := mustCreate(t, e, "", "Release 1.0")
	a := mustCreate(t, e, parent.ID, "Write docs")
	b := mustCreate(t, e, parent.ID, "Tag build")

	_, err := e.Close(ctx, parent.ID, "ship")
	require.ErrorIs(t, err, issuestorage.ErrPreconditionFailed)

	for _, child := range []*issuestorage.Issue{a, b} {
		_, err := e.Close(ctx, child.ID, "done")
		require.NoError(t, err)
	}
	_, err = e.Close(ctx, parent.ID, "ship")
	require.NoError(t, err)

	_, err = e.Reopen(ctx, a.ID, "typo")
	require.ErrorIs(t, err, issuestorage.ErrPreconditionFailed)

	_, err = e.Reopen(ctx, parent.ID, "hotfix")
	require.NoError(t, err)
	_, err = e.Reopen(ctx, a.ID, "typo")
	require.NoError(t, err)
	_, err = e.Comment(ctx, a.ID, "fixed typo")
	require.NoError(t, err)

	got, err := store.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, issuestorage.StateOpen, got.State)
	assert.Equal(t, []string{">>> done", "<<< typo", "+++ fixed typo"}, got.Comments)

	got, err = store.Load(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{">>> ship", "<<< hotfix"}, got.Comments)
}
