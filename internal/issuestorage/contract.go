package issuestorage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// RunContractTests runs the full contract test suite against an IssueStore
// implementation. Each storage engine should call this with its own factory
// function to ensure consistent behavior across all implementations.
func RunContractTests(t *testing.T, factory func() IssueStore) {
	t.Run("SaveLoad", func(t *testing.T) { testSaveLoad(t, factory()) })
	t.Run("LoadMissing", func(t *testing.T) { testLoadMissing(t, factory()) })
	t.Run("LoadInvalidID", func(t *testing.T) { testLoadInvalidID(t, factory()) })
	t.Run("SaveOverwrites", func(t *testing.T) { testSaveOverwrites(t, factory()) })
	t.Run("SaveRejectsInvalid", func(t *testing.T) { testSaveRejectsInvalid(t, factory()) })
	t.Run("NextRootID", func(t *testing.T) { testNextRootID(t, factory()) })
	t.Run("NextChildID", func(t *testing.T) { testNextChildID(t, factory()) })
	t.Run("ChildScoping", func(t *testing.T) { testChildScoping(t, factory()) })
	t.Run("RootIDs", func(t *testing.T) { testRootIDs(t, factory()) })
	t.Run("ChildIDs", func(t *testing.T) { testChildIDs(t, factory()) })
}

func initStore(t *testing.T, s IssueStore) context.Context {
	t.Helper()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return ctx
}

func mustSave(t *testing.T, ctx context.Context, s IssueStore, issue *Issue) {
	t.Helper()
	if err := s.Save(ctx, issue); err != nil {
		t.Fatalf("Save(%s) failed: %v", issue.ID, err)
	}
}

func testSaveLoad(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	issue := &Issue{
		ID:       "001",
		Title:    "Test Issue",
		Content:  "Test content",
		Labels:   []string{"bug", "High"},
		State:    StateOpen,
		Comments: []string{"+++ first", ">>> closing"},
	}
	mustSave(t, ctx, s, issue)

	got, err := s.Load(ctx, "001")
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if got.ID != issue.ID {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, issue.ID)
	}
	if got.Title != issue.Title {
		t.Errorf("Title mismatch: got %q, want %q", got.Title, issue.Title)
	}
	if got.Content != issue.Content {
		t.Errorf("Content mismatch: got %q, want %q", got.Content, issue.Content)
	}
	if got.State != issue.State {
		t.Errorf("State mismatch: got %q, want %q", got.State, issue.State)
	}
	if fmt.Sprint(got.Labels) != fmt.Sprint(issue.Labels) {
		t.Errorf("Labels mismatch: got %v, want %v", got.Labels, issue.Labels)
	}
	if fmt.Sprint(got.Comments) != fmt.Sprint(issue.Comments) {
		t.Errorf("Comments mismatch: got %v, want %v", got.Comments, issue.Comments)
	}

	// Child records round-trip too.
	child := &Issue{ID: "001-001", Title: "Child", State: StateClosed}
	mustSave(t, ctx, s, child)
	gotChild, err := s.Load(ctx, "001-001")
	if err != nil {
		t.Fatalf("Load child failed: %v", err)
	}
	if gotChild.State != StateClosed {
		t.Errorf("child State = %q, want %q", gotChild.State, StateClosed)
	}
}

func testLoadMissing(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	if _, err := s.Load(ctx, "001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing root: got %v, want ErrNotFound", err)
	}
	if _, err := s.Load(ctx, "001-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing child: got %v, want ErrNotFound", err)
	}
}

func testLoadInvalidID(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	for _, id := range []string{"", "abc", "../001", "001-001-001"} {
		if _, err := s.Load(ctx, id); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Load(%q): got %v, want ErrInvalidInput", id, err)
		}
	}
}

func testSaveOverwrites(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	mustSave(t, ctx, s, &Issue{ID: "001", Title: "Original", State: StateOpen})
	mustSave(t, ctx, s, &Issue{ID: "001", Title: "Updated", State: StateClosed, Comments: []string{">>> done"}})

	got, err := s.Load(ctx, "001")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Title != "Updated" || got.State != StateClosed {
		t.Errorf("got %+v, want overwritten record", got)
	}
	if len(got.Comments) != 1 {
		t.Errorf("Comments = %v, want 1 entry", got.Comments)
	}
}

func testSaveRejectsInvalid(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	if err := s.Save(ctx, &Issue{ID: "001", State: "pending"}); err == nil {
		t.Error("Save with unknown state should fail")
	}
	if err := s.Save(ctx, &Issue{ID: "x/y", State: StateOpen}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Save with invalid ID: got %v, want ErrInvalidInput", err)
	}
}

func testNextRootID(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	for i := 1; i <= 12; i++ {
		id, err := s.NextRootID(ctx)
		if err != nil {
			t.Fatalf("NextRootID failed: %v", err)
		}
		want := fmt.Sprintf("%03d", i)
		if id != want {
			t.Fatalf("NextRootID #%d = %q, want %q", i, id, want)
		}
		mustSave(t, ctx, s, &Issue{ID: id, Title: "t", State: StateOpen})
	}

	// Children never influence root allocation.
	mustSave(t, ctx, s, &Issue{ID: "020-001", Title: "orphan", State: StateOpen})
	id, err := s.NextRootID(ctx)
	if err != nil {
		t.Fatalf("NextRootID failed: %v", err)
	}
	if id != "013" {
		t.Errorf("NextRootID = %q, want 013", id)
	}
}

func testNextChildID(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)
	mustSave(t, ctx, s, &Issue{ID: "001", Title: "parent", State: StateOpen})

	id, err := s.NextChildID(ctx, "001")
	if err != nil {
		t.Fatalf("NextChildID failed: %v", err)
	}
	if id != "001-001" {
		t.Fatalf("first NextChildID = %q, want 001-001", id)
	}
	mustSave(t, ctx, s, &Issue{ID: "001-001", Title: "c1", State: StateOpen})
	mustSave(t, ctx, s, &Issue{ID: "001-002", Title: "c2", State: StateOpen})

	id, err = s.NextChildID(ctx, "001")
	if err != nil {
		t.Fatalf("NextChildID failed: %v", err)
	}
	if id != "001-003" {
		t.Errorf("NextChildID = %q, want 001-003", id)
	}

	// The maximum wins, not the count.
	mustSave(t, ctx, s, &Issue{ID: "001-009", Title: "c9", State: StateOpen})
	id, err = s.NextChildID(ctx, "001")
	if err != nil {
		t.Fatalf("NextChildID failed: %v", err)
	}
	if id != "001-010" {
		t.Errorf("NextChildID = %q, want 001-010", id)
	}

	if _, err := s.NextChildID(ctx, "001-001"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NextChildID on child: got %v, want ErrInvalidInput", err)
	}
}

func testChildScoping(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)
	mustSave(t, ctx, s, &Issue{ID: "001", Title: "P", State: StateOpen})
	mustSave(t, ctx, s, &Issue{ID: "002", Title: "Q", State: StateOpen})
	mustSave(t, ctx, s, &Issue{ID: "001-001", Title: "P1", State: StateOpen})
	mustSave(t, ctx, s, &Issue{ID: "001-002", Title: "P2", State: StateOpen})

	id, err := s.NextChildID(ctx, "002")
	if err != nil {
		t.Fatalf("NextChildID failed: %v", err)
	}
	if id != "002-001" {
		t.Errorf("NextChildID(002) = %q, want 002-001", id)
	}
}

func testRootIDs(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)

	ids, err := s.RootIDs(ctx)
	if err != nil {
		t.Fatalf("RootIDs on empty store failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("RootIDs on empty store = %v, want none", ids)
	}

	for _, id := range []string{"003", "001", "002"} {
		mustSave(t, ctx, s, &Issue{ID: id, Title: id, State: StateOpen})
	}
	mustSave(t, ctx, s, &Issue{ID: "001-001", Title: "child", State: StateOpen})

	ids, err = s.RootIDs(ctx)
	if err != nil {
		t.Fatalf("RootIDs failed: %v", err)
	}
	if fmt.Sprint(ids) != "[001 002 003]" {
		t.Errorf("RootIDs = %v, want [001 002 003]", ids)
	}
}

func testChildIDs(t *testing.T, s IssueStore) {
	ctx := initStore(t, s)
	mustSave(t, ctx, s, &Issue{ID: "001", Title: "P", State: StateOpen})

	ids, err := s.ChildIDs(ctx, "001")
	if err != nil {
		t.Fatalf("ChildIDs without children failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ChildIDs = %v, want none", ids)
	}

	for _, id := range []string{"001-002", "001-001", "002-001"} {
		mustSave(t, ctx, s, &Issue{ID: id, Title: id, State: StateOpen})
	}
	ids, err = s.ChildIDs(ctx, "001")
	if err != nil {
		t.Fatalf("ChildIDs failed: %v", err)
	}
	if fmt.Sprint(ids) != "[001-001 001-002]" {
		t.Errorf("ChildIDs(001) = %v, want [001-001 001-002]", ids)
	}
}
