// Package memory implements issuestorage.IssueStore in process memory.
// Records are held in their encoded form, so every Load decodes afresh and
// corrupt content surfaces exactly as it would from disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/uname-n/git-issue/internal/idgen"
	"github.com/uname-n/git-issue/internal/issuestorage"
)

// MemoryStorage keeps encoded records keyed by ID.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New returns an empty store.
func New() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

// Init is a no-op.
func (m *MemoryStorage) Init(ctx context.Context) error {
	return nil
}

// Put stores raw bytes under id without validation. Tests use it to plant
// corrupt records.
func (m *MemoryStorage) Put(id string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = append([]byte(nil), raw...)
}

// Load decodes the record stored under id.
func (m *MemoryStorage) Load(ctx context.Context, id string) (*issuestorage.Issue, error) {
	if _, err := issuestorage.ParseID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", id, issuestorage.ErrNotFound)
	}

	issue, err := issuestorage.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", id, err)
	}
	if issue.ID != id {
		return nil, fmt.Errorf("issue %s: %w: record id %q does not match", id, issuestorage.ErrCorrupt, issue.ID)
	}
	return issue, nil
}

// Save encodes issue and replaces any record with the same ID.
func (m *MemoryStorage) Save(ctx context.Context, issue *issuestorage.Issue) error {
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("saving issue: %w: %w", issuestorage.ErrInvalidInput, err)
	}
	data, err := issuestorage.Encode(issue)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[issue.ID] = data
	return nil
}

// NextRootID returns one past the highest root ID held.
func (m *MemoryStorage) NextRootID(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	highest := 0
	for id := range m.records {
		if n, ok := idgen.RootSeq(id); ok && n > highest {
			highest = n
		}
	}
	return idgen.RootID(highest + 1).String(), nil
}

// NextChildID returns one past the highest child of parentID held.
func (m *MemoryStorage) NextChildID(ctx context.Context, parentID string) (string, error) {
	parent, err := rootID(parentID)
	if err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	highest := 0
	for id := range m.records {
		if n, ok := idgen.ChildSeq(parent, id); ok && n > highest {
			highest = n
		}
	}
	return idgen.ChildID(parent, highest+1).String(), nil
}

// RootIDs returns all root IDs in ID order.
func (m *MemoryStorage) RootIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id := range m.records {
		if _, ok := idgen.RootSeq(id); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idgen.Less(ids[i], ids[j]) })
	return ids, nil
}

// ChildIDs returns the children of parentID in ID order.
func (m *MemoryStorage) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	parent, err := rootID(parentID)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id := range m.records {
		if _, ok := idgen.ChildSeq(parent, id); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idgen.Less(ids[i], ids[j]) })
	return ids, nil
}

func rootID(id string) (idgen.ID, error) {
	parsed, err := issuestorage.ParseID(id)
	if err != nil {
		return idgen.ID{}, err
	}
	if parsed.IsChild() {
		return idgen.ID{}, fmt.Errorf("%w: %s is a sub-issue and cannot have children", issuestorage.ErrInvalidInput, id)
	}
	return parsed, nil
}

var _ issuestorage.IssueStore = (*MemoryStorage)(nil)
