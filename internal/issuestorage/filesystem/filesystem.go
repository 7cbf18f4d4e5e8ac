// Package filesystem implements the IssueStore interface using the local filesystem.
// Root issues are stored as <root>/<id>.yaml and sub-issues as
// <root>/<parent>/<id>.yaml.
package filesystem

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uname-n/git-issue/internal/idgen"
	"github.com/uname-n/git-issue/internal/issuestorage"
)

// Ext is the file extension of issue records.
const Ext = ".yaml"

// FilesystemStorage implements issuestorage.IssueStore using YAML files.
type FilesystemStorage struct {
	root   string // path to the store root, conventionally .issues
	logger *slog.Logger
}

// Option configures a FilesystemStorage instance.
type Option func(*FilesystemStorage)

// WithLogger sets the logger used for debug tracing of file operations.
func WithLogger(l *slog.Logger) Option {
	return func(fs *FilesystemStorage) {
		fs.logger = l
	}
}

// New creates a new FilesystemStorage rooted at the given directory.
func New(root string, opts ...Option) *FilesystemStorage {
	fs := &FilesystemStorage{
		root:   root,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Root returns the store root directory.
func (fs *FilesystemStorage) Root() string {
	return fs.root
}

// Init creates the store root if it does not exist.
func (fs *FilesystemStorage) Init(ctx context.Context) error {
	if err := os.MkdirAll(fs.root, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	return nil
}

// PathFor returns the record path for id. It is derived purely from the ID
// string and never touches the filesystem: an ID containing a dash lives in
// the directory named after the part before the first dash.
func (fs *FilesystemStorage) PathFor(id string) string {
	if parent, _, ok := strings.Cut(id, idgen.Separator); ok {
		return filepath.Join(fs.root, parent, id+Ext)
	}
	return filepath.Join(fs.root, id+Ext)
}

// atomicWrite writes data to a file atomically via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Save writes issue to its derived path, creating the parent directory
// first. Existing records are overwritten unconditionally.
func (fs *FilesystemStorage) Save(ctx context.Context, issue *issuestorage.Issue) error {
	if err := issue.Validate(); err != nil {
		return fmt.Errorf("saving issue: %w: %w", issuestorage.ErrInvalidInput, err)
	}
	data, err := issuestorage.Encode(issue)
	if err != nil {
		return err
	}

	path := fs.PathFor(issue.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for issue %s: %w", issue.ID, err)
	}
	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("saving issue %s: %w", issue.ID, err)
	}
	fs.logger.Debug("saved issue", "id", issue.ID, "path", path, "state", issue.State)
	return nil
}

// Load reads and decodes the record for id.
func (fs *FilesystemStorage) Load(ctx context.Context, id string) (*issuestorage.Issue, error) {
	if _, err := issuestorage.ParseID(id); err != nil {
		return nil, err
	}

	path := fs.PathFor(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("issue %s: %w", id, issuestorage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading issue %s: %w", id, err)
	}

	issue, err := issuestorage.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if issue.ID != id {
		return nil, fmt.Errorf("%s: %w: record id %q does not match", path, issuestorage.ErrCorrupt, issue.ID)
	}
	fs.logger.Debug("loaded issue", "id", id, "path", path)
	return issue, nil
}

// readDir lists dir, treating a missing directory as empty.
func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return entries, err
}

// recordNames returns the names of regular record files in dir with the
// extension stripped.
func recordNames(dir string) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), Ext)
		if !ok {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// NextRootID scans the top-level directory and returns one past the
// highest root ID found. Entries that are not root records (the audit log,
// config, child directories, temp files) are ignored.
func (fs *FilesystemStorage) NextRootID(ctx context.Context) (string, error) {
	names, err := recordNames(fs.root)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", fs.root, err)
	}
	highest := 0
	for _, name := range names {
		if n, ok := idgen.RootSeq(name); ok && n > highest {
			highest = n
		}
	}
	next := idgen.RootID(highest + 1).String()
	fs.logger.Debug("allocated root id", "id", next, "scanned", len(names))
	return next, nil
}

// NextChildID scans the directory named after parentID and returns one past
// the highest child sequence found. A missing directory means no children.
func (fs *FilesystemStorage) NextChildID(ctx context.Context, parentID string) (string, error) {
	parent, err := rootID(parentID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(fs.root, parentID)
	names, err := recordNames(dir)
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}
	highest := 0
	for _, name := range names {
		if n, ok := idgen.ChildSeq(parent, name); ok && n > highest {
			highest = n
		}
	}
	next := idgen.ChildID(parent, highest+1).String()
	fs.logger.Debug("allocated child id", "id", next, "parent", parentID, "scanned", len(names))
	return next, nil
}

// RootIDs returns all root record IDs in ID order.
func (fs *FilesystemStorage) RootIDs(ctx context.Context) ([]string, error) {
	names, err := recordNames(fs.root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", fs.root, err)
	}
	var ids []string
	for _, name := range names {
		if _, ok := idgen.RootSeq(name); ok {
			ids = append(ids, name)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idgen.Less(ids[i], ids[j]) })
	return ids, nil
}

// ChildIDs returns the child record IDs stored under parentID in ID order.
func (fs *FilesystemStorage) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	parent, err := rootID(parentID)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(fs.root, parentID)
	names, err := recordNames(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var ids []string
	for _, name := range names {
		if _, ok := idgen.ChildSeq(parent, name); ok {
			ids = append(ids, name)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idgen.Less(ids[i], ids[j]) })
	return ids, nil
}

// rootID parses id and requires it to be a root ID, since only roots have
// children.
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

// Compile-time check that FilesystemStorage implements issuestorage.IssueStore.
var _ issuestorage.IssueStore = (*FilesystemStorage)(nil)
