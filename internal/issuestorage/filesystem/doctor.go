package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uname-n/git-issue/internal/idgen"
	"github.com/uname-n/git-issue/internal/issuestorage"
)

// SharedFiles are the non-record files other components keep in the store
// root. Doctor does not report them.
var SharedFiles = map[string]bool{
	"config.yaml": true,
	"audit.log":   true,
}

// removeFile is replaced in tests to simulate removal failures.
var removeFile = os.Remove

// Doctor scans the store for records that cannot be loaded and for
// violations of the parent/child state invariants. With fix set, orphaned
// temp files left by an interrupted Save are removed; nothing else is
// modified. Problems are returned sorted.
func (fs *FilesystemStorage) Doctor(ctx context.Context, fix bool) ([]string, error) {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	entries, err := readDir(fs.root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", fs.root, err)
	}

	roots := make(map[string]*issuestorage.Issue)
	children := make(map[string][]*issuestorage.Issue)
	var childDirs []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if _, ok := idgen.RootSeq(name); !ok {
				report("unexpected directory: %s/", name)
				continue
			}
			childDirs = append(childDirs, name)
			continue
		}
		if fs.checkTemp(fix, report, name) {
			continue
		}
		id, ok := strings.CutSuffix(name, Ext)
		if !ok || SharedFiles[name] {
			continue
		}
		if _, ok := idgen.RootSeq(id); !ok {
			report("unexpected record file: %s", name)
			continue
		}
		if issue := fs.checkRecord(report, id, name); issue != nil {
			roots[id] = issue
		}
	}

	for _, dir := range childDirs {
		parent := idgen.MustParse(dir)
		if _, err := os.Stat(fs.PathFor(dir)); os.IsNotExist(err) {
			report("orphaned children: %s/ has no parent record %s%s", dir, dir, Ext)
		}
		dirEntries, err := readDir(filepath.Join(fs.root, dir))
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, entry := range dirEntries {
			name := entry.Name()
			rel := dir + "/" + name
			if entry.IsDir() {
				report("unexpected directory: %s/", rel)
				continue
			}
			if fs.checkTemp(fix, report, rel) {
				continue
			}
			id, ok := strings.CutSuffix(name, Ext)
			if !ok {
				continue
			}
			if _, ok := idgen.ChildSeq(parent, id); !ok {
				report("unexpected record file: %s", rel)
				continue
			}
			if issue := fs.checkRecord(report, id, rel); issue != nil {
				children[dir] = append(children[dir], issue)
			}
		}
	}

	for id, root := range roots {
		if !root.IsClosed() {
			continue
		}
		var open []string
		for _, child := range children[id] {
			if !child.IsClosed() {
				open = append(open, child.ID)
			}
		}
		if len(open) > 0 {
			sort.Strings(open)
			report("closed issue %s has open children: %s", id, strings.Join(open, ", "))
		}
	}

	sort.Strings(problems)
	return problems, nil
}

// checkTemp reports rel if it is a temp file from an interrupted write,
// removing it when fix is set. It returns true if rel was a temp file.
func (fs *FilesystemStorage) checkTemp(fix bool, report func(string, ...any), rel string) bool {
	if !strings.Contains(rel, Ext+".tmp.") {
		return false
	}
	report("orphaned temp file: %s", rel)
	if fix {
		if err := removeFile(filepath.Join(fs.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
			report("cannot remove temp file: %s: %v", rel, err)
		}
	}
	return true
}

// checkRecord loads id and reports why it cannot be used, if anything.
func (fs *FilesystemStorage) checkRecord(report func(string, ...any), id, rel string) *issuestorage.Issue {
	data, err := os.ReadFile(fs.PathFor(id))
	if err != nil {
		report("cannot read file: %s: %v", rel, err)
		return nil
	}
	issue, err := issuestorage.Decode(data)
	if err != nil {
		report("malformed record: %s: %v", rel, err)
		return nil
	}
	if issue.ID != id {
		report("id mismatch: %s contains id %q", rel, issue.ID)
		return nil
	}
	return issue
}
