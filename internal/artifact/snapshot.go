// Package artifact discovers the files a workflow execution created or
// modified.
//
// Discovery is snapshot-based: the orchestrator captures the tracked
// tree before and after delegated execution and diffs the two
// inventories. Entries fingerprint (path, mtime, size); content hashing
// is deliberately avoided so snapshots stay cheap on ordinary project
// trees.
package artifact

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/log"
)

// trackedDirs are the project subdirectories snapshots cover: documents,
// sources, and the gao framework directory. Files outside these are
// invisible to detection.
var trackedDirs = []string{"docs", "src", "gao"}

// ignoredComponents excludes any path that contains one of these names
// as a component: version-control metadata, dependency and cache
// directories, archived documents, virtual environments, and the
// lifecycle database itself.
var ignoredComponents = map[string]struct{}{
	".git":         {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
	".cache":       {},
	".venv":        {},
	"venv":         {},
	"archive":      {},
	"lifecycle.db": {},
}

// TrackedDirs returns the tracked subdirectory list.
func TrackedDirs() []string {
	dirs := make([]string, len(trackedDirs))
	copy(dirs, trackedDirs)
	return dirs
}

// Ignored reports whether a path component is excluded from snapshots.
func Ignored(component string) bool {
	_, ok := ignoredComponents[component]
	return ok
}

// Entry fingerprints one regular file in a snapshot.
type Entry struct {
	Path    string // project-relative, slash-separated
	ModTime time.Time
	Size    int64
}

// Snapshot is a point-in-time inventory keyed by relative path. A
// snapshot is never mutated after capture, only compared against
// another.
type Snapshot map[string]Entry

// Take captures the current state of the tracked directories under
// projectRoot. The walk is read-only and idempotent. A missing tracked
// directory is skipped; a per-file error (permission, race-deleted
// file) is logged as a warning and that file omitted — a snapshot never
// aborts.
func Take(projectRoot string) Snapshot {
	logger := log.GetLogger()
	snap := Snapshot{}

	for _, dir := range trackedDirs {
		base := filepath.Join(projectRoot, dir)
		if _, err := os.Stat(base); err != nil {
			if !os.IsNotExist(err) {
				logger.WithField("dir", base).WithError(err).
					Warn("snapshot: cannot stat tracked directory")
			}
			continue
		}

		walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.WithField("path", path).WithError(err).
					Warn("snapshot: skipping unreadable path")
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			name := d.Name()
			if d.IsDir() {
				if Ignored(name) {
					return fs.SkipDir
				}
				return nil
			}
			if Ignored(name) || !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				logger.WithField("path", path).WithError(err).
					Warn("snapshot: skipping unreadable file")
				return nil
			}
			rel, err := filepath.Rel(projectRoot, path)
			if err != nil {
				logger.WithField("path", path).WithError(err).
					Warn("snapshot: skipping unrelatable path")
				return nil
			}
			rel = filepath.ToSlash(rel)
			snap[rel] = Entry{Path: rel, ModTime: info.ModTime(), Size: info.Size()}
			return nil
		})
		if walkErr != nil {
			logger.WithField("dir", base).WithError(walkErr).
				Warn("snapshot: walk interrupted")
		}
	}
	return snap
}
