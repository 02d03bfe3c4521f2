package artifact

import "sort"

// Detect compares two snapshots and returns the project-relative paths
// created or modified between them, sorted lexicographically.
//
// Detect is a pure function. A path counts as an artifact iff after
// holds an entry with no identical (path, mtime, size) triple in before
// — the single rule covers both new and modified files. Paths present
// only in before (deletions) are never reported.
func Detect(before, after Snapshot) []string {
	var paths []string
	for path, entry := range after {
		prev, ok := before[path]
		if ok && prev.ModTime.Equal(entry.ModTime) && prev.Size == entry.Size {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
