package watcher

import (
	"path/filepath"
	"strings"
)

// ignorePatterns match files that are never worth stabilizing: partial
// downloads, editor temp files and OS junk.
var ignorePatterns = []string{
	"*.tmp",
	"*.temp",
	"*.part",
	"*.partial",
	"*.download",
	"*.crdownload",
	".~*",
}

var systemFiles = map[string]struct{}{
	"desktop.ini": {},
	"thumbs.db":   {},
	".ds_store":   {},
}

// shouldIgnore reports whether a path should be dropped before it ever
// reaches the stability gate. Hidden files are skipped too.
func shouldIgnore(path string) bool {
	name := filepath.Base(path)
	lower := strings.ToLower(name)

	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := systemFiles[lower]; ok {
		return true
	}
	for _, pattern := range ignorePatterns {
		if ok, err := filepath.Match(pattern, lower); err == nil && ok {
			return true
		}
	}
	return false
}
