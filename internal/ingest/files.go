package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// dirPattern selects the ingestable files under a directory argument.
const dirPattern = "**/*.{json,csv,txt,md}"

// ExpandPaths resolves files, directories and doublestar globs into a list
// of files. Directories are searched recursively for supported extensions.
// Each file appears once, in first-seen order.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && !info.IsDir():
			add(arg)
			continue
		case err == nil && info.IsDir():
			matches, err := doublestar.FilepathGlob(filepath.Join(arg, dirPattern), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("searching %s: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
