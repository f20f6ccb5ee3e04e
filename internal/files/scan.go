package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan reads the directory tree under dir. Hidden entries (dot prefixed)
// are skipped. Children are sorted folders first, then by name ignoring
// case.
func Scan(dir string) (*FilePath, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}

	root := &FilePath{name: filepath.Base(dir), folder: true, modTime: info.ModTime()}
	if err := scanDir(dir, root); err != nil {
		return nil, err
	}
	sortTree(root)
	return root, nil
}

func scanDir(dir string, parent *FilePath) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		child := &FilePath{
			name:    e.Name(),
			folder:  e.IsDir(),
			size:    info.Size(),
			modTime: info.ModTime(),
		}
		parent.Add(child)
		if e.IsDir() {
			if err := scanDir(filepath.Join(dir, e.Name()), child); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortTree recursively sorts children (folders first, then alphabetically).
func sortTree(node *FilePath) {
	sort.SliceStable(node.files, func(i, j int) bool {
		a, b := node.files[i], node.files[j]
		if a.folder != b.folder {
			return a.folder
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})
	for _, c := range node.files {
		if c.folder {
			sortTree(c)
		}
	}
}

func statDir(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
