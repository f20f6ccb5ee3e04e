// Package files models a project directory as a tree of FilePath nodes and
// provides the content cache, image decoding, content type detection and
// change watching the browser builds on.
package files

import (
	"errors"
	"path"
	"strings"
	"time"
)

// Errors returned by the files package.
var (
	ErrNotFound    = errors.New("file not found")
	ErrNotDir      = errors.New("not a directory")
	ErrOutsideRoot = errors.New("path outside project root")
)

// FilePath is a file or folder of a project. URL is the slash separated
// path relative to the project root; the root itself has an empty URL.
type FilePath struct {
	name    string
	url     string
	folder  bool
	size    int64
	modTime time.Time
	parent  *FilePath
	files   []*FilePath
}

// NewFolder returns a folder node, used to build trees in memory.
func NewFolder(name string) *FilePath {
	return &FilePath{name: name, folder: true}
}

// NewFile returns a file node, used to build trees in memory.
func NewFile(name string, size int64, modTime time.Time) *FilePath {
	return &FilePath{name: name, size: size, modTime: modTime}
}

// Add appends children to a folder and fixes up their URLs.
func (f *FilePath) Add(children ...*FilePath) *FilePath {
	for _, c := range children {
		c.parent = f
		c.setURL()
		f.files = append(f.files, c)
	}
	return f
}

func (f *FilePath) setURL() {
	switch {
	case f.parent == nil:
		f.url = ""
	case f.parent.url == "":
		f.url = f.name
	default:
		f.url = f.parent.url + "/" + f.name
	}
	for _, c := range f.files {
		c.setURL()
	}
}

func (f *FilePath) Name() string { return f.name }

// NameWithoutExtension returns the name without its last extension.
func (f *FilePath) NameWithoutExtension() string {
	return strings.TrimSuffix(f.name, path.Ext(f.name))
}

// Extension returns the extension without the dot, or "".
func (f *FilePath) Extension() string {
	return strings.TrimPrefix(path.Ext(f.name), ".")
}

// URL returns the project relative path.
func (f *FilePath) URL() string { return f.url }

// FullName is the URL, kept as the display name of nested files.
func (f *FilePath) FullName() string { return f.url }

func (f *FilePath) IsFolder() bool { return f.folder }

func (f *FilePath) IsFile() bool { return !f.folder }

func (f *FilePath) Size() int64 { return f.size }

func (f *FilePath) ModTime() time.Time { return f.modTime }

func (f *FilePath) Parent() *FilePath { return f.parent }

// Files returns the children of a folder.
func (f *FilePath) Files() []*FilePath { return f.files }

// File returns the child with the given name.
func (f *FilePath) File(name string) *FilePath {
	for _, c := range f.files {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Sibling returns the file with the given name in the same folder.
func (f *FilePath) Sibling(name string) *FilePath {
	if f.parent == nil {
		return nil
	}
	return f.parent.File(name)
}

// Find resolves a slash separated path relative to f.
func (f *FilePath) Find(rel string) *FilePath {
	cur := f
	for _, part := range strings.Split(strings.Trim(rel, "/"), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = cur.parent
		default:
			cur = cur.File(part)
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk calls fn for f and every descendant in depth first order until fn
// returns false.
func (f *FilePath) Walk(fn func(*FilePath) bool) bool {
	if !fn(f) {
		return false
	}
	for _, c := range f.files {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FlatFiles returns every file below f.
func (f *FilePath) FlatFiles() []*FilePath {
	var out []*FilePath
	f.Walk(func(p *FilePath) bool {
		if p.IsFile() {
			out = append(out, p)
		}
		return true
	})
	return out
}

func (f *FilePath) String() string {
	if f.url == "" {
		return f.name
	}
	return f.url
}
