// Package testing provides SSH mock utilities for testing.
// This package simulates a remote host with an in-memory filesystem.
package testing

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MockFS simulates an in-memory remote filesystem.
// It supports the filesystem operations deployr issues: mkdir, cp, ls, rm.
// Every entry records a creation sequence so `ls -t` ordering is stable.
type MockFS struct {
	mu    sync.RWMutex
	seq   int64
	files map[string]entry
	dirs  map[string]int64 // path -> creation sequence
}

type entry struct {
	content []byte
	created int64
}

// NewMockFS creates a new empty mock filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string]entry),
		dirs:  make(map[string]int64),
	}
}

func (fs *MockFS) next() int64 {
	fs.seq++
	return fs.seq
}

// Mkdir creates a directory. Returns error if the path exists or the parent is missing.
// This mimics the behavior of `mkdir` (without -p flag).
func (fs *MockFS) Mkdir(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if _, exists := fs.dirs[path]; exists {
		return errors.New("directory already exists")
	}
	if _, exists := fs.files[path]; exists {
		return errors.New("file exists at path")
	}
	if parent := filepath.Dir(path); parent != "/" && parent != "." {
		if _, ok := fs.dirs[parent]; !ok {
			return errors.New("no such file or directory")
		}
	}

	fs.dirs[path] = fs.next()
	return nil
}

// MkdirAll creates a directory and all parent directories.
// This mimics the behavior of `mkdir -p`.
func (fs *MockFS) MkdirAll(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.mkdirAll(filepath.Clean(path))
	return nil
}

func (fs *MockFS) mkdirAll(path string) {
	if path == "/" || path == "." {
		return
	}
	fs.mkdirAll(filepath.Dir(path))
	if _, ok := fs.dirs[path]; !ok {
		fs.dirs[path] = fs.next()
	}
}

// WriteFile writes content to a file, creating parent directories as needed.
func (fs *MockFS) WriteFile(path string, content []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAll(filepath.Dir(path))
	fs.files[path] = entry{content: content, created: fs.next()}
	return nil
}

// ReadFile reads the content of a file. Returns error if file doesn't exist.
func (fs *MockFS) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	e, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, errors.New("file not found")
	}
	return e.content, nil
}

// Remove removes a file or directory and all its contents.
// Returns an error when nothing exists at path, like `rm -R`.
func (fs *MockFS) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	_, isFile := fs.files[path]
	_, isDir := fs.dirs[path]
	if !isFile && !isDir {
		return errors.New("no such file or directory")
	}

	delete(fs.files, path)
	delete(fs.dirs, path)

	prefix := path + "/"
	for p := range fs.files {
		if strings.HasPrefix(p, prefix) {
			delete(fs.files, p)
		}
	}
	for p := range fs.dirs {
		if strings.HasPrefix(p, prefix) {
			delete(fs.dirs, p)
		}
	}
	return nil
}

// CopyParents copies src under dstDir keeping its relative path, like
// `cp -Ra --parents src dstDir`. src is resolved against cwd when relative.
func (fs *MockFS) CopyParents(cwd, src, dstDir string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rel := filepath.Clean(src)
	abs := rel
	if !filepath.IsAbs(rel) {
		abs = filepath.Join(cwd, rel)
	}
	dstDir = filepath.Clean(dstDir)
	if _, ok := fs.dirs[dstDir]; !ok {
		return errors.New("target directory does not exist")
	}
	target := filepath.Join(dstDir, strings.TrimPrefix(rel, "/"))

	if e, ok := fs.files[abs]; ok {
		fs.mkdirAll(filepath.Dir(target))
		fs.files[target] = entry{content: e.content, created: fs.next()}
		return nil
	}
	if _, ok := fs.dirs[abs]; !ok {
		return errors.New("no such file or directory")
	}

	fs.mkdirAll(target)
	prefix := abs + "/"
	for p, e := range fs.files {
		if strings.HasPrefix(p, prefix) {
			dst := filepath.Join(target, strings.TrimPrefix(p, prefix))
			fs.mkdirAll(filepath.Dir(dst))
			fs.files[dst] = entry{content: e.content, created: fs.next()}
		}
	}
	return nil
}

// List returns the names directly inside dir, newest first, like `ls -1t`.
func (fs *MockFS) List(dir string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir = filepath.Clean(dir)
	if _, ok := fs.dirs[dir]; !ok {
		return nil, errors.New("no such file or directory")
	}

	type named struct {
		name    string
		created int64
	}
	var children []named
	for p, created := range fs.dirs {
		if filepath.Dir(p) == dir && p != dir {
			children = append(children, named{filepath.Base(p), created})
		}
	}
	for p, e := range fs.files {
		if filepath.Dir(p) == dir {
			children = append(children, named{filepath.Base(p), e.created})
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].created > children[j].created
	})

	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.name
	}
	return names, nil
}

// Exists returns true if the path exists (file or directory).
func (fs *MockFS) Exists(path string) bool {
	return fs.IsDir(path) || fs.IsFile(path)
}

// IsDir returns true if the path exists and is a directory.
func (fs *MockFS) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, exists := fs.dirs[filepath.Clean(path)]
	return exists
}

// IsFile returns true if the path exists and is a file.
func (fs *MockFS) IsFile(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, exists := fs.files[filepath.Clean(path)]
	return exists
}
