package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage and per-path
// error injection, so operation and rollback failure paths can be
// exercised without touching the host.
type MemoryFS struct {
	mu         sync.RWMutex
	nodes      map[string]*fileNode
	errorPaths map[string]error
}

// fileNode represents a file or directory in memory
type fileNode struct {
	mode    fs.FileMode
	modTime time.Time
	content []byte
	isDir   bool
}

// NewMemoryFS creates a new in-memory filesystem with a root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*fileNode{
			"/": {mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// WithError makes every operation on path fail with err.
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
	return m
}

// Exists reports whether a path is present.
func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[filepath.Clean(path)]
	return ok
}

// MustWriteFile seeds a file, creating parents, panicking on failure.
// For test setup only.
func (m *MemoryFS) MustWriteFile(path string, data []byte, mode fs.FileMode) {
	if err := m.MkdirAll(filepath.Dir(path), 0755); err != nil {
		panic(err)
	}
	if err := m.WriteFile(path, data, mode); err != nil {
		panic(err)
	}
}

func (m *MemoryFS) injected(path string) error {
	if err, ok := m.errorPaths[filepath.Clean(path)]; ok {
		return err
	}
	return nil
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected(name); err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return node.info(filepath.Base(name)), nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected(name); err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(name); err != nil {
		return err
	}
	name = filepath.Clean(name)

	parent, ok := m.nodes[filepath.Dir(name)]
	if !ok || !parent.isDir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if node, ok := m.nodes[name]; ok && node.isDir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	content := make([]byte, len(data))
	copy(content, data)
	m.nodes[name] = &fileNode{mode: perm, modTime: time.Now(), content: content}
	return nil
}

func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(name); err != nil {
		return err
	}
	name = filepath.Clean(name)
	node, ok := m.nodes[name]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		node.mode = mode | fs.ModeDir
	} else {
		node.mode = mode
	}
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(path); err != nil {
		return err
	}
	path = filepath.Clean(path)

	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		if node, ok := m.nodes[p]; ok {
			if !node.isDir {
				return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
			}
			break
		}
		missing = append(missing, p)
		if p == filepath.Dir(p) {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		m.nodes[missing[i]] = &fileNode{mode: perm | fs.ModeDir, modTime: time.Now(), isDir: true}
	}
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected(name); err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	var entries []fs.DirEntry
	for p, n := range m.nodes {
		if p != name && filepath.Dir(p) == name {
			entries = append(entries, dirEntry{name: filepath.Base(p), info: n.info(filepath.Base(p))})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(name); err != nil {
		return err
	}
	name = filepath.Clean(name)
	node, ok := m.nodes[name]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if node.isDir {
		for p := range m.nodes {
			if p != name && filepath.Dir(p) == name {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.nodes, name)
	return nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(oldpath); err != nil {
		return err
	}
	oldpath = filepath.Clean(oldpath)
	newpath = filepath.Clean(newpath)

	node, ok := m.nodes[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}

	m.nodes[newpath] = node
	delete(m.nodes, oldpath)

	if node.isDir {
		prefix := oldpath + string(filepath.Separator)
		for p, n := range m.nodes {
			if strings.HasPrefix(p, prefix) {
				m.nodes[filepath.Join(newpath, strings.TrimPrefix(p, prefix))] = n
				delete(m.nodes, p)
			}
		}
	}
	return nil
}

func (n *fileNode) info(name string) fs.FileInfo {
	return fileInfo{name: name, size: int64(len(n.content)), mode: n.mode, modTime: n.modTime, isDir: n.isDir}
}

type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return f.size }
func (f fileInfo) Mode() fs.FileMode  { return f.mode }
func (f fileInfo) ModTime() time.Time { return f.modTime }
func (f fileInfo) IsDir() bool        { return f.isDir }
func (f fileInfo) Sys() interface{}   { return nil }

type dirEntry struct {
	name string
	info fs.FileInfo
}

func (d dirEntry) Name() string               { return d.name }
func (d dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }
