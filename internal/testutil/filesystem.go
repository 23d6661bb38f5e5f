// Package testutil provides in-memory fakes for the collaborators of
// the sync service.
package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	syncpkg "dotsync/internal/sync"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content []byte
	ModTime time.Time
}

// MockFilesystem is an in-memory filesystem for testing. Paths starting
// with "~" are expanded against Home.
type MockFilesystem struct {
	Home  string
	files map[string]*MockFile
	dirs  map[string]bool

	// StatErr, when set for a path, is returned from Stat instead of the
	// real answer. CopyErr fails CopyFile for a matching source path.
	StatErr map[string]error
	CopyErr map[string]error
}

// NewMockFilesystem creates an empty mock filesystem with Home set to
// /home/test.
func NewMockFilesystem() *MockFilesystem {
	return &MockFilesystem{
		Home:    "/home/test",
		files:   make(map[string]*MockFile),
		dirs:    make(map[string]bool),
		StatErr: make(map[string]error),
		CopyErr: make(map[string]error),
	}
}

// AddFile adds a file with the given content and modification time.
// The path may start with "~".
func (m *MockFilesystem) AddFile(path string, content []byte, modTime time.Time) {
	expanded, _ := m.ExpandHome(path)
	m.files[expanded] = &MockFile{Content: content, ModTime: modTime}
}

// RemoveFile deletes a file from the mock filesystem.
func (m *MockFilesystem) RemoveFile(path string) {
	expanded, _ := m.ExpandHome(path)
	delete(m.files, expanded)
}

// File returns the file at path, or nil when absent.
func (m *MockFilesystem) File(path string) *MockFile {
	expanded, _ := m.ExpandHome(path)
	return m.files[expanded]
}

// HasDir reports whether MkdirAll was called for path.
func (m *MockFilesystem) HasDir(path string) bool {
	return m.dirs[path]
}

func (m *MockFilesystem) ExpandHome(raw string) (string, error) {
	if raw == "~" {
		return m.Home, nil
	}
	if strings.HasPrefix(raw, "~/") {
		return filepath.Join(m.Home, raw[2:]), nil
	}
	return raw, nil
}

func (m *MockFilesystem) Stat(path string) (fs.FileInfo, error) {
	if err := m.StatErr[path]; err != nil {
		return nil, err
	}

	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}

	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		modTime: file.ModTime,
	}, nil
}

func (m *MockFilesystem) MkdirAll(path string) error {
	m.dirs[path] = true
	return nil
}

func (m *MockFilesystem) CopyFile(src, dst string) error {
	if err := m.CopyErr[src]; err != nil {
		return err
	}

	file, ok := m.files[src]
	if !ok {
		return fmt.Errorf("open %s: %w", src, fs.ErrNotExist)
	}

	m.files[dst] = &MockFile{
		Content: append([]byte(nil), file.Content...),
		ModTime: file.ModTime,
	}
	return nil
}

// mockFileInfo implements fs.FileInfo.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ syncpkg.FileSystem = (*MockFilesystem)(nil)
