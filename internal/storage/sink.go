package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Sink persists pipeline outputs. Write returns where the file ended up.
type Sink interface {
	Write(stage Stage, name string, content []byte) (string, error)
}

// FilesystemSink writes each stage into its own folder under root.
type FilesystemSink struct {
	root string
	flat bool
}

// NewFilesystemSink stores outputs under root/<stage>/<name>.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{root: root}
}

// NewDirectorySink stores every output directly in dir, ignoring the stage.
func NewDirectorySink(dir string) *FilesystemSink {
	return &FilesystemSink{root: dir, flat: true}
}

// Root returns the base directory.
func (s *FilesystemSink) Root() string {
	return s.root
}

// Dir returns the folder used for stage.
func (s *FilesystemSink) Dir(stage Stage) string {
	if s.flat {
		return s.root
	}
	return filepath.Join(s.root, string(stage))
}

func (s *FilesystemSink) Write(stage Stage, name string, content []byte) (string, error) {
	name = SecureFilename(name)
	if name == "" {
		return "", fmt.Errorf("invalid output filename")
	}
	dir := s.Dir(stage)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create stage dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	log.Printf("[storage] wrote %s (%d bytes)", path, len(content))
	return path, nil
}

// Path resolves name inside stage's folder, refusing paths that escape it.
func (s *FilesystemSink) Path(stage Stage, name string) (string, error) {
	dir := s.Dir(stage)
	full := filepath.Join(dir, name)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if filepath.Dir(absFull) != absDir {
		return "", os.ErrPermission
	}
	return full, nil
}

// MemorySink keeps outputs in memory, keyed by stage and name.
type MemorySink struct {
	mu    sync.Mutex
	files map[Stage]map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[Stage]map[string][]byte)}
}

func (m *MemorySink) Write(stage Stage, name string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files[stage] == nil {
		m.files[stage] = make(map[string][]byte)
	}
	m.files[stage][name] = append([]byte(nil), content...)
	return string(stage) + "/" + name, nil
}

// Get returns a stored file.
func (m *MemorySink) Get(stage Stage, name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[stage][name]
	return b, ok
}

// Names lists the files stored for stage, sorted.
func (m *MemorySink) Names(stage Stage) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files[stage]))
	for n := range m.files[stage] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
