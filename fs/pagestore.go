// Package fs archives raw fetched pages on the local filesystem.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/siterag"
)

// Ensure FileStore implements siterag.PageStore at compile time.
var _ siterag.PageStore = (*FileStore)(nil)

// FileStore implements siterag.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string

	mu      sync.Mutex
	started bool
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Dir returns the directory pages end up in after Commit.
func (s *FileStore) Dir() string {
	return s.finalDir()
}

// Save writes the raw page markup under its flat archive name. The first
// Save of a run clears whatever an earlier interrupted run left in the
// temp directory.
func (s *FileStore) Save(ctx context.Context, page *siterag.Page) error {
	name, err := siterag.PageName(page.URL)
	if err != nil {
		return err
	}

	if err := s.start(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.tempDir(), name), []byte(page.Content), 0644)
}

func (s *FileStore) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := os.RemoveAll(s.tempDir()); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	s.started = true
	return nil
}

func (s *FileStore) Commit() error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	// Nothing saved this run; keep any previous archive.
	if !started {
		return nil
	}

	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

func (s *FileStore) Abort() error {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return os.RemoveAll(s.tempDir())
}
