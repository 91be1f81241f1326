package history

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/llmpatch/llmps/internal/fsops"
)

// Store persists the journal.
type Store interface {
	// Load reads the journal. A missing journal file yields an empty
	// journal, not an error.
	Load() (*Journal, error)

	// Save writes the journal atomically.
	Save(j *Journal) error
}

// FileStore implements Store as a JSON file on disk.
type FileStore struct {
	fs   fsops.FS
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(fs fsops.FS, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Load reads the journal file.
func (s *FileStore) Load() (*Journal, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewJournal(), nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal: %w", err)
	}
	return &j, nil
}

// Save writes the journal atomically.
func (s *FileStore) Save(j *Journal) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	if err := s.fs.AtomicReplace(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}
