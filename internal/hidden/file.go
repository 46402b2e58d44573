package hidden

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/fileutil"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	// filePrefix is followed by ".<chain>.json".
	filePrefix = "janitor_hidden_tokens"

	filePermissions = 0o600
)

// FileStore keeps the set as a JSON array in the janitor home directory.
type FileStore struct {
	path    string
	chainID chain.ID
}

// FileName returns the store file name for chainID.
func FileName(chainID chain.ID) string {
	return fmt.Sprintf("%s.%s.json", filePrefix, chainID)
}

// NewFileStore creates a store for chainID under dir.
func NewFileStore(dir string, chainID chain.ID) *FileStore {
	return &FileStore{path: filepath.Join(dir, FileName(chainID)), chainID: chainID}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the set. A missing file is an empty set. A file that does not
// parse is moved aside and an empty set is returned together with an
// ErrCorruptStore error, so callers may continue with a clean slate.
func (s *FileStore) Load() (Set, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading hidden tokens: %w", err)
	}

	var addresses []string
	if err := json.Unmarshal(data, &addresses); err != nil {
		details := map[string]string{"path": s.path}
		if moved, renameErr := fileutil.Quarantine(s.path); renameErr == nil {
			details["moved_to"] = moved
		}
		return Set{}, janitorerr.WithDetails(janitorerr.ErrCorruptStore, details)
	}
	return NewSet(s.chainID, addresses...), nil
}

// Save writes the set atomically.
func (s *FileStore) Save(set Set) error {
	if err := fileutil.WriteJSONAtomic(s.path, set.Slice(), filePermissions); err != nil {
		return fmt.Errorf("saving hidden tokens: %w", err)
	}
	return nil
}
