package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/fileutil"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

const (
	keyFileExtension = ".key"
	keyFilePerm      = 0o600
)

// Entry is the public part of a stored key.
type Entry struct {
	Chain     chain.ID  `json:"chain"`
	Address   string    `json:"address"`
	Source    string    `json:"source"` // "mnemonic" or "private_key"
	CreatedAt time.Time `json:"created_at"`
}

type keyFile struct {
	Entry

	EncryptedKey []byte `json:"encrypted_key"`
}

// Store keeps one encrypted key file per chain in a directory.
type Store struct {
	dir        string
	workFactor int
}

// Option configures a Store.
type Option func(*Store)

// WithWorkFactor sets the scrypt work factor (log2 of N) for new files.
func WithWorkFactor(n int) Option {
	return func(s *Store) { s.workFactor = n }
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the key directory, usually <home>/keys.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(chainID chain.ID) string {
	return filepath.Join(s.dir, chainID.String()+keyFileExtension)
}

// Exists reports whether a key is stored for chainID.
func (s *Store) Exists(chainID chain.ID) (bool, error) {
	_, err := os.Stat(s.path(chainID))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save encrypts key with password and writes it for entry.Chain. An
// existing key is never overwritten.
func (s *Store) Save(entry Entry, key []byte, password string) error {
	if !entry.Chain.IsValid() {
		return chain.ErrUnsupportedChain
	}
	exists, err := s.Exists(entry.Chain)
	if err != nil {
		return fmt.Errorf("checking key file: %w", err)
	}
	if exists {
		return janitorerr.WithDetails(janitorerr.ErrKeyExists, map[string]string{"path": s.path(entry.Chain)})
	}

	sealed, err := encrypt(key, password, s.workFactor)
	if err != nil {
		return fmt.Errorf("encrypting key: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return fileutil.WriteJSONAtomic(s.path(entry.Chain), keyFile{Entry: entry, EncryptedKey: sealed}, keyFilePerm)
}

// Load decrypts the key for chainID. Destroy the returned bytes when done.
func (s *Store) Load(chainID chain.ID, password string) (*Entry, *SecureBytes, error) {
	kf, err := s.read(chainID)
	if err != nil {
		return nil, nil, err
	}
	plain, err := decrypt(kf.EncryptedKey, password)
	if err != nil {
		return nil, nil, janitorerr.ErrDecryptionFailed
	}
	defer Zero(plain)
	return &kf.Entry, NewSecureBytes(plain), nil
}

// Entry returns key metadata without decrypting.
func (s *Store) Entry(chainID chain.ID) (*Entry, error) {
	kf, err := s.read(chainID)
	if err != nil {
		return nil, err
	}
	return &kf.Entry, nil
}

// List returns the metadata of every stored key, ordered by chain.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading key directory: %w", err)
	}

	out := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, keyFileExtension) {
			continue
		}
		id, err := chain.ParseChainID(strings.TrimSuffix(name, keyFileExtension))
		if err != nil {
			continue
		}
		entry, err := s.Entry(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chain < out[j].Chain })
	return out, nil
}

// Delete removes the key for chainID.
func (s *Store) Delete(chainID chain.ID) error {
	err := os.Remove(s.path(chainID))
	if errors.Is(err, os.ErrNotExist) {
		return janitorerr.ErrKeyNotFound
	}
	return err
}

func (s *Store) read(chainID chain.ID) (*keyFile, error) {
	data, err := os.ReadFile(s.path(chainID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, janitorerr.WithDetails(janitorerr.ErrKeyNotFound, map[string]string{"chain": chainID.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, janitorerr.Wrap(janitorerr.ErrCorruptStore, "key file %s: %v", s.path(chainID), err)
	}
	return &kf, nil
}
