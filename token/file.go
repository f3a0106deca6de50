package token

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FileStore persists the credential pair as a JSON file and mirrors it in
// memory so the read path stays synchronous.
type FileStore struct {
	path string

	mu      sync.RWMutex
	access  string
	refresh string
}

// NewFileStore loads tokens from path if it exists. A missing file starts
// the store empty rather than failing, since no session yet is a normal
// state.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read token file")
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, errors.Wrap(err, "decode token file")
	}
	s.access = tf.AccessToken
	s.refresh = tf.RefreshToken
	return s, nil
}

func (s *FileStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *FileStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *FileStore) SetAccessToken(_ context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return s.persistLocked()
}

func (s *FileStore) SetTokens(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return s.persistLocked()
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "remove token file")
}

// persistLocked writes the current pair to disk. Caller must hold mu.
// Write-then-rename keeps a crash from leaving a half-written token file.
func (s *FileStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}

	data, err := json.MarshalIndent(&tokenFile{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode tokens")
	}

	tmp := s.path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "commit token file")
}
