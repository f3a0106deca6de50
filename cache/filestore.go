package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FileStore is a Store backed by one JSON file per entry in a directory.
// Writes go through a temp file and rename so a crashed write never leaves a
// truncated entry behind.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolve home dir")
		}
		dir = filepath.Join(home, ".httpkit_cache")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "read cache entry")
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt entry is as good as a missing one.
		_ = os.Remove(s.path(key))
		return "", false, nil
	}
	if entry.Expired(s.now()) {
		_ = os.Remove(s.path(key))
		return "", false, nil
	}
	return entry.Body, true, nil
}

func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := s.now()
	entry := Entry{
		Body:      value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return errors.Wrap(err, "encode cache entry")
	}

	path := s.path(key)
	tmp := path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write cache entry")
	}
	return errors.Wrap(os.Rename(tmp, path), "commit cache entry")
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "remove cache entry")
}

func (s *FileStore) Clear(_ context.Context) error {
	names, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return errors.Wrap(err, "list cache entries")
	}
	for _, name := range names {
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "clear cache")
		}
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey makes a cache key safe for use as a filename. Very long keys
// are hashed to stay under filesystem name limits.
func sanitizeKey(key string) string {
	if len(key) > 200 {
		return fmt.Sprintf("h_%x", md5.Sum([]byte(key)))
	}

	unsafe := []string{"/", "\\", ":", "?", "&", "=", "#", "<", ">", "|", "*", "\"", " "}
	result := key
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}
	return result
}
