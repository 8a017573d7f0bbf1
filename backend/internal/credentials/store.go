package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// RedditTokenKey is the key under which the Reddit bearer token is cached
const RedditTokenKey = "reddit_token"

// Store persists provider credentials as a flat key/value mapping
type Store interface {
	// Load returns every stored value; an absent store yields an empty map
	Load(ctx context.Context) (map[string]string, error)

	// Save replaces the stored mapping with values
	Save(ctx context.Context, values map[string]string) error
}

// FileStore keeps credentials in a single JSON file, read fully and
// rewritten fully on each update.
//
// The mutex only keeps a single read or write from interleaving with
// another; a Load followed by a Save is not atomic across callers.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Path returns the backing file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the credential file
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	return values, nil
}

// Save writes values as pretty-printed JSON, replacing the file
func (s *FileStore) Save(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credentials dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	s.logger.Info("Credentials saved", zap.String("path", s.path))
	return nil
}
