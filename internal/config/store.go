package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// credentialKey is the fixed name the API key is stored under.
const credentialKey = "gemini_api_key"

// credentialFile is the file holding the credential, relative to the base dir.
const credentialFile = "credentials.json"

// Store provides access to the persisted Gemini API key. The key is read
// lazily and cached; Set invalidates the cache so the next read re-validates.
// The GEMINI_API_KEY environment variable takes precedence over the file.
type Store struct {
	baseDir string

	mu     sync.Mutex
	cached string
	loaded bool
}

// NewStore creates a credential store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// APIKey returns the configured API key, or "" if none is configured.
func (s *Store) APIKey() string {
	if env := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); env != "" {
		return env
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.cached = s.readFile()
		s.loaded = true
	}
	return s.cached
}

// HasKey reports whether an API key is configured.
func (s *Store) HasKey() bool {
	return s.APIKey() != ""
}

// Set persists the API key and invalidates the cache. An empty key removes
// the stored credential.
func (s *Store) Set(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	path := filepath.Join(s.baseDir, credentialFile)

	if key == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	} else {
		if err := os.MkdirAll(s.baseDir, 0700); err != nil {
			return err
		}
		data, err := json.Marshal(map[string]string{credentialKey: key})
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return err
		}
	}

	// Force re-read on next use
	s.cached = ""
	s.loaded = false
	return nil
}

// readFile loads the credential from disk, returning "" on any failure.
// Callers hold s.mu.
func (s *Store) readFile() string {
	data, err := os.ReadFile(filepath.Join(s.baseDir, credentialFile))
	if err != nil {
		return ""
	}
	var creds map[string]string
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return strings.TrimSpace(creds[credentialKey])
}
