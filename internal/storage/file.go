package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists keys as a single JSON document on disk. It is the
// default credential store for the CLI, playing the role browser local
// storage plays for the web client.
type FileStore struct {
	path   string
	values map[string]string
}

// NewFileStore opens (or creates) the store backed by the given file path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}

	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("error reading credential store %s: %w", path, err)
	}

	if err := json.Unmarshal(bytes, &s.values); err != nil {
		return nil, fmt.Errorf("error unmarshalling credential store %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(key, value string) error {
	s.values[key] = value
	return s.flush()
}

func (s *FileStore) Remove(key string) error {
	delete(s.values, key)
	return s.flush()
}

func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("error creating credential store directory: %w", err)
	}
	bytes, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("error marshalling credential store: %w", err)
	}
	if err := os.WriteFile(s.path, bytes, 0o600); err != nil {
		return fmt.Errorf("error writing credential store %s: %w", s.path, err)
	}
	return nil
}
