// Package file implements client-local persisted storage as a JSON key/value
// file, the way a browser's local storage keeps values per origin.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/AndreyChufelin/kbpanel/internal/storage"
)

var ErrKeyNotFound = errors.New("key not found")

type Storage struct {
	mu   sync.Mutex
	path string
}

func NewStorage(path string) *Storage {
	return &Storage{path: path}
}

func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local storage: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	err = json.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode local storage %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Storage) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode local storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("failed to create local storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kbpanel-storage-*")
	if err != nil {
		return fmt.Errorf("failed to create local storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write local storage: %w", err)
	}
	if err = tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod local storage: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write local storage: %w", err)
	}

	err = os.Rename(tmp.Name(), s.path)
	if err != nil {
		return fmt.Errorf("failed to replace local storage: %w", err)
	}
	return nil
}

func (s *Storage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *Storage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *Storage) Token(context.Context) (string, error) {
	token, err := s.Get(storage.TokenKey)
	if errors.Is(err, ErrKeyNotFound) || (err == nil && token == "") {
		return "", storage.ErrNoToken
	}
	return token, err
}

func (s *Storage) SetToken(_ context.Context, token string) error {
	if token == "" {
		return storage.ErrEmptyToken
	}
	return s.Set(storage.TokenKey, token)
}

func (s *Storage) ClearToken(context.Context) error {
	return s.Delete(storage.TokenKey)
}
