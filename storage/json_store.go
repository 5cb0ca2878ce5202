package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gsinghjay/gpt-character-gen/models"
)

// JSONStore keeps the whole character collection in a single JSON document.
// Every operation reads the full document from disk and every mutation
// rewrites it wholesale. The mutex serializes read-modify-write cycles within
// this process only; a second process writing the same file still races and
// the later writer wins.
type JSONStore struct {
	path string
	log  *zap.SugaredLogger
	mu   sync.Mutex
}

// NewJSONStore creates a store backed by the document at path. The file is
// created lazily on first save.
func NewJSONStore(path string, log *zap.SugaredLogger) *JSONStore {
	return &JSONStore{path: path, log: log}
}

// List returns all characters, newest-first by creation time.
func (s *JSONStore) List(ctx context.Context) ([]models.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	characters := s.readAll()
	out := make([]models.Character, 0, len(characters))
	for _, c := range characters {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns the character with the given id, or ErrNotFound.
func (s *JSONStore) Get(ctx context.Context, id string) (*models.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	characters := s.readAll()
	c, ok := characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// Save inserts or overwrites the character by id, refreshing updated_at.
func (s *JSONStore) Save(ctx context.Context, c *models.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touch(c)
	characters := s.readAll()
	characters[c.ID] = *c
	return s.writeAll(characters)
}

// Delete removes the character record. Returns false when no record existed.
func (s *JSONStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	characters := s.readAll()
	if _, ok := characters[id]; !ok {
		return false, nil
	}
	delete(characters, id)
	if err := s.writeAll(characters); err != nil {
		return false, err
	}
	return true, nil
}

// readAll loads the full document. A missing file yields an empty collection;
// a malformed document also yields an empty collection but is logged loudly,
// because the next save will overwrite whatever was there.
func (s *JSONStore) readAll() map[string]models.Character {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Errorw("failed to read character storage file", "path", s.path, "error", err)
		}
		return map[string]models.Character{}
	}

	characters := map[string]models.Character{}
	if err := json.Unmarshal(data, &characters); err != nil {
		s.log.Errorw("character storage file is malformed, treating as empty", "path", s.path, "error", err)
		return map[string]models.Character{}
	}
	return characters
}

// writeAll rewrites the full document through a temp file so a crash mid-write
// cannot leave a truncated document behind.
func (s *JSONStore) writeAll(characters map[string]models.Character) error {
	data, err := json.MarshalIndent(characters, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal character storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".characters-*.json")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
