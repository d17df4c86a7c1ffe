// Package jsonfile persists shrink partitions in a single JSON document on
// local disk. Every mutation rewrites the whole file through a temp-file
// rename so a successful call implies the state on disk is complete.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

const fileName = "shrink_records.json"

// Store implements the shrink record store on a local JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore prepares the data directory and returns a file-backed store.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return &Store{path: filepath.Join(dataDir, fileName)}, nil
}

// Partitions lists the keys present on disk.
func (s *Store) Partitions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(store))
	for key := range store {
		keys = append(keys, key)
	}
	return keys, nil
}

// Records loads a partition in append order.
func (s *Store) Records(ctx context.Context, listKey string) ([]models.ShrinkRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.read()
	if err != nil {
		return nil, false, err
	}
	records, ok := store[listKey]
	return records, ok, nil
}

// Append adds one record to the end of a partition, creating it if absent.
func (s *Store) Append(ctx context.Context, listKey string, rec models.ShrinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.read()
	if err != nil {
		return err
	}
	store[listKey] = append(store[listKey], rec)
	return s.write(store)
}

// Replace overwrites a partition's record sequence.
func (s *Store) Replace(ctx context.Context, listKey string, records []models.ShrinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.read()
	if err != nil {
		return err
	}
	if records == nil {
		records = []models.ShrinkRecord{}
	}
	store[listKey] = records
	return s.write(store)
}

// EnsurePartition creates an empty partition when none exists.
func (s *Store) EnsurePartition(ctx context.Context, listKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := store[listKey]; ok {
		return nil
	}
	store[listKey] = []models.ShrinkRecord{}
	return s.write(store)
}

func (s *Store) read() (map[string][]models.ShrinkRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]models.ShrinkRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	store := map[string][]models.ShrinkRecord{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &store); err != nil {
			return nil, fmt.Errorf("parse store file: %w", err)
		}
	}
	return store, nil
}

// write persists the whole collection atomically: marshal, write to a
// sibling temp file, rename over the live file.
func (s *Store) write(store map[string][]models.ShrinkRecord) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
