package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var _ BookStorage = (*fileBookStorage)(nil) // ensure fileBookStorage implements BookStorage.

// fileBookStorage keeps the books collection in memory and mirrors
// it into a single JSON file which is rewritten on every change.
type fileBookStorage struct {
	logger *zap.Logger
	config *StoreConfig
	mu     sync.RWMutex
	books  []Book
	lastID atomic.Int64
}

// LoadFileBookStorage reads the whole collection from the configured file.
// A missing file or an invalid content is reported as an error since the
// api cannot serve without its initial dataset.
func LoadFileBookStorage(logger *zap.Logger, config *StoreConfig) (*fileBookStorage, error) {
	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read books file: %w", err)
	}

	var books []Book
	if err = json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books file: %w", err)
	}
	if books == nil {
		return nil, errors.New("failed to decode books file: content is not a json array")
	}

	var maxID int64
	seen := make(map[int64]struct{}, len(books))
	for i, b := range books {
		if _, found := seen[b.ID]; found {
			return nil, fmt.Errorf("invalid books file: duplicate id %d at index %d", b.ID, i)
		}
		if len(b.Name) == 0 || len(b.Author) == 0 {
			return nil, fmt.Errorf("invalid books file: book %d has an empty name or author", b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	fs := &fileBookStorage{
		logger: logger,
		config: config,
		books:  books,
	}
	fs.lastID.Store(maxID)
	logger.Info("books store loaded", zap.String("store.file", config.FilePath), zap.Int("store.count", len(books)))
	return fs, nil
}

// GetAll returns a copy of the collection in insertion order.
func (fs *fileBookStorage) GetAll(_ context.Context) []Book {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	books := make([]Book, len(fs.books))
	copy(books, fs.books)
	return books
}

// NextID hands out a new identifier. Values are never reused, even
// when the change they were generated for could not be saved.
func (fs *fileBookStorage) NextID() int64 {
	return fs.lastID.Add(1)
}

// Save persists the given collection and makes it the current one.
// The in-memory collection is left untouched when persisting fails.
// Callers must serialize their read-modify-save sequences.
func (fs *fileBookStorage) Save(ctx context.Context, books []Book) bool {
	if books == nil {
		books = []Book{}
	}
	if !fs.Persist(ctx, books) {
		return false
	}
	fs.mu.Lock()
	fs.books = books
	fs.mu.Unlock()
	return true
}

// Persist overwrites the backing file with the full collection.
func (fs *fileBookStorage) Persist(_ context.Context, books []Book) bool {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		fs.logger.Error("store: failed to encode books", zap.Error(err))
		return false
	}
	if err = writeFileAtomic(fs.config.FilePath, data, 0o644); err != nil {
		fs.logger.Error("store: failed to write books file", zap.String("store.file", fs.config.FilePath), zap.Error(err))
		return false
	}
	return true
}

// writeFileAtomic writes into a temporary file next to path then renames it.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err = tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err = tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
