package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	GetAll(ctx context.Context) []Book
	Add(ctx context.Context, payload BookPayload) (Book, error)
	Update(ctx context.Context, id string, payload BookPayload) (Book, error)
	Delete(ctx context.Context, id string) error
}

// BookService applies the books rules on top of the storage. Mutations
// are serialized by mu so two concurrent requests cannot overwrite each
// other's changes. Listing does not wait for them.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage BookStorage
	queue   Queuer
	mu      sync.Mutex
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, storage BookStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
		queue:   queue,
	}
}

func (bs *BookService) GetAll(ctx context.Context) []Book {
	return bs.storage.GetAll(ctx)
}

// Add validates the payload then appends a new book with a fresh id.
func (bs *BookService) Add(ctx context.Context, payload BookPayload) (Book, error) {
	if errs := ValidateBookPayload(payload); len(errs) != 0 {
		return Book{}, errs
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	book := Book{Name: *payload.Name, Author: *payload.Author, ID: bs.storage.NextID()}
	current := bs.storage.GetAll(ctx)
	books := make([]Book, 0, len(current)+1)
	books = append(books, current...)
	books = append(books, book)
	if !bs.storage.Save(ctx, books) {
		return book, ErrPersistFailed
	}

	bs.publish(ctx, CreateQueue, book)
	return book, nil
}

// Update validates the payload before looking up the book so an invalid
// body is rejected even for an unknown id. The book keeps its position.
func (bs *BookService) Update(ctx context.Context, id string, payload BookPayload) (Book, error) {
	if errs := ValidateBookPayload(payload); len(errs) != 0 {
		return Book{}, errs
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	books := bs.storage.GetAll(ctx)
	idx := findBook(books, id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}

	book := books[idx]
	book.Name = *payload.Name
	book.Author = *payload.Author
	books[idx] = book
	if !bs.storage.Save(ctx, books) {
		return book, ErrPersistFailed
	}

	bs.publish(ctx, UpdateQueue, book)
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id string) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	current := bs.storage.GetAll(ctx)
	idx := findBook(current, id)
	if idx < 0 {
		return ErrBookNotFound
	}

	book := current[idx]
	books := make([]Book, 0, len(current)-1)
	books = append(books, current[:idx]...)
	books = append(books, current[idx+1:]...)
	if !bs.storage.Save(ctx, books) {
		return ErrPersistFailed
	}

	bs.publish(ctx, DeleteQueue, book)
	return nil
}

// publish notifies a saved change. A failure is only logged.
func (bs *BookService) publish(ctx context.Context, qid string, book Book) {
	if err := bs.queue.Push(ctx, qid, BookEvent{Book: book, At: bs.clock.Now()}); err != nil {
		bs.logger.Error("service: failed to push book event to queue", zap.String("qid", qid), zap.Int64("book.id", book.ID), zap.Error(err))
	}
}

// findBook returns the index of the book matching id or -1.
func findBook(books []Book, id string) int {
	for i, b := range books {
		if MatchBookID(b.ID, id) {
			return i
		}
	}
	return -1
}
