package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	GetAllFunc func(ctx context.Context) []Book
	NextIDFunc func() int64
	SaveFunc   func(ctx context.Context, books []Book) bool
}

// GetAll mocks the behavior of listing the books collection.
func (m *MockBookStorage) GetAll(ctx context.Context) []Book {
	return m.GetAllFunc(ctx)
}

// NextID mocks the behavior of the id counter.
func (m *MockBookStorage) NextID() int64 {
	return m.NextIDFunc()
}

// Save mocks the behavior of persisting the books collection.
func (m *MockBookStorage) Save(ctx context.Context, books []Book) bool {
	return m.SaveFunc(ctx, books)
}

// MockQueuer implements a fake Queuer.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, event BookEvent) error
	PopFunc  func(ctx context.Context, qids ...string) (string, BookEvent, error)
}

func (mq *MockQueuer) Push(ctx context.Context, qid string, event BookEvent) error {
	return mq.PushFunc(ctx, qid, event)
}

func (mq *MockQueuer) Pop(ctx context.Context, qids ...string) (string, BookEvent, error) {
	return mq.PopFunc(ctx, qids...)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDGenerator.
type MockUIDHandler struct {
	MockedUID string
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}
