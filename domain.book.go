package main

import "context"

// Book represents a book entity as persisted in the backing file.
type Book struct {
	Name   string `json:"name"`
	Author string `json:"author"`
	ID     int64  `json:"id"`
}

// BookPayload is the body of a create or update request. Fields are
// pointers so that an absent field can be told apart from an empty one.
type BookPayload struct {
	Name   *string `json:"name" validate:"required,min=1"`
	Author *string `json:"author" validate:"required,min=1"`
}

// BookStorage defines possible operations on the books collection.
type BookStorage interface {
	GetAll(ctx context.Context) []Book
	NextID() int64
	Save(ctx context.Context, books []Book) bool
}
