package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// GetAllBooks godoc
//
//	@Summary	List all books
//	@Tags		books
//	@Produce	json
//	@Success	200	{array}	Book
//	@Router		/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	books := api.bookService.GetAll(r.Context())
	api.logger.Info("success to get all books", zap.String("request.id", requestID), zap.Int("books.count", len(books)))
	if err := WriteResponse(r.Context(), w, http.StatusOK, books); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook godoc
//
//	@Summary	Create a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		book	body		BookPayload	true	"book name and author"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	ValidationErrorResponse
//	@Router		/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	var payload BookPayload
	if err := DecodeBookRequestBody(r, &payload); err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		api.sendBookResponse(r.Context(), w, requestID, http.StatusBadRequest, invalidBodyErrors)
		return
	}

	book, err := api.bookService.Add(r.Context(), payload)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		api.sendBookError(r.Context(), w, requestID, err)
		return
	}
	api.logger.Info("success to create book", zap.String("request.id", requestID), zap.Int64("book.id", book.ID))
	api.sendBookResponse(r.Context(), w, requestID, http.StatusOK, successResponse)
}

// UpdateBook godoc
//
//	@Summary	Replace the name and author of a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		bookid	path		string		true	"book id"
//	@Param		book	body		BookPayload	true	"book name and author"
//	@Success	200		{object}	Book
//	@Failure	400		{object}	ValidationErrorResponse
//	@Failure	404		{object}	NotFoundResponse
//	@Router		/books/{bookid} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("bookid")
	var payload BookPayload
	if err := DecodeBookRequestBody(r, &payload); err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.String("book.id", id), zap.Error(err))
		api.sendBookResponse(r.Context(), w, requestID, http.StatusBadRequest, invalidBodyErrors)
		return
	}

	book, err := api.bookService.Update(r.Context(), id, payload)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.String("book.id", id), zap.Error(err))
		api.sendBookError(r.Context(), w, requestID, err)
		return
	}
	api.logger.Info("success to update book", zap.String("request.id", requestID), zap.Int64("book.id", book.ID))
	api.sendBookResponse(r.Context(), w, requestID, http.StatusOK, book)
}

// DeleteOneBook godoc
//
//	@Summary	Delete a book
//	@Tags		books
//	@Produce	json
//	@Param		bookid	path		string	true	"book id"
//	@Success	200		{object}	MessageResponse
//	@Failure	404		{object}	NotFoundResponse
//	@Failure	400		{object}	StoreErrorResponse
//	@Router		/books/{bookid} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	id := ps.ByName("bookid")
	if err := api.bookService.Delete(r.Context(), id); err != nil {
		api.logger.Error("failed to delete book", zap.String("request.id", requestID), zap.String("book.id", id), zap.Error(err))
		api.sendBookError(r.Context(), w, requestID, err)
		return
	}
	api.logger.Info("success to delete book", zap.String("request.id", requestID), zap.String("book.id", id))
	api.sendBookResponse(r.Context(), w, requestID, http.StatusOK, successResponse)
}

// sendBookError maps a book service error to its status code and body.
func (api *APIHandler) sendBookError(ctx context.Context, w http.ResponseWriter, requestID string, err error) {
	var fieldErrs FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		api.sendBookResponse(ctx, w, requestID, http.StatusBadRequest, &ValidationErrorResponse{Errors: fieldErrs})
	case errors.Is(err, ErrBookNotFound):
		api.sendBookResponse(ctx, w, requestID, http.StatusNotFound, bookNotFound)
	case errors.Is(err, ErrPersistFailed):
		api.sendBookResponse(ctx, w, requestID, http.StatusBadRequest, storeErrorResponse)
	default:
		api.sendBookResponse(ctx, w, requestID, http.StatusInternalServerError,
			&APIError{RequestID: requestID, Message: "failed to process the request."})
	}
}

func (api *APIHandler) sendBookResponse(ctx context.Context, w http.ResponseWriter, requestID string, status int, body interface{}) {
	if err := WriteResponse(ctx, w, status, body); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Int("response.status", status), zap.Error(err))
	}
}
