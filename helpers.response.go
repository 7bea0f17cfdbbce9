package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CustomResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size.
type CustomResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		code:           http.StatusOK,
	}
}

// WriteHeader implements http.WriteHeader interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}

	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// MessageResponse is sent when a create or delete request succeed.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse lists every invalid field of a request body.
type ValidationErrorResponse struct {
	Errors FieldErrors `json:"errors"`
}

// StoreError describes a failure to save the books collection.
type StoreError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Message  string `json:"message"`
}

// StoreErrorResponse is sent when a change could not be persisted.
type StoreErrorResponse struct {
	Errors StoreError `json:"errors"`
}

// NotFoundResponse is sent when the requested book does not exist.
type NotFoundResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// APIError is the data model sent by non book endpoints when a request fails.
type APIError struct {
	RequestID string `json:"requestid"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
}

var (
	successResponse    = &MessageResponse{Message: "Success"}
	bookNotFound       = &NotFoundResponse{Error: true, Message: "Book not found"}
	storeErrorResponse = &StoreErrorResponse{Errors: StoreError{Location: "db", Param: "", Message: "Could not save book"}}
	invalidBodyErrors  = &ValidationErrorResponse{Errors: FieldErrors{{Location: "body", Msg: "Invalid request body", Param: ""}}}
)

// WriteResponse sends a json body with the given status code. In case the client
// closes the request, it records the Nginx non standard status code 499 (Client
// Closed Request), and 504 when the request processing timed out. In both cases
// nothing is sent since the timeout handler already answered.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, body interface{}) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return fmt.Errorf("response not sent: %w", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
