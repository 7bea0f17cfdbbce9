package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects book related the api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.GET("/books", m.public(api.GetAllBooks))
	router.POST("/books", m.public(api.CreateBook))
	router.PUT("/books/:bookid", m.public(api.UpdateBook))
	router.DELETE("/books/:bookid", m.public(api.DeleteOneBook))
	return router
}
