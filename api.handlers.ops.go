package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// OpsHandlerWrapper adapts a standard http.Handler to the router.
func (api *APIHandler) OpsHandlerWrapper(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}
