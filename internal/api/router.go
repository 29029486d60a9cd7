package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Health check
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)

	// Split a tilemap into named tiles
	// (POST /split)
	CreateSplit(w http.ResponseWriter, r *http.Request, params SplitParams)
}

// MiddlewareFunc wraps a handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is passed to the error handler when a query
// parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}

	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := serverInterfaceWrapper{
		handler:            si,
		handlerMiddlewares: options.Middlewares,
		errorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/split", wrapper.CreateSplit)
	})

	return r
}

type serverInterfaceWrapper struct {
	handler            ServerInterface
	handlerMiddlewares []MiddlewareFunc
	errorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, middleware := range siw.handlerMiddlewares {
		h = middleware(h)
	}
	return h
}

// GetHealth operation middleware
func (siw *serverInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.handler.GetHealth)).ServeHTTP(w, r)
}

// CreateSplit operation middleware
func (siw *serverInterfaceWrapper) CreateSplit(w http.ResponseWriter, r *http.Request) {
	var params SplitParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest interface{}
	}{
		{"rows", &params.Rows},
		{"cols", &params.Cols},
		{"names", &params.Names},
		{"prefix", &params.Prefix},
		{"strict", &params.Strict},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.handler.CreateSplit(w, r, params)
	})).ServeHTTP(w, r)
}
