package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// Router is a wrapper around chi.Router whose handlers return errors.
// A returned JsonError is written as-is; any other error is logged and
// mapped to a generic 500 response so internals never leak to the client.
type Router struct {
	chi.Router
	logger *slog.Logger
}

type RouterOption func(*Router)

func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

func New(opts ...RouterOption) *Router {
	return wrap(chi.NewRouter(), opts...)
}

func wrap(chiRouter chi.Router, opts ...RouterOption) *Router {
	router := &Router{
		Router: chiRouter,
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// HandlerFunc handles an HTTP request and returns an error. A failing
// handler should not write to the response writer; it returns the error and
// lets the router write the error response.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

type Middleware func(http.Handler) HandlerFunc

func (a *Router) handleWithErr(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		jsonErr, ok := err.(JsonError)
		if !ok {
			a.logger.Error(err.Error(), slog.String("path", r.URL.Path))
			jsonErr = NewJsonError(http.StatusInternalServerError, "internal server error")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(jsonErr.Code)
		if err := json.NewEncoder(w).Encode(jsonErr); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}

func (a *Router) Get(path string, h HandlerFunc) {
	a.Router.Get(path, a.handleWithErr(h))
}

func (a *Router) Post(path string, h HandlerFunc) {
	a.Router.Post(path, a.handleWithErr(h))
}

func (a *Router) Put(path string, h HandlerFunc) {
	a.Router.Put(path, a.handleWithErr(h))
}

func (a *Router) Delete(path string, h HandlerFunc) {
	a.Router.Delete(path, a.handleWithErr(h))
}

func (a *Router) Route(path string, f func(r *Router)) {
	a.Router.Route(path, func(r chi.Router) {
		f(wrap(r, WithLogger(a.logger)))
	})
}

func (a *Router) Group(f func(r *Router)) {
	a.Router.Group(func(r chi.Router) {
		f(wrap(r, WithLogger(a.logger)))
	})
}

func (a *Router) Use(middleware Middleware) {
	a.Router.Use(func(h http.Handler) http.Handler {
		return a.handleWithErr(middleware(h))
	})
}

func (a *Router) With(middleware Middleware) *Router {
	ch := a.Router.With(func(h http.Handler) http.Handler {
		return a.handleWithErr(middleware(h))
	})
	return wrap(ch, WithLogger(a.logger))
}
